package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	submodel "monetization-backend/internal/domains/subscription/model"
)

// ReleaseResult: AlreadyReleased là kết quả no-op của CAS, không phải lỗi.
// CreditPending means the commission is released but the balance credit failed
// and was handed to reconciliation.
type ReleaseResult struct {
	SubscriptionID  string                    `json:"subscription_id"`
	Released        bool                      `json:"released"`
	AlreadyReleased bool                      `json:"already_released"`
	CreditPending   bool                      `json:"credit_pending"`
	Amount          decimal.Decimal           `json:"amount"`
	OwnerUserID     string                    `json:"owner_user_id,omitempty"`
	Commission      *submodel.CommissionState `json:"commission,omitempty"`
}

type DeductResult struct {
	SubscriptionID  string `json:"subscription_id"`
	Deducted        bool   `json:"deducted"`
	AlreadyDeducted bool   `json:"already_deducted"`
	Error           string `json:"error,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
}

type DeductBatchRequest struct {
	SubscriptionIDs []string `json:"subscription_ids"`
}

func (r DeductBatchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubscriptionIDs,
			validation.Required.Error("Danh sách không được trống"),
			validation.Length(1, 200),
			validation.Each(validation.Required),
		),
	)
}

// GrossEarnings là read model tính lại mỗi lần, không lưu
type GrossEarnings struct {
	GrossRevenue    decimal.Decimal `json:"gross_revenue"`
	CommissionCost  decimal.Decimal `json:"commission_cost"`
	NetEarnings     decimal.Decimal `json:"net_earnings"`
	ApprovedCount   int             `json:"approved_count"`
	ManualExcluded  int             `json:"manual_excluded"`
	CommissionCount int             `json:"commission_count"`
}

// ReconcileReport tóm tắt một lần chạy reconciliation
type ReconcileReport struct {
	Scanned  int `json:"scanned"`
	Credited int `json:"credited"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
