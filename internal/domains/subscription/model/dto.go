package model

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var hasDigit = regexp.MustCompile(`[0-9]`)

// SubmitSubscriptionRequest - user khai báo đã chuyển tiền
type SubmitSubscriptionRequest struct {
	Amount     string `json:"amount"`
	PromoCode  string `json:"promo_code"`
	UserName   string `json:"user_name"`
	SchoolName string `json:"school_name"`
	ClassName  string `json:"class_name"`
}

func (r SubmitSubscriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount,
			validation.Required.Error("Số tiền không được để trống"),
			validation.Length(1, 64),
			validation.Match(hasDigit).Error("Số tiền phải chứa chữ số"),
		),
		validation.Field(&r.PromoCode, validation.Length(0, 32)),
		validation.Field(&r.UserName, validation.Length(0, 120)),
		validation.Field(&r.SchoolName, validation.Length(0, 200)),
		validation.Field(&r.ClassName, validation.Length(0, 100)),
	)
}

// GrantManualRequest - admin cấp gói thủ công, không tính doanh thu và hoa hồng
type GrantManualRequest struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
	Amount    string `json:"amount"`
}

func (r GrantManualRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.UserEmail, is.EmailFormat),
		validation.Field(&r.Amount, validation.Length(0, 64)),
	)
}

// ApproveResult: AlreadyApproved là no-op khi hai admin cùng duyệt
type ApproveResult struct {
	Subscription    *Subscription `json:"subscription"`
	AlreadyApproved bool          `json:"already_approved"`
}
