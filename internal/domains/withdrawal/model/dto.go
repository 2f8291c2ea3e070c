package model

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ]{6,20}$`)

type RequestWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Phone  string          `json:"phone"`
}

// Validate checks the phone format only; the minimum amount is a service rule
func (r RequestWithdrawalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone,
			validation.Required.Error("Số điện thoại không được trống"),
			validation.Match(phonePattern).Error("Số điện thoại không hợp lệ"),
		),
	)
}
