package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var (
	phonePattern  = regexp.MustCompile(`^\+?[0-9 ]{6,20}$`)
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// SubmitPaymentRequest - phí đăng ký ambassador chuyển qua mobile money
type SubmitPaymentRequest struct {
	Phone  string          `json:"phone"`
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

func (r SubmitPaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone,
			validation.Required.Error("Số điện thoại không được để trống"),
			validation.Match(phonePattern).Error("Số điện thoại không hợp lệ"),
		),
		validation.Field(&r.Method, validation.Required, validation.Length(1, 40)),
		validation.Field(&r.Amount, validation.By(positiveDecimal)),
	)
}

func positiveDecimal(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if !d.IsPositive() {
		return validation.NewError("validation_positive", "must be greater than 0")
	}
	return nil
}

type SubmitSocialRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// Validate chạy trên giá trị đã chuẩn hóa: handle rỗng sau khi bỏ "@" là lỗi nhập liệu,
// không được tính là strike.
func (r SubmitSocialRequest) Validate() error {
	r.Platform = NormalizePlatform(r.Platform)
	r.Handle = strings.TrimPrefix(strings.TrimSpace(r.Handle), "@")
	return validation.ValidateStruct(&r,
		validation.Field(&r.Platform, validation.Required, validation.In(SupportedPlatforms...).Error("Nền tảng không được hỗ trợ")),
		validation.Field(&r.Handle,
			validation.Required.Error("Tên tài khoản không được để trống"),
			validation.Length(1, 64),
			validation.Match(handlePattern).Error("Tên tài khoản chỉ gồm chữ, số, '.', '-' và '_'"),
		),
	)
}

type SubmitIdentityRequest struct {
	LegalName string `json:"legal_name"`
	Age       int    `json:"age"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Expertise string `json:"expertise"`
	Bio       string `json:"bio"`
}

func (r SubmitIdentityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.LegalName, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Age, validation.Required, validation.Min(13), validation.Max(120)),
		validation.Field(&r.City, validation.Required, validation.Length(1, 80)),
		validation.Field(&r.Country, validation.Required, validation.Length(1, 80)),
		validation.Field(&r.Expertise, validation.Length(0, 200)),
		validation.Field(&r.Bio, validation.Length(0, 1000)),
	)
}

func (r SubmitIdentityRequest) ToDetails() IdentityDetails {
	return IdentityDetails{
		LegalName: r.LegalName,
		Age:       r.Age,
		City:      r.City,
		Country:   r.Country,
		Expertise: r.Expertise,
		Bio:       r.Bio,
	}
}

type ActivateRequest struct {
	TermsAccepted bool `json:"terms_accepted"`
}

// SocialSubmitResult trả về cho client sau mỗi lần nộp handle
type SocialSubmitResult struct {
	Application      *Application `json:"application"`
	Accepted         bool         `json:"accepted"`
	StrikesRemaining int          `json:"strikes_remaining"`
}

// ActivationResult: Reused = mã đã có từ trước (gọi lại activate)
type ActivationResult struct {
	Application *Application `json:"application"`
	PromoCode   string       `json:"promo_code"`
	Reused      bool         `json:"reused"`
}

// Dashboard là read model cho màn hình ambassador
type Dashboard struct {
	UserID         string          `json:"user_id"`
	Status         Status          `json:"status"`
	PromoCode      string          `json:"promo_code,omitempty"`
	TotalInvites   int             `json:"total_invites"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	Withdrawable   decimal.Decimal `json:"withdrawable"`
	InvitedUsers   []InvitedUser   `json:"invited_users"`
	History        []HistoryEntry  `json:"history"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

type PromoCodeView struct {
	Code  string `json:"code"`
	Usage int    `json:"usage"`
}
