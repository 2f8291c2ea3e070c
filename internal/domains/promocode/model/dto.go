package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CreatePromoCodeRequest - admin tạo mã thủ công
type CreatePromoCodeRequest struct {
	Code        string `json:"code"`
	OwnerUserID string `json:"owner_user_id"`
	OwnerEmail  string `json:"owner_email"`
	OwnerName   string `json:"owner_name"`
}

// Validate kiểm tra mã sau khi chuẩn hóa (trim + upper)
func (r CreatePromoCodeRequest) Validate() error {
	r.Code = NormalizeCode(r.Code)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("Mã giới thiệu không được để trống"),
			validation.Length(3, 32).Error("Mã giới thiệu phải từ 3-32 ký tự"),
			validation.Match(codePattern).Error("Mã chỉ gồm chữ, số, '-' và '_'"),
		),
		validation.Field(&r.OwnerUserID, validation.Required),
		validation.Field(&r.OwnerEmail, is.EmailFormat),
		validation.Field(&r.OwnerName, validation.Length(0, 120)),
	)
}

// PromoCodeResponse is the admin list row
type PromoCodeResponse struct {
	Code        string    `json:"code"`
	OwnerUserID string    `json:"owner_user_id"`
	OwnerEmail  string    `json:"owner_email"`
	OwnerName   string    `json:"owner_name"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToResponse(p *PromoCode, usage int) PromoCodeResponse {
	return PromoCodeResponse{
		Code:        p.Code,
		OwnerUserID: p.OwnerUserID,
		OwnerEmail:  p.OwnerEmail,
		OwnerName:   p.OwnerName,
		UsageCount:  usage,
		CreatedAt:   p.CreatedAt,
	}
}

// UsageResponse là số lượt dùng thực tế (đếm từ subscriptions)
type UsageResponse struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}
