package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PromoCode is a referral token owned by one ambassador.
// UsageCount is a cached view; the live count comes from approved subscriptions.
type PromoCode struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	OwnerUserID string    `json:"owner_user_id"`
	OwnerEmail  string    `json:"owner_email"`
	OwnerName   string    `json:"owner_name"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeCode chuyển code về uppercase, bỏ khoảng trắng hai đầu
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NewPromoCode(code, ownerUserID, ownerEmail, ownerName string) *PromoCode {
	return &PromoCode{
		ID:          uuid.New(),
		Code:        NormalizeCode(code),
		OwnerUserID: ownerUserID,
		OwnerEmail:  ownerEmail,
		OwnerName:   ownerName,
		CreatedAt:   time.Now().UTC(),
	}
}
