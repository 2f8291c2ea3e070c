package model

import "monetization-backend/internal/shared/apperror"

const (
	ErrCodePromoNotFound         = "PROMO_NOT_FOUND"
	ErrCodePromoDuplicateCode    = "PROMO_DUPLICATE_CODE"
	ErrCodePromoOwnerNotEligible = "PROMO_OWNER_NOT_ELIGIBLE"
	ErrCodePromoIssueExhausted   = "PROMO_ISSUE_EXHAUSTED"
)

var (
	ErrPromoNotFound = apperror.NotFound(ErrCodePromoNotFound, "Mã giới thiệu không tồn tại")

	ErrDuplicateCode = apperror.Conflict(ErrCodePromoDuplicateCode, "Mã giới thiệu đã tồn tại")

	// ErrOwnerNotEligible: manually created codes need an owner with an approved subscription
	ErrOwnerNotEligible = apperror.Validation(ErrCodePromoOwnerNotEligible, "Chủ mã chưa có gói đăng ký đã duyệt")

	ErrIssueExhausted = apperror.New(apperror.KindInternal, ErrCodePromoIssueExhausted, "Không thể tạo mã giới thiệu duy nhất")
)
