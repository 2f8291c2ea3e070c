package model

import "monetization-backend/internal/shared/apperror"

const (
	ErrCodeSubscriptionNotFound = "SUB_NOT_FOUND"
	ErrCodeSubscriptionExists   = "SUB_ALREADY_EXISTS"
	ErrCodeInvalidStatus        = "SUB_INVALID_STATUS"
	ErrCodeAlreadyApproved      = "SUB_ALREADY_APPROVED"
	ErrCodeAlreadyRejected      = "SUB_ALREADY_REJECTED"
	ErrCodeNotApproved          = "SUB_NOT_APPROVED"
	ErrCodeInvalidAmount        = "SUB_INVALID_AMOUNT"
	ErrCodeInvalidPromo         = "SUB_INVALID_PROMO_CODE"
	ErrCodeSelfReferral         = "SUB_SELF_REFERRAL"

	ErrCodeNoCommission          = "COMMISSION_NONE"
	ErrCodeCommissionExists      = "COMMISSION_ALREADY_SET"
	ErrCodeCommissionNotPositive = "COMMISSION_NOT_POSITIVE"
	ErrCodeAlreadyDeducted       = "COMMISSION_ALREADY_DEDUCTED"
	ErrCodeAlreadyReleased       = "COMMISSION_ALREADY_RELEASED"
)

var (
	ErrSubscriptionNotFound = apperror.NotFound(ErrCodeSubscriptionNotFound, "Không tìm thấy gói đăng ký")
	ErrSubscriptionExists   = apperror.Conflict(ErrCodeSubscriptionExists, "Người dùng đã có gói đăng ký đang xử lý")
	ErrInvalidStatus        = apperror.Conflict(ErrCodeInvalidStatus, "Trạng thái gói đăng ký không cho phép thao tác này")
	ErrAlreadyApproved      = apperror.Conflict(ErrCodeAlreadyApproved, "Gói đăng ký đã được duyệt")
	ErrAlreadyRejected      = apperror.Conflict(ErrCodeAlreadyRejected, "Gói đăng ký đã bị từ chối")
	ErrNotApproved          = apperror.Conflict(ErrCodeNotApproved, "Gói đăng ký chưa được duyệt")
	ErrInvalidAmount        = apperror.Validation(ErrCodeInvalidAmount, "Số tiền không hợp lệ")
	ErrInvalidPromoCode     = apperror.Validation(ErrCodeInvalidPromo, "Mã giới thiệu không tồn tại")
	ErrSelfReferral         = apperror.Validation(ErrCodeSelfReferral, "Không thể dùng mã giới thiệu của chính mình")

	ErrNoCommission          = apperror.Conflict(ErrCodeNoCommission, "Gói đăng ký không có hoa hồng")
	ErrCommissionExists      = apperror.Conflict(ErrCodeCommissionExists, "Hoa hồng đã được tính")
	ErrCommissionNotPositive = apperror.Validation(ErrCodeCommissionNotPositive, "Hoa hồng phải lớn hơn 0")
	ErrAlreadyDeducted       = apperror.Conflict(ErrCodeAlreadyDeducted, "Hoa hồng đã được khấu trừ")
	ErrAlreadyReleased       = apperror.Conflict(ErrCodeAlreadyReleased, "Hoa hồng đã được chi trả")
)
