package model

import "monetization-backend/internal/shared/apperror"

const (
	ErrCodeWithdrawalNotFound = "WD_NOT_FOUND"
	ErrCodeWithdrawalExists   = "WD_ALREADY_EXISTS"
	ErrCodeInvalidAmount      = "WD_INVALID_AMOUNT"
	ErrCodeInvalidPhone       = "WD_INVALID_PHONE"
	ErrCodeAlreadyPaid        = "WD_ALREADY_PAID"
)

var (
	ErrWithdrawalNotFound = apperror.NotFound(ErrCodeWithdrawalNotFound, "Không tìm thấy yêu cầu rút tiền")
	ErrWithdrawalExists   = apperror.Conflict(ErrCodeWithdrawalExists, "Yêu cầu rút tiền đã được ghi nhận")
	ErrInvalidAmount      = apperror.Validation(ErrCodeInvalidAmount, "Số tiền rút tối thiểu không hợp lệ")
	ErrInvalidPhone       = apperror.Validation(ErrCodeInvalidPhone, "Số điện thoại nhận tiền không hợp lệ")
	ErrAlreadyPaid        = apperror.Conflict(ErrCodeAlreadyPaid, "Yêu cầu rút tiền đã được thanh toán")
)
