package model

import "monetization-backend/internal/shared/apperror"

const (
	ErrCodeApplicationNotFound     = "AMB_NOT_FOUND"
	ErrCodeApplicationRejected     = "AMB_REJECTED"
	ErrCodeFraudThreshold          = "AMB_FRAUD_THRESHOLD"
	ErrCodeInvalidPaymentAmount    = "AMB_INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentAlreadyApproved  = "AMB_PAYMENT_ALREADY_APPROVED"
	ErrCodePaymentNotSubmitted     = "AMB_PAYMENT_NOT_SUBMITTED"
	ErrCodeSocialAlreadyApproved   = "AMB_SOCIAL_ALREADY_APPROVED"
	ErrCodeSocialHandleNotFound    = "AMB_SOCIAL_HANDLE_NOT_FOUND"
	ErrCodePlatformNotSubmitted    = "AMB_PLATFORM_NOT_SUBMITTED"
	ErrCodeSocialNotVerified       = "AMB_SOCIAL_NOT_VERIFIED"
	ErrCodeIdentityAlreadyApproved = "AMB_IDENTITY_ALREADY_APPROVED"
	ErrCodeIdentityNotSubmitted    = "AMB_IDENTITY_NOT_SUBMITTED"
	ErrCodeNotReadyForActivation   = "AMB_NOT_READY"
	ErrCodeTermsNotAccepted        = "AMB_TERMS_NOT_ACCEPTED"
	ErrCodeAlreadyActivated        = "AMB_ALREADY_ACTIVATED"
	ErrCodeAlreadyCredited         = "LEDGER_ALREADY_CREDITED"
	ErrCodeInvalidCredit           = "LEDGER_INVALID_CREDIT"
	ErrCodeInsufficientFunds       = "LEDGER_INSUFFICIENT_FUNDS"
	ErrCodeWithdrawalEntryNotFound = "LEDGER_WITHDRAWAL_ENTRY_NOT_FOUND"
)

var (
	ErrApplicationNotFound = apperror.NotFound(ErrCodeApplicationNotFound, "Không tìm thấy hồ sơ ambassador")
	ErrApplicationRejected = apperror.FraudThreshold(ErrCodeApplicationRejected, "Hồ sơ ambassador đã bị từ chối")

	// ErrFraudThreshold: đủ 3 strike, hồ sơ bị khóa vĩnh viễn
	ErrFraudThreshold = apperror.FraudThreshold(ErrCodeFraudThreshold, "Quá nhiều tài khoản mạng xã hội không hợp lệ, hồ sơ đã bị từ chối")

	ErrInvalidPaymentAmount   = apperror.Validation(ErrCodeInvalidPaymentAmount, "Số tiền phí đăng ký không đúng")
	ErrPaymentAlreadyApproved = apperror.Conflict(ErrCodePaymentAlreadyApproved, "Phí đăng ký đã được duyệt")
	ErrPaymentNotSubmitted    = apperror.Conflict(ErrCodePaymentNotSubmitted, "Chưa gửi thông tin thanh toán phí đăng ký")

	ErrSocialAlreadyApproved = apperror.Conflict(ErrCodeSocialAlreadyApproved, "Mạng xã hội đã được duyệt")
	ErrSocialHandleNotFound  = apperror.Validation(ErrCodeSocialHandleNotFound, "Không tìm thấy tài khoản mạng xã hội")
	ErrPlatformNotSubmitted  = apperror.NotFound(ErrCodePlatformNotSubmitted, "Nền tảng này chưa có tài khoản được gửi")
	ErrSocialNotVerified     = apperror.Conflict(ErrCodeSocialNotVerified, "Tất cả nền tảng đã gửi phải được xác minh trước")

	ErrIdentityAlreadyApproved = apperror.Conflict(ErrCodeIdentityAlreadyApproved, "Thông tin cá nhân đã được duyệt")
	ErrIdentityNotSubmitted    = apperror.Conflict(ErrCodeIdentityNotSubmitted, "Chưa gửi thông tin cá nhân")

	ErrNotReadyForActivation = apperror.Conflict(ErrCodeNotReadyForActivation, "Thanh toán, mạng xã hội và thông tin cá nhân đều phải được duyệt")
	ErrTermsNotAccepted      = apperror.Validation(ErrCodeTermsNotAccepted, "Phải đồng ý với điều khoản")
	ErrAlreadyActivated      = apperror.Conflict(ErrCodeAlreadyActivated, "Hồ sơ đã được kích hoạt với mã giới thiệu khác")

	ErrAlreadyCredited     = apperror.Conflict(ErrCodeAlreadyCredited, "Hoa hồng đã được cộng vào số dư")
	ErrInvalidCredit       = apperror.Validation(ErrCodeInvalidCredit, "Số tiền hoa hồng phải lớn hơn 0")
	ErrInsufficientFunds   = apperror.InsufficientFunds(ErrCodeInsufficientFunds, "Số dư không đủ")
	ErrWithdrawalEntryGone = apperror.NotFound(ErrCodeWithdrawalEntryNotFound, "Không tìm thấy khoản rút trong lịch sử")
)
