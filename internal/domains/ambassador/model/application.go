package model

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string
type SocialStatus string
type IdentityStatus string
type Status string

const (
	PaymentNone     PaymentStatus = "none"
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"

	SocialNone      SocialStatus = "none"
	SocialSubmitted SocialStatus = "submitted"
	SocialApproved  SocialStatus = "approved"
	SocialRejected  SocialStatus = "rejected"

	IdentityNone      IdentityStatus = "none"
	IdentitySubmitted IdentityStatus = "submitted"
	IdentityApproved  IdentityStatus = "approved"

	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// SupportedPlatforms là các nền tảng mạng xã hội được chấp nhận
var SupportedPlatforms = []interface{}{"tiktok", "instagram", "facebook", "youtube", "x", "snapchat"}

// NormalizePlatform lowercases and trims the platform key
func NormalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

type PaymentClaim struct {
	Phone       string          `json:"phone"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	SubmittedAt time.Time       `json:"submitted_at"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
}

type IdentityDetails struct {
	LegalName   string     `json:"legal_name"`
	Age         int        `json:"age"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Expertise   string     `json:"expertise"`
	Bio         string     `json:"bio"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// Application là document 1:1 theo user trong collection monetization.
// InvitedUsers và History chỉ được append.
type Application struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`

	PaymentStatus PaymentStatus `json:"payment_status"`
	Payment       *PaymentClaim `json:"payment,omitempty"`

	SocialStatus    SocialStatus      `json:"social_status"`
	SocialStrikes   int               `json:"social_strikes"`
	SocialUsernames map[string]string `json:"social_usernames"`
	VerifiedSocials map[string]bool   `json:"verified_socials"`

	IdentityStatus IdentityStatus   `json:"identity_status"`
	Identity       *IdentityDetails `json:"identity,omitempty"`

	Status         Status          `json:"status"`
	PromoCode      string          `json:"promo_code,omitempty"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	InvitedUsers   []InvitedUser   `json:"invited_users"`
	History        []HistoryEntry  `json:"history"`

	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewApplication(userID string, now time.Time) *Application {
	return &Application{
		UserID:          userID,
		PaymentStatus:   PaymentNone,
		SocialStatus:    SocialNone,
		SocialUsernames: map[string]string{},
		VerifiedSocials: map[string]bool{},
		IdentityStatus:  IdentityNone,
		Status:          StatusNone,
		TotalEarned:     decimal.Zero,
		TotalWithdrawn:  decimal.Zero,
		InvitedUsers:    []InvitedUser{},
		History:         []HistoryEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone deep-copies maps, slices and pointers
func (a *Application) Clone() *Application {
	cp := *a
	cp.SocialUsernames = make(map[string]string, len(a.SocialUsernames))
	for k, v := range a.SocialUsernames {
		cp.SocialUsernames[k] = v
	}
	cp.VerifiedSocials = make(map[string]bool, len(a.VerifiedSocials))
	for k, v := range a.VerifiedSocials {
		cp.VerifiedSocials[k] = v
	}
	cp.InvitedUsers = append([]InvitedUser{}, a.InvitedUsers...)
	cp.History = append([]HistoryEntry{}, a.History...)
	if a.Payment != nil {
		p := *a.Payment
		cp.Payment = &p
	}
	if a.Identity != nil {
		id := *a.Identity
		cp.Identity = &id
	}
	if a.ActivatedAt != nil {
		t := *a.ActivatedAt
		cp.ActivatedAt = &t
	}
	return &cp
}

// ensureMaps fixes documents decoded with null maps
func (a *Application) ensureMaps() {
	if a.SocialUsernames == nil {
		a.SocialUsernames = map[string]string{}
	}
	if a.VerifiedSocials == nil {
		a.VerifiedSocials = map[string]bool{}
	}
}

func (a *Application) IsRejected() bool {
	return a.Status == StatusRejected
}

func (a *Application) touch(now time.Time) {
	a.UpdatedAt = now
	if a.Status == StatusNone {
		a.Status = StatusPending
	}
}

// ---------------------------------------------------------------
// Stage A: payment
// ---------------------------------------------------------------

func (a *Application) SubmitPayment(claim PaymentClaim, fee decimal.Decimal, now time.Time) error {
	if a.IsRejected() {
		return ErrApplicationRejected
	}
	if a.PaymentStatus == PaymentApproved {
		return ErrPaymentAlreadyApproved
	}
	if !claim.Amount.Equal(fee) {
		return ErrInvalidPaymentAmount
	}
	claim.SubmittedAt = now
	claim.ApprovedAt = nil
	a.Payment = &claim
	a.PaymentStatus = PaymentPending
	a.touch(now)
	return nil
}

// ApprovePayment is idempotent; changed=false when already approved
func (a *Application) ApprovePayment(now time.Time) (changed bool, err error) {
	switch a.PaymentStatus {
	case PaymentApproved:
		return false, nil
	case PaymentPending:
		a.PaymentStatus = PaymentApproved
		a.Payment.ApprovedAt = &now
		a.UpdatedAt = now
		return true, nil
	default:
		return false, ErrPaymentNotSubmitted
	}
}

// ---------------------------------------------------------------
// Stage B: social proof with strikes
// ---------------------------------------------------------------

func (a *Application) RecordSocialHandle(platform, handle string, now time.Time) error {
	a.ensureMaps()
	if a.IsRejected() {
		return ErrFraudThreshold
	}
	if a.SocialStatus == SocialApproved {
		return ErrSocialAlreadyApproved
	}
	platform = NormalizePlatform(platform)
	a.SocialUsernames[platform] = handle
	delete(a.VerifiedSocials, platform)
	a.SocialStatus = SocialSubmitted
	a.touch(now)
	return nil
}

// AddStrike increments strikes; reaching limit rejects the application (terminal).
// Returns true when this strike caused the rejection.
func (a *Application) AddStrike(limit int, now time.Time) (rejected bool, err error) {
	if a.IsRejected() {
		return false, ErrFraudThreshold
	}
	a.SocialStrikes++
	a.UpdatedAt = now
	if a.SocialStrikes >= limit {
		a.Status = StatusRejected
		a.SocialStatus = SocialRejected
		return true, nil
	}
	if a.Status == StatusNone {
		a.Status = StatusPending
	}
	return false, nil
}

func (a *Application) ApproveSocialPlatform(platform string, now time.Time) error {
	a.ensureMaps()
	if a.IsRejected() {
		return ErrFraudThreshold
	}
	platform = NormalizePlatform(platform)
	if _, ok := a.SocialUsernames[platform]; !ok {
		return ErrPlatformNotSubmitted
	}
	a.VerifiedSocials[platform] = true
	a.UpdatedAt = now
	return nil
}

// RejectSocialPlatform removes the handle and its flag, then adds a strike
func (a *Application) RejectSocialPlatform(platform string, limit int, now time.Time) (rejected bool, err error) {
	a.ensureMaps()
	if a.IsRejected() {
		return false, ErrFraudThreshold
	}
	platform = NormalizePlatform(platform)
	if _, ok := a.SocialUsernames[platform]; !ok {
		return false, ErrPlatformNotSubmitted
	}
	delete(a.SocialUsernames, platform)
	delete(a.VerifiedSocials, platform)
	if len(a.SocialUsernames) == 0 && a.SocialStatus != SocialApproved {
		a.SocialStatus = SocialNone
	}
	return a.AddStrike(limit, now)
}

// ApproveSocial requires at least one handle and every submitted handle verified
func (a *Application) ApproveSocial(now time.Time) error {
	a.ensureMaps()
	if a.IsRejected() {
		return ErrFraudThreshold
	}
	if a.SocialStatus == SocialApproved {
		return nil
	}
	if len(a.SocialUsernames) == 0 {
		return ErrSocialNotVerified
	}
	for platform := range a.SocialUsernames {
		if !a.VerifiedSocials[platform] {
			return ErrSocialNotVerified.WithDetails(map[string]interface{}{"platform": platform})
		}
	}
	a.SocialStatus = SocialApproved
	a.UpdatedAt = now
	return nil
}

// ---------------------------------------------------------------
// Stage C: identity
// ---------------------------------------------------------------

func (a *Application) SubmitIdentity(details IdentityDetails, now time.Time) error {
	if a.IsRejected() {
		return ErrApplicationRejected
	}
	if a.IdentityStatus == IdentityApproved {
		return ErrIdentityAlreadyApproved
	}
	details.SubmittedAt = now
	details.ApprovedAt = nil
	a.Identity = &details
	a.IdentityStatus = IdentitySubmitted
	a.touch(now)
	return nil
}

func (a *Application) ApproveIdentity(now time.Time) error {
	switch a.IdentityStatus {
	case IdentityApproved:
		return nil
	case IdentitySubmitted:
		a.IdentityStatus = IdentityApproved
		a.Identity.ApprovedAt = &now
		a.UpdatedAt = now
		return nil
	default:
		return ErrIdentityNotSubmitted
	}
}

// ---------------------------------------------------------------
// Activation
// ---------------------------------------------------------------

func (a *Application) ReadyForActivation() bool {
	return a.PaymentStatus == PaymentApproved &&
		a.SocialStatus == SocialApproved &&
		a.IdentityStatus == IdentityApproved
}

// Activate approves the application with its promo code. Balances and lists are
// reset on the first activation only; a repeated call with the same code is a no-op.
func (a *Application) Activate(code string, now time.Time) (changed bool, err error) {
	if a.IsRejected() {
		return false, ErrApplicationRejected
	}
	if a.Status == StatusApproved {
		if a.PromoCode == code {
			return false, nil
		}
		return false, ErrAlreadyActivated
	}
	if !a.ReadyForActivation() {
		return false, ErrNotReadyForActivation
	}

	a.Status = StatusApproved
	a.PromoCode = code
	// History là khóa idempotency của credit/reconcile: chỉ khởi tạo khi chưa có,
	// không bao giờ xóa các khoản đã ghi trước khi kích hoạt.
	if a.InvitedUsers == nil {
		a.InvitedUsers = []InvitedUser{}
	}
	if a.History == nil {
		a.History = []HistoryEntry{}
	}
	a.ActivatedAt = &now
	a.UpdatedAt = now
	return true, nil
}

// PlatformsSorted is used for stable API output
func (a *Application) PlatformsSorted() []string {
	out := make([]string, 0, len(a.SocialUsernames))
	for p := range a.SocialUsernames {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
