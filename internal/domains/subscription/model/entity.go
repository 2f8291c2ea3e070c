package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Subscription: ID là user id của người mua, mỗi user một bản ghi
type Subscription struct {
	ID               string          `json:"id"`
	UserEmail        string          `json:"user_email"`
	UserName         string          `json:"user_name"`
	SchoolName       *string         `json:"school_name,omitempty"`
	ClassName        *string         `json:"class_name,omitempty"`
	Amount           string          `json:"amount"`
	Status           Status          `json:"status"`
	PromoCode        *string         `json:"promo_code,omitempty"`
	IsManual         bool            `json:"is_manual"`
	Commission       CommissionState `json:"commission"`
	PromoOwnerUserID *string         `json:"promo_owner_user_id,omitempty"`
	PromoOwnerName   *string         `json:"promo_owner_name,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Clone deep-copies pointer fields so callers cannot mutate stored state
func (s *Subscription) Clone() *Subscription {
	cp := *s
	cp.SchoolName = clonePtr(s.SchoolName)
	cp.ClassName = clonePtr(s.ClassName)
	cp.PromoCode = clonePtr(s.PromoCode)
	cp.PromoOwnerUserID = clonePtr(s.PromoOwnerUserID)
	cp.PromoOwnerName = clonePtr(s.PromoOwnerName)
	cp.Commission.PendingAt = clonePtr(s.Commission.PendingAt)
	cp.Commission.DeductedAt = clonePtr(s.Commission.DeductedAt)
	cp.Commission.ReleasedAt = clonePtr(s.Commission.ReleasedAt)
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *Subscription) PromoCodeValue() string {
	if s.PromoCode == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*s.PromoCode))
}

// ParsedAmount strips every non-digit from the free-text amount ("50,000 SLSH" → 50000)
func (s *Subscription) ParsedAmount() decimal.Decimal {
	return ParseAmount(s.Amount)
}

func ParseAmount(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CommissionFor = floor(amount × rate / 100)
func CommissionFor(amount decimal.Decimal, ratePercent int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(ratePercent)).Div(decimal.NewFromInt(100)).Floor()
}

// AttachCommission stamps the pending commission and the owner snapshot.
// Only valid on an approved subscription whose commission is still none.
func (s *Subscription) AttachCommission(amount decimal.Decimal, ownerUserID, ownerName string, at time.Time) error {
	if s.Status != StatusApproved {
		return ErrNotApproved
	}
	if !s.Commission.IsNone() {
		return ErrCommissionExists
	}
	state, err := Pending(amount, at)
	if err != nil {
		return err
	}
	s.Commission = state
	s.PromoOwnerUserID = &ownerUserID
	s.PromoOwnerName = &ownerName
	s.UpdatedAt = at
	return nil
}

func (s *Subscription) Approve(at time.Time) error {
	switch s.Status {
	case StatusPending:
		s.Status = StatusApproved
		s.UpdatedAt = at
		return nil
	case StatusApproved:
		return ErrAlreadyApproved
	default:
		return ErrInvalidStatus
	}
}

func (s *Subscription) Reject(at time.Time) error {
	switch s.Status {
	case StatusPending:
		s.Status = StatusRejected
		s.UpdatedAt = at
		return nil
	case StatusRejected:
		return ErrAlreadyRejected
	default:
		return ErrInvalidStatus
	}
}
