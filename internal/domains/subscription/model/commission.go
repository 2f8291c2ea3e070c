package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionNone     CommissionStatus = "none"
	CommissionPending  CommissionStatus = "pending"
	CommissionDeducted CommissionStatus = "deducted"
	CommissionReleased CommissionStatus = "released"
)

// CommissionState chỉ được tạo qua Pending và tiến lên qua Deduct / Release.
// Amount is fixed when the state first becomes pending.
type CommissionState struct {
	Status     CommissionStatus `json:"status"`
	Amount     decimal.Decimal  `json:"amount"`
	PendingAt  *time.Time       `json:"pending_at,omitempty"`
	DeductedAt *time.Time       `json:"deducted_at,omitempty"`
	ReleasedAt *time.Time       `json:"released_at,omitempty"`
}

func NoCommission() CommissionState {
	return CommissionState{Status: CommissionNone}
}

// Pending is the only way to attach an amount
func Pending(amount decimal.Decimal, at time.Time) (CommissionState, error) {
	if !amount.IsPositive() {
		return CommissionState{}, ErrCommissionNotPositive
	}
	return CommissionState{Status: CommissionPending, Amount: amount, PendingAt: &at}, nil
}

func (s CommissionState) IsNone() bool {
	return s.Status == "" || s.Status == CommissionNone
}

// Deduct: pending → deducted
func (s CommissionState) Deduct(at time.Time) (CommissionState, error) {
	switch s.Status {
	case CommissionPending:
		next := s
		next.Status = CommissionDeducted
		next.DeductedAt = &at
		return next, nil
	case CommissionDeducted:
		return s, ErrAlreadyDeducted
	case CommissionReleased:
		return s, ErrAlreadyReleased
	default:
		return s, ErrNoCommission
	}
}

// Release: deducted → released, pending → released (skips the deduct checkpoint)
func (s CommissionState) Release(at time.Time) (CommissionState, error) {
	switch s.Status {
	case CommissionPending, CommissionDeducted:
		next := s
		next.Status = CommissionReleased
		next.ReleasedAt = &at
		return next, nil
	case CommissionReleased:
		return s, ErrAlreadyReleased
	default:
		return s, ErrNoCommission
	}
}

// CountsAgainstGross: deducted and released commissions are subtracted from gross revenue
func (s CommissionState) CountsAgainstGross() bool {
	return s.Status == CommissionDeducted || s.Status == CommissionReleased
}
