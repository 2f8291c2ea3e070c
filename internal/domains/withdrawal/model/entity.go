package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// WithdrawalRequest là bản ghi payout; TotalDeducted = Amount + Tax đã trừ khỏi số dư
type WithdrawalRequest struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	Phone         string          `json:"phone"`
	Amount        decimal.Decimal `json:"amount"`
	Tax           decimal.Decimal `json:"tax"`
	TotalDeducted decimal.Decimal `json:"total_deducted"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

func NewWithdrawal(id uuid.UUID, userID, phone string, amount, tax decimal.Decimal, now time.Time) *WithdrawalRequest {
	return &WithdrawalRequest{
		ID:            id,
		UserID:        userID,
		Phone:         strings.TrimSpace(phone),
		Amount:        amount,
		Tax:           tax,
		TotalDeducted: amount.Add(tax),
		Status:        StatusPending,
		CreatedAt:     now,
	}
}

func (w *WithdrawalRequest) Clone() *WithdrawalRequest {
	cp := *w
	if w.PaidAt != nil {
		at := *w.PaidAt
		cp.PaidAt = &at
	}
	return &cp
}

// TaxFor = (amount / 1000) × perThousand
func TaxFor(amount decimal.Decimal, perThousand int64) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(1000)).Mul(decimal.NewFromInt(perThousand))
}

// MarkPaid: pending → paid. Balances are not touched, they were reserved at request time.
func (w *WithdrawalRequest) MarkPaid(at time.Time) error {
	if w.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	w.Status = StatusPaid
	w.PaidAt = &at
	return nil
}
