package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type HistoryType string

const (
	HistoryCommission HistoryType = "commission"
	HistoryWithdrawal HistoryType = "withdrawal"
)

// InvitedUser ghi nhận một người mua dùng mã của ambassador
type InvitedUser struct {
	SubscriptionID string          `json:"subscription_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	JoinedDate     time.Time       `json:"joined_date"`
	Commission     decimal.Decimal `json:"commission"`
	PaymentAmount  decimal.Decimal `json:"payment_amount"`
}

// HistoryEntry: commission entries carry SubscriptionID, withdrawal entries carry
// WithdrawalID, Tax and Total. Amount is always the gross amount.
type HistoryEntry struct {
	Type           HistoryType     `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Tax            decimal.Decimal `json:"tax,omitempty"`
	Total          decimal.Decimal `json:"total,omitempty"`
	Status         string          `json:"status,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	FromUser       string          `json:"from_user,omitempty"`
	SubscriptionID string          `json:"subscription_id,omitempty"`
	WithdrawalID   string          `json:"withdrawal_id,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Credit is one released commission about to be booked
type Credit struct {
	SubscriptionID string
	FromName       string
	FromEmail      string
	Commission     decimal.Decimal
	PaymentAmount  decimal.Decimal
}

// Reservation is one withdrawal about to be booked
type Reservation struct {
	WithdrawalID string
	Amount       decimal.Decimal
	Tax          decimal.Decimal
	Phone        string
}

func (r Reservation) Total() decimal.Decimal {
	return r.Amount.Add(r.Tax)
}

// Withdrawable = totalEarned − totalWithdrawn
func (a *Application) Withdrawable() decimal.Decimal {
	return a.TotalEarned.Sub(a.TotalWithdrawn)
}

func (a *Application) HasCredit(subscriptionID string) bool {
	for _, h := range a.History {
		if h.Type == HistoryCommission && h.SubscriptionID == subscriptionID {
			return true
		}
	}
	return false
}

// CreditCommission appends invitedUsers + history and bumps totalEarned in one
// document write. Idempotent per subscription id.
func (a *Application) CreditCommission(c Credit, now time.Time) error {
	if a.HasCredit(c.SubscriptionID) {
		return ErrAlreadyCredited
	}
	if !c.Commission.IsPositive() {
		return ErrInvalidCredit
	}

	a.InvitedUsers = append(a.InvitedUsers, InvitedUser{
		SubscriptionID: c.SubscriptionID,
		Name:           c.FromName,
		Email:          c.FromEmail,
		JoinedDate:     now,
		Commission:     c.Commission,
		PaymentAmount:  c.PaymentAmount,
	})
	a.History = append(a.History, HistoryEntry{
		Type:           HistoryCommission,
		Amount:         c.Commission,
		FromUser:       c.FromName,
		SubscriptionID: c.SubscriptionID,
		Timestamp:      now,
	})
	a.TotalEarned = a.TotalEarned.Add(c.Commission)
	a.UpdatedAt = now
	return nil
}

// ReserveWithdrawal re-checks the balance against the locked document, then
// bumps totalWithdrawn and appends the pending history entry.
func (a *Application) ReserveWithdrawal(r Reservation, now time.Time) error {
	total := r.Total()
	if total.GreaterThan(a.Withdrawable()) {
		return ErrInsufficientFunds.WithDetails(map[string]interface{}{
			"requested": total.String(),
			"available": a.Withdrawable().String(),
		})
	}

	a.TotalWithdrawn = a.TotalWithdrawn.Add(total)
	a.History = append(a.History, HistoryEntry{
		Type:         HistoryWithdrawal,
		Amount:       r.Amount,
		Tax:          r.Tax,
		Total:        total,
		Status:       "pending",
		Phone:        r.Phone,
		WithdrawalID: r.WithdrawalID,
		Timestamp:    now,
	})
	a.UpdatedAt = now
	return nil
}

// MarkWithdrawalPaid updates the status on the matching history entry; balances stay as they are
func (a *Application) MarkWithdrawalPaid(withdrawalID string) bool {
	for i := range a.History {
		if a.History[i].Type == HistoryWithdrawal && a.History[i].WithdrawalID == withdrawalID {
			a.History[i].Status = "paid"
			return true
		}
	}
	return false
}

// LedgerTotals recomputes both counters from history
func (a *Application) LedgerTotals() (earned, withdrawn decimal.Decimal) {
	earned, withdrawn = decimal.Zero, decimal.Zero
	for _, h := range a.History {
		switch h.Type {
		case HistoryCommission:
			earned = earned.Add(h.Amount)
		case HistoryWithdrawal:
			withdrawn = withdrawn.Add(h.Total)
		}
	}
	return earned, withdrawn
}
