package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{
		"50,000 SLSH": 50000,
		"10000":       10000,
		" $12 500 ":   12500,
		"abc":         0,
		"":            0,
		"٣٠٠":         0, // non-ASCII digits are ignored
	}
	for raw, want := range cases {
		assert.True(t, decimal.NewFromInt(want).Equal(ParseAmount(raw)), raw)
	}
}

func TestCommissionFor(t *testing.T) {
	assert.True(t, decimal.NewFromInt(5000).Equal(CommissionFor(ParseAmount("50,000 SLSH"), 10)))
	assert.True(t, decimal.NewFromInt(1).Equal(CommissionFor(decimal.NewFromInt(19), 10)))
	assert.True(t, CommissionFor(decimal.NewFromInt(9), 10).IsZero())
}

func TestCommissionState_Transitions(t *testing.T) {
	now := time.Now()

	_, err := Pending(decimal.Zero, now)
	assert.ErrorIs(t, err, ErrCommissionNotPositive)

	pending, err := Pending(decimal.NewFromInt(5000), now)
	require.NoError(t, err)

	deducted, err := pending.Deduct(now)
	require.NoError(t, err)
	assert.Equal(t, CommissionDeducted, deducted.Status)
	assert.True(t, deducted.Amount.Equal(pending.Amount))

	_, err = deducted.Deduct(now)
	assert.ErrorIs(t, err, ErrAlreadyDeducted)

	released, err := deducted.Release(now)
	require.NoError(t, err)
	assert.Equal(t, CommissionReleased, released.Status)
	assert.NotNil(t, released.ReleasedAt)

	_, err = released.Release(now)
	assert.ErrorIs(t, err, ErrAlreadyReleased)
	_, err = released.Deduct(now)
	assert.ErrorIs(t, err, ErrAlreadyReleased)

	_, err = NoCommission().Release(now)
	assert.ErrorIs(t, err, ErrNoCommission)
}

func TestCommissionState_ReleaseFromPending(t *testing.T) {
	pending, err := Pending(decimal.NewFromInt(100), time.Now())
	require.NoError(t, err)

	released, err := pending.Release(time.Now())
	require.NoError(t, err)
	assert.Equal(t, CommissionReleased, released.Status)
	assert.Nil(t, released.DeductedAt)
}

func TestAttachCommission_OnlyOnce(t *testing.T) {
	sub := &Subscription{ID: "u1", Status: StatusApproved, Commission: NoCommission()}

	require.NoError(t, sub.AttachCommission(decimal.NewFromInt(5000), "owner-x", "X", time.Now()))
	assert.Equal(t, CommissionPending, sub.Commission.Status)
	assert.Equal(t, "owner-x", *sub.PromoOwnerUserID)

	err := sub.AttachCommission(decimal.NewFromInt(9999), "owner-y", "Y", time.Now())
	assert.ErrorIs(t, err, ErrCommissionExists)
	assert.True(t, decimal.NewFromInt(5000).Equal(sub.Commission.Amount))
}

func TestAttachCommission_RequiresApproved(t *testing.T) {
	sub := &Subscription{ID: "u1", Status: StatusPending, Commission: NoCommission()}
	assert.ErrorIs(t, sub.AttachCommission(decimal.NewFromInt(1), "o", "O", time.Now()), ErrNotApproved)
}
