package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	promomodel "monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/domains/subscription/model"
	"monetization-backend/internal/domains/subscription/repository"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
)

type fakePromos struct {
	owners      map[string]string
	invalidated []string
}

func (f *fakePromos) ResolveOwner(_ context.Context, code string) (*promomodel.PromoCode, error) {
	owner, ok := f.owners[promomodel.NormalizeCode(code)]
	if !ok {
		return nil, promomodel.ErrPromoNotFound
	}
	return &promomodel.PromoCode{Code: promomodel.NormalizeCode(code), OwnerUserID: owner}, nil
}

func (f *fakePromos) InvalidateUsage(_ context.Context, code string) {
	f.invalidated = append(f.invalidated, code)
}

type recordingHook struct {
	calls []string
	err   error
}

func (h *recordingHook) OnSubscriptionApproved(_ context.Context, id string) error {
	h.calls = append(h.calls, id)
	return h.err
}

var (
	admin = shared.Actor{UserID: "admin-1", Role: shared.RoleAdmin}
	buyer = shared.Actor{UserID: "buyer-1", Email: "b@x.io", Role: shared.RoleUser}
)

func newTestService() (*SubscriptionService, *repository.MemoryRepository, *fakePromos, *recordingHook) {
	repo := repository.NewMemoryRepository()
	promos := &fakePromos{owners: map[string]string{"AMIN20": "owner-x"}}
	hook := &recordingHook{}
	return NewSubscriptionService(repo, promos, hook, realtime.NopPublisher{}), repo, promos, hook
}

func TestSubmit_NormalizesPromoCode(t *testing.T) {
	svc, _, _, _ := newTestService()

	sub, err := svc.Submit(context.Background(), buyer, &model.SubmitSubscriptionRequest{
		Amount:    "50,000 SLSH",
		PromoCode: " amin20 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", sub.ID)
	assert.Equal(t, "AMIN20", sub.PromoCodeValue())
	assert.Equal(t, model.StatusPending, sub.Status)
	assert.True(t, sub.Commission.IsNone())
}

func TestSubmit_Rejections(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "free"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "10000", PromoCode: "NOPE"})
	assert.ErrorIs(t, err, model.ErrInvalidPromoCode)

	owner := shared.Actor{UserID: "owner-x", Role: shared.RoleUser}
	_, err = svc.Submit(ctx, owner, &model.SubmitSubscriptionRequest{Amount: "10000", PromoCode: "AMIN20"})
	assert.ErrorIs(t, err, model.ErrSelfReferral)
}

func TestSubmit_ResubmitOnlyAfterRejection(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "10000"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "20000"})
	assert.ErrorIs(t, err, model.ErrSubscriptionExists)

	_, err = svc.Reject(ctx, admin, buyer.UserID)
	require.NoError(t, err)

	sub, err := svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "20000"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, sub.Status)
	assert.Equal(t, "20000", sub.Amount)
}

func TestApprove_FiresHookOnce(t *testing.T) {
	svc, _, promos, hook := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "50,000 SLSH", PromoCode: "AMIN20"})
	require.NoError(t, err)

	res, err := svc.Approve(ctx, admin, buyer.UserID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyApproved)
	assert.Equal(t, model.StatusApproved, res.Subscription.Status)

	res, err = svc.Approve(ctx, admin, buyer.UserID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyApproved)

	assert.Equal(t, []string{buyer.UserID}, hook.calls)
	assert.Equal(t, []string{"AMIN20"}, promos.invalidated)
}

func TestApprove_HookErrorDoesNotBlock(t *testing.T) {
	svc, repo, _, hook := newTestService()
	ctx := context.Background()
	hook.err = errors.New("ledger down")

	_, err := svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "10000", PromoCode: "AMIN20"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, admin, buyer.UserID)
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, buyer.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Approve(context.Background(), buyer, buyer.UserID)
	assert.ErrorIs(t, err, apperror.ErrAdminRequired)

	_, err = svc.ListPending(context.Background(), buyer)
	assert.ErrorIs(t, err, apperror.ErrAdminRequired)
}

func TestApprove_RejectedCannotBeApproved(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, buyer, &model.SubmitSubscriptionRequest{Amount: "10000"})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, admin, buyer.UserID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, admin, buyer.UserID)
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestGrantManual(t *testing.T) {
	svc, _, _, hook := newTestService()
	ctx := context.Background()

	sub, err := svc.GrantManual(ctx, admin, &model.GrantManualRequest{UserID: "vip-1", Amount: "0"})
	require.NoError(t, err)
	assert.True(t, sub.IsManual)
	assert.Equal(t, model.StatusApproved, sub.Status)
	assert.Empty(t, hook.calls)

	_, err = svc.GrantManual(ctx, admin, &model.GrantManualRequest{UserID: "vip-1"})
	assert.ErrorIs(t, err, model.ErrAlreadyApproved)
}
