package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ambmodel "monetization-backend/internal/domains/ambassador/model"
	ambrepo "monetization-backend/internal/domains/ambassador/repository"
	promomodel "monetization-backend/internal/domains/promocode/model"
	submodel "monetization-backend/internal/domains/subscription/model"
	subrepo "monetization-backend/internal/domains/subscription/repository"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
)

type fakeResolver struct {
	owners map[string]*promomodel.PromoCode
}

func (f *fakeResolver) ResolveOwner(_ context.Context, code string) (*promomodel.PromoCode, error) {
	p, ok := f.owners[promomodel.NormalizeCode(code)]
	if !ok {
		return nil, promomodel.ErrPromoNotFound
	}
	return p, nil
}

type fakeEnqueuer struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fakeEnqueuer) EnqueueReconcile(_ context.Context, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	return nil
}

// flakyApps fails every Update while failing is set
type flakyApps struct {
	ambrepo.Repository
	failing bool
}

func (f *flakyApps) Update(ctx context.Context, userID string, fn ambrepo.UpdateFunc) (*ambmodel.Application, error) {
	if f.failing {
		return nil, errors.New("document store unavailable")
	}
	return f.Repository.Update(ctx, userID, fn)
}

var (
	admin = shared.Actor{UserID: "admin-1", Role: shared.RoleAdmin}
	buyer = shared.Actor{UserID: "buyer-1", Role: shared.RoleUser}
)

type fixture struct {
	svc      *LedgerService
	subs     *subrepo.MemoryRepository
	apps     *flakyApps
	enqueuer *fakeEnqueuer
}

func newFixture() *fixture {
	subs := subrepo.NewMemoryRepository()
	apps := &flakyApps{Repository: ambrepo.NewMemoryRepository()}
	resolver := &fakeResolver{owners: map[string]*promomodel.PromoCode{
		"AMIN20": {Code: "AMIN20", OwnerUserID: "owner-x", OwnerName: "Amin"},
	}}
	enq := &fakeEnqueuer{}
	svc := NewLedgerService(subs, apps, resolver, enq, realtime.NopPublisher{}, Config{CommissionRatePercent: 10})
	return &fixture{svc: svc, subs: subs, apps: apps, enqueuer: enq}
}

func (f *fixture) seedApproved(t *testing.T, id, amount, code string, manual bool) {
	t.Helper()
	sub := &submodel.Subscription{
		ID:         id,
		UserEmail:  id + "@x.io",
		UserName:   "User " + id,
		Amount:     amount,
		Status:     submodel.StatusApproved,
		IsManual:   manual,
		Commission: submodel.NoCommission(),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if code != "" {
		sub.PromoCode = &code
	}
	require.NoError(t, f.subs.Create(context.Background(), sub))
}

func TestOnSubscriptionApproved_ComputesPendingCommission(t *testing.T) {
	f := newFixture()
	f.seedApproved(t, "buyer-1", "50,000 SLSH", "amin20", false)

	require.NoError(t, f.svc.OnSubscriptionApproved(context.Background(), "buyer-1"))

	sub, err := f.subs.FindByID(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, submodel.CommissionPending, sub.Commission.Status)
	assert.True(t, decimal.NewFromInt(5000).Equal(sub.Commission.Amount))
	require.NotNil(t, sub.PromoOwnerUserID)
	assert.Equal(t, "owner-x", *sub.PromoOwnerUserID)
	assert.Equal(t, "Amin", *sub.PromoOwnerName)

	// Gọi lại không đổi gì
	require.NoError(t, f.svc.OnSubscriptionApproved(context.Background(), "buyer-1"))
	again, _ := f.subs.FindByID(context.Background(), "buyer-1")
	assert.Equal(t, sub.Commission.PendingAt, again.Commission.PendingAt)
}

func TestOnSubscriptionApproved_SkipsSilently(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "dangling", "10000", "GONE99", false)
	f.seedApproved(t, "nocode", "10000", "", false)
	f.seedApproved(t, "tiny", "5", "AMIN20", false)

	for _, id := range []string{"dangling", "nocode", "tiny"} {
		require.NoError(t, f.svc.OnSubscriptionApproved(ctx, id), id)
		sub, _ := f.subs.FindByID(ctx, id)
		assert.True(t, sub.Commission.IsNone(), id)
		assert.Nil(t, sub.PromoOwnerUserID, id)
	}
}

func TestDeduct_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "buyer-1", "10000", "AMIN20", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "buyer-1"))

	res, err := f.svc.Deduct(ctx, admin, "buyer-1")
	require.NoError(t, err)
	assert.True(t, res.Deducted)

	res, err = f.svc.Deduct(ctx, admin, "buyer-1")
	require.NoError(t, err)
	assert.False(t, res.Deducted)
	assert.True(t, res.AlreadyDeducted)

	_, err = f.svc.Deduct(ctx, buyer, "buyer-1")
	assert.ErrorIs(t, err, apperror.ErrAdminRequired)
}

func TestDeductBatch_PerIDResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "a", "10000", "AMIN20", false)
	f.seedApproved(t, "b", "10000", "", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "a"))

	results, err := f.svc.DeductBatch(ctx, admin, []string{"a", "b", "missing"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Deducted)
	assert.Equal(t, submodel.ErrCodeNoCommission, results[1].ErrorCode)
	assert.Equal(t, submodel.ErrCodeSubscriptionNotFound, results[2].ErrorCode)
}

func TestRelease_CreditsOwnerOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "buyer-1", "50,000 SLSH", "AMIN20", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "buyer-1"))
	_, err := f.svc.Deduct(ctx, admin, "buyer-1")
	require.NoError(t, err)

	res, err := f.svc.Release(ctx, admin, "buyer-1")
	require.NoError(t, err)
	assert.True(t, res.Released)
	assert.False(t, res.CreditPending)
	assert.Equal(t, "owner-x", res.OwnerUserID)

	app, err := f.apps.FindByUserID(ctx, "owner-x")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(app.TotalEarned))
	require.Len(t, app.History, 1)
	assert.Equal(t, ambmodel.HistoryCommission, app.History[0].Type)
	assert.Equal(t, "buyer-1", app.History[0].SubscriptionID)
	require.Len(t, app.InvitedUsers, 1)
	assert.True(t, decimal.NewFromInt(50000).Equal(app.InvitedUsers[0].PaymentAmount))

	res, err = f.svc.Release(ctx, admin, "buyer-1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyReleased)
	assert.False(t, res.Released)

	app, _ = f.apps.FindByUserID(ctx, "owner-x")
	assert.True(t, decimal.NewFromInt(5000).Equal(app.TotalEarned))
	assert.Len(t, app.History, 1)
}

func TestRelease_FromPendingIsAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "buyer-1", "20000", "AMIN20", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "buyer-1"))

	res, err := f.svc.Release(ctx, admin, "buyer-1")
	require.NoError(t, err)
	assert.True(t, res.Released)

	sub, _ := f.subs.FindByID(ctx, "buyer-1")
	assert.Equal(t, submodel.CommissionReleased, sub.Commission.Status)
	assert.Nil(t, sub.Commission.DeductedAt)
}

func TestRelease_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "nocode", "20000", "", false)

	_, err := f.svc.Release(ctx, admin, "nocode")
	assert.ErrorIs(t, err, submodel.ErrNoCommission)

	_, err = f.svc.Release(ctx, admin, "missing")
	assert.ErrorIs(t, err, submodel.ErrSubscriptionNotFound)

	_, err = f.svc.Release(ctx, buyer, "nocode")
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestRelease_ConcurrentCallsCreditExactlyOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "buyer-1", "10000", "AMIN20", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "buyer-1"))

	const callers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		released int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Release(ctx, admin, "buyer-1")
			if err != nil {
				t.Error(err)
				return
			}
			if res.Released {
				mu.Lock()
				released++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, released)
	app, err := f.apps.FindByUserID(ctx, "owner-x")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(app.TotalEarned))
	assert.Len(t, app.History, 1)
}

func TestRelease_CreditFailureIsReconciled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "buyer-1", "10000", "AMIN20", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "buyer-1"))

	f.apps.failing = true
	res, err := f.svc.Release(ctx, admin, "buyer-1")
	require.NoError(t, err)
	assert.True(t, res.Released)
	assert.True(t, res.CreditPending)
	assert.Len(t, f.enqueuer.reasons, 1)

	_, err = f.apps.FindByUserID(ctx, "owner-x")
	assert.ErrorIs(t, err, ambmodel.ErrApplicationNotFound)

	f.apps.failing = false
	report, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Credited)

	report, err = f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Credited)
	assert.Equal(t, 1, report.Skipped)

	app, err := f.apps.FindByUserID(ctx, "owner-x")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(app.TotalEarned))
	assert.Len(t, app.History, 1)
}

// Chủ mã tạo tay được credit và rút tiền trước khi qua pipeline;
// kích hoạt sau đó không được làm reconcile credit lại lần nữa.
func TestReconcile_AfterLateActivationDoesNotCreditAgain(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now().UTC()
	f.seedApproved(t, "buyer-1", "250,000", "AMIN20", false)
	require.NoError(t, f.svc.OnSubscriptionApproved(ctx, "buyer-1"))

	res, err := f.svc.Release(ctx, admin, "buyer-1")
	require.NoError(t, err)
	require.True(t, res.Released)

	_, err = f.apps.Update(ctx, "owner-x", func(app *ambmodel.Application) error {
		return app.ReserveWithdrawal(ambmodel.Reservation{
			WithdrawalID: "w1",
			Amount:       decimal.NewFromInt(10000),
			Tax:          decimal.NewFromInt(200),
			Phone:        "0612",
		}, now)
	})
	require.NoError(t, err)

	_, err = f.apps.Update(ctx, "owner-x", func(app *ambmodel.Application) error {
		fee := decimal.NewFromInt(10000)
		if err := app.SubmitPayment(ambmodel.PaymentClaim{Phone: "0612", Method: "zaad", Amount: fee}, fee, now); err != nil {
			return err
		}
		if _, err := app.ApprovePayment(now); err != nil {
			return err
		}
		if err := app.RecordSocialHandle("tiktok", "amin", now); err != nil {
			return err
		}
		if err := app.ApproveSocialPlatform("tiktok", now); err != nil {
			return err
		}
		if err := app.ApproveSocial(now); err != nil {
			return err
		}
		if err := app.SubmitIdentity(ambmodel.IdentityDetails{LegalName: "Amin"}, now); err != nil {
			return err
		}
		if err := app.ApproveIdentity(now); err != nil {
			return err
		}
		_, err := app.Activate("AMIN20", now)
		return err
	})
	require.NoError(t, err)

	report, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 0, report.Credited)
	assert.Equal(t, 1, report.Skipped)

	app, err := f.apps.FindByUserID(ctx, "owner-x")
	require.NoError(t, err)
	assert.Equal(t, ambmodel.StatusApproved, app.Status)
	assert.True(t, decimal.NewFromInt(25000).Equal(app.TotalEarned))
	assert.True(t, decimal.NewFromInt(10200).Equal(app.TotalWithdrawn))
	assert.True(t, decimal.NewFromInt(14800).Equal(app.Withdrawable()))
}

func TestGrossPlatformEarnings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedApproved(t, "a", "50,000 SLSH", "AMIN20", false)
	f.seedApproved(t, "b", "20000", "AMIN20", false)
	f.seedApproved(t, "c", "30000", "", false)
	f.seedApproved(t, "manual", "99999", "", true)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, f.svc.OnSubscriptionApproved(ctx, id))
	}
	// a: released (5000), b: still pending (not counted)
	_, err := f.svc.Release(ctx, admin, "a")
	require.NoError(t, err)

	out, err := f.svc.GrossPlatformEarnings(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 4, out.ApprovedCount)
	assert.Equal(t, 1, out.ManualExcluded)
	assert.Equal(t, 1, out.CommissionCount)
	assert.True(t, decimal.NewFromInt(100000).Equal(out.GrossRevenue), out.GrossRevenue.String())
	assert.True(t, decimal.NewFromInt(5000).Equal(out.CommissionCost))
	assert.True(t, decimal.NewFromInt(95000).Equal(out.NetEarnings))

	_, err = f.svc.GrossPlatformEarnings(ctx, buyer)
	assert.ErrorIs(t, err, apperror.ErrAdminRequired)
}
