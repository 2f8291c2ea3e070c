package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monetization-backend/internal/domains/ambassador/model"
	"monetization-backend/internal/domains/ambassador/repository"
	promomodel "monetization-backend/internal/domains/promocode/model"
	userrepo "monetization-backend/internal/domains/user/repository"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/infrastructure/social"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
)

type fakePromos struct {
	byOwner map[string][]*promomodel.PromoCode
	issued  int
	usage   map[string]int
	deleted []string
	// onIssue chạy sau khi mã được tạo, trước khi Issue trả về
	onIssue func(p *promomodel.PromoCode)
}

func newFakePromos() *fakePromos {
	return &fakePromos{byOwner: map[string][]*promomodel.PromoCode{}, usage: map[string]int{}}
}

func (f *fakePromos) Issue(_ context.Context, owner, email, name string) (*promomodel.PromoCode, error) {
	f.issued++
	p := promomodel.NewPromoCode("ISSUED"+string(rune('0'+f.issued)), owner, email, name)
	f.byOwner[owner] = append(f.byOwner[owner], p)
	if f.onIssue != nil {
		f.onIssue(p)
	}
	return p, nil
}

func (f *fakePromos) Delete(_ context.Context, _ shared.Actor, code string) error {
	f.deleted = append(f.deleted, code)
	for owner, codes := range f.byOwner {
		kept := codes[:0]
		for _, p := range codes {
			if p.Code != code {
				kept = append(kept, p)
			}
		}
		f.byOwner[owner] = kept
	}
	return nil
}

func (f *fakePromos) GetByOwner(_ context.Context, owner string) ([]*promomodel.PromoCode, error) {
	return f.byOwner[owner], nil
}

func (f *fakePromos) UsageCount(_ context.Context, code string) (int, error) {
	return f.usage[code], nil
}

type fixture struct {
	svc      *AmbassadorService
	repo     *repository.MemoryRepository
	promos   *fakePromos
	profiles *userrepo.MemoryProfileRepository
	verifier *social.StaticVerifier
}

func newFixture() *fixture {
	f := &fixture{
		repo:     repository.NewMemoryRepository(),
		promos:   newFakePromos(),
		profiles: userrepo.NewMemoryProfileRepository(),
		verifier: social.NewStaticVerifier(social.Exists),
	}
	f.svc = NewAmbassadorService(f.repo, f.promos, f.profiles, f.verifier, realtime.NopPublisher{}, Config{
		ApplicationFee: decimal.NewFromInt(10000),
		StrikeLimit:    3,
	})
	return f
}

var (
	admin     = shared.Actor{UserID: "admin-1", Role: shared.RoleAdmin}
	applicant = shared.Actor{UserID: "amb-1", Email: "amina@x.io", Role: shared.RoleUser}
)

func (f *fixture) runPipeline(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.SubmitPayment(ctx, applicant, &model.SubmitPaymentRequest{Phone: "+252 61 234 5678", Method: "zaad", Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)
	_, err = f.svc.ApprovePayment(ctx, admin, applicant.UserID)
	require.NoError(t, err)

	res, err := f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: "tiktok", Handle: "@amina"})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	_, err = f.svc.ApproveSocialPlatform(ctx, admin, applicant.UserID, "tiktok")
	require.NoError(t, err)
	_, err = f.svc.ApproveSocial(ctx, admin, applicant.UserID)
	require.NoError(t, err)

	_, err = f.svc.SubmitIdentity(ctx, applicant, &model.SubmitIdentityRequest{LegalName: "Amina Noor", Age: 24, City: "Hargeisa", Country: "SO"})
	require.NoError(t, err)
	_, err = f.svc.ApproveIdentity(ctx, admin, applicant.UserID)
	require.NoError(t, err)
}

func TestSocial_ThreeStrikesThenRejectedOutright(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.verifier.Default = social.NotExists

	for i := 1; i <= 2; i++ {
		_, err := f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: "tiktok", Handle: "ghost"})
		assert.ErrorIs(t, err, model.ErrSocialHandleNotFound)

		app, err := f.repo.FindByUserID(ctx, applicant.UserID)
		require.NoError(t, err)
		assert.Equal(t, i, app.SocialStrikes)
		assert.NotEqual(t, model.StatusRejected, app.Status)
	}

	_, err := f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: "tiktok", Handle: "ghost"})
	assert.ErrorIs(t, err, model.ErrFraudThreshold)
	assert.True(t, apperror.IsKind(err, apperror.KindFraudThreshold))

	app, err := f.repo.FindByUserID(ctx, applicant.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, app.Status)
	assert.Equal(t, 3, app.SocialStrikes)

	// 4th attempt is refused before probing, even with a real handle
	calls := f.verifier.Calls
	f.verifier.Default = social.Exists
	_, err = f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: "instagram", Handle: "real"})
	assert.ErrorIs(t, err, model.ErrFraudThreshold)
	assert.Equal(t, calls, f.verifier.Calls)
}

func TestSocial_MalformedHandleIsValidationNotStrike(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.verifier.Default = social.NotExists

	for _, handle := range []string{"@", "  @ ", "", "two words", "@@amina"} {
		_, err := f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: "tiktok", Handle: handle})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "handle %q", handle)
	}

	assert.Zero(t, f.verifier.Calls)
	_, err := f.repo.FindByUserID(ctx, applicant.UserID)
	assert.ErrorIs(t, err, model.ErrApplicationNotFound)

	// platform được chuẩn hóa trước khi kiểm tra danh sách hỗ trợ
	f.verifier.Default = social.Exists
	res, err := f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: " TikTok ", Handle: "@amina"})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 0, res.Application.SocialStrikes)
}

type failingVerifier struct{}

func (failingVerifier) Verify(context.Context, string, string) (social.Result, error) {
	return social.Unknown, errors.New("timeout")
}

func TestSocial_UnknownResultFailsOpen(t *testing.T) {
	f := newFixture()
	f.svc.verifier = failingVerifier{}

	res, err := f.svc.SubmitSocialHandle(context.Background(), applicant, &model.SubmitSocialRequest{Platform: "youtube", Handle: "amina"})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 0, res.Application.SocialStrikes)
	assert.Equal(t, model.SocialSubmitted, res.Application.SocialStatus)
	assert.Equal(t, "amina", res.Application.SocialUsernames["youtube"])
}

func TestRejectSocialPlatform_ThirdStrikeRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.SubmitSocialHandle(ctx, applicant, &model.SubmitSocialRequest{Platform: "tiktok", Handle: "me"})
		require.NoError(t, err)
		app, err := f.svc.RejectSocialPlatform(ctx, admin, applicant.UserID, "tiktok")
		require.NoError(t, err)
		assert.Equal(t, i+1, app.SocialStrikes)
	}

	app, err := f.repo.FindByUserID(ctx, applicant.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, app.Status)
}

func TestApprovePayment_SetsTrustBadge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SubmitPayment(ctx, applicant, &model.SubmitPaymentRequest{Phone: "0612345678", Method: "evc", Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		app, err := f.svc.ApprovePayment(ctx, admin, applicant.UserID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentApproved, app.PaymentStatus)
	}

	profile, err := f.profiles.Get(ctx, applicant.UserID)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
	assert.False(t, profile.IsAmbassador)
}

func TestActivate_IssuesThenReuses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.runPipeline(t)

	_, err := f.svc.Activate(ctx, admin, applicant.UserID, false)
	assert.ErrorIs(t, err, model.ErrTermsNotAccepted)

	res, err := f.svc.Activate(ctx, admin, applicant.UserID, true)
	require.NoError(t, err)
	assert.False(t, res.Reused)
	assert.Equal(t, model.StatusApproved, res.Application.Status)
	assert.Equal(t, res.PromoCode, res.Application.PromoCode)

	again, err := f.svc.Activate(ctx, admin, applicant.UserID, true)
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.Equal(t, res.PromoCode, again.PromoCode)
	assert.Equal(t, 1, f.promos.issued)

	profile, err := f.profiles.Get(ctx, applicant.UserID)
	require.NoError(t, err)
	assert.True(t, profile.IsAmbassador)
	assert.True(t, profile.IsVerified)
}

func TestActivate_ReusesCodeIssuedBeforeFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.runPipeline(t)

	// code issued by an earlier call that died before the application write
	existing, err := f.promos.Issue(ctx, applicant.UserID, applicant.Email, "Amina")
	require.NoError(t, err)

	res, err := f.svc.Activate(ctx, admin, applicant.UserID, true)
	require.NoError(t, err)
	assert.True(t, res.Reused)
	assert.Equal(t, existing.Code, res.PromoCode)
	assert.Equal(t, 1, f.promos.issued)
}

func TestActivate_LosingConcurrentCallRevokesItsCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.runPipeline(t)

	// một request khác kích hoạt xong giữa lúc Issue và lúc ghi application
	f.promos.onIssue = func(*promomodel.PromoCode) {
		_, err := f.repo.Update(ctx, applicant.UserID, func(app *model.Application) error {
			_, err := app.Activate("WINNER", time.Now())
			return err
		})
		require.NoError(t, err)
	}

	res, err := f.svc.Activate(ctx, admin, applicant.UserID, true)
	require.NoError(t, err)
	assert.True(t, res.Reused)
	assert.Equal(t, "WINNER", res.PromoCode)
	assert.Equal(t, model.StatusApproved, res.Application.Status)

	assert.Equal(t, []string{"ISSUED1"}, f.promos.deleted)
	owned, err := f.promos.GetByOwner(ctx, applicant.UserID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestActivate_NotReady(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SubmitPayment(ctx, applicant, &model.SubmitPaymentRequest{Phone: "0612345678", Method: "evc", Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)

	_, err = f.svc.Activate(ctx, admin, applicant.UserID, true)
	assert.ErrorIs(t, err, model.ErrNotReadyForActivation)
	assert.Equal(t, 0, f.promos.issued)
}

func TestAdminOperations_RejectNonAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := applicant.UserID

	_, err := f.svc.SubmitPayment(ctx, applicant, &model.SubmitPaymentRequest{Phone: "0612345678", Method: "evc", Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)

	calls := []func() error{
		func() error { _, err := f.svc.ApprovePayment(ctx, applicant, uid); return err },
		func() error { _, err := f.svc.ApproveSocialPlatform(ctx, applicant, uid, "tiktok"); return err },
		func() error { _, err := f.svc.RejectSocialPlatform(ctx, applicant, uid, "tiktok"); return err },
		func() error { _, err := f.svc.ApproveSocial(ctx, applicant, uid); return err },
		func() error { _, err := f.svc.ApproveIdentity(ctx, applicant, uid); return err },
		func() error { _, err := f.svc.Activate(ctx, applicant, uid, true); return err },
		func() error { _, err := f.svc.ListPending(ctx, applicant); return err },
		func() error {
			_, err := f.svc.Get(ctx, shared.Actor{UserID: "other", Role: shared.RoleUser}, uid)
			return err
		},
	}
	for i, call := range calls {
		assert.ErrorIs(t, call(), apperror.ErrAdminRequired, "call %d", i)
	}

	app, err := f.repo.FindByUserID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, app.PaymentStatus)
}

func TestDashboard_UsesLiveInviteCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.runPipeline(t)

	res, err := f.svc.Activate(ctx, admin, applicant.UserID, true)
	require.NoError(t, err)
	f.promos.usage[res.PromoCode] = 4

	dash, err := f.svc.Dashboard(ctx, applicant)
	require.NoError(t, err)
	assert.Equal(t, 4, dash.TotalInvites)
	assert.True(t, dash.Withdrawable.IsZero())

	view, err := f.svc.PromoCode(ctx, applicant)
	require.NoError(t, err)
	assert.Equal(t, res.PromoCode, view.Code)
	assert.Equal(t, 4, view.Usage)
}

func TestListPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SubmitIdentity(ctx, applicant, &model.SubmitIdentityRequest{LegalName: "Amina Noor", Age: 24, City: "Hargeisa", Country: "SO"})
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, applicant.UserID, pending[0].UserID)
	assert.Equal(t, applicant.Email, pending[0].Email)
}
