package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/domains/promocode/repository"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/pkg/cache"
)

type fakeStats struct {
	approvedUsers map[string]bool
	usage         map[string]int
}

func (f *fakeStats) HasApprovedSubscription(_ context.Context, userID string) (bool, error) {
	return f.approvedUsers[userID], nil
}

func (f *fakeStats) CountApprovedByPromoCode(_ context.Context, code string) (int, error) {
	return f.usage[model.NormalizeCode(code)], nil
}

var admin = shared.Actor{UserID: "admin-1", Role: shared.RoleAdmin}

func sequenceGenerator(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("out of codes")
		}
		c := codes[i]
		i++
		return c, nil
	}
}

func newTestService(gen CodeGenerator) (*PromoCodeService, *repository.MemoryRepository, *fakeStats, *cache.MemoryCache) {
	repo := repository.NewMemoryRepository()
	stats := &fakeStats{approvedUsers: map[string]bool{"owner-x": true}, usage: map[string]int{}}
	c := cache.NewMemoryCache()
	if gen == nil {
		gen = RandomCodeGenerator(6)
	}
	svc := NewPromoCodeService(repo, stats, c, realtime.NopPublisher{}, gen, Config{MaxIssueAttempts: 3})
	return svc, repo, stats, c
}

func TestCreate_DuplicateRegardlessOfCase(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, &model.CreatePromoCodeRequest{Code: "AMIN20", OwnerUserID: "owner-x"})
	require.NoError(t, err)

	for _, variant := range []string{"amin20", " Amin20 ", "AMIN20"} {
		_, err := svc.Create(ctx, admin, &model.CreatePromoCodeRequest{Code: variant, OwnerUserID: "owner-x"})
		assert.ErrorIs(t, err, model.ErrDuplicateCode, variant)
	}
}

func TestCreate_StoresNormalizedCode(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)
	ctx := context.Background()

	promo, err := svc.Create(ctx, admin, &model.CreatePromoCodeRequest{Code: "  newcode ", OwnerUserID: "owner-x"})
	require.NoError(t, err)
	assert.Equal(t, "NEWCODE", promo.Code)

	stored, err := repo.FindByCode(ctx, "NEWCODE")
	require.NoError(t, err)
	assert.Equal(t, "owner-x", stored.OwnerUserID)

	_, err = svc.Create(ctx, admin, &model.CreatePromoCodeRequest{Code: "bad code!", OwnerUserID: "owner-x"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCreate_OwnerNotEligible(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), admin, &model.CreatePromoCodeRequest{Code: "NEWBIE", OwnerUserID: "stranger"})
	assert.ErrorIs(t, err, model.ErrOwnerNotEligible)

	_, err = repo.FindByCode(context.Background(), "NEWBIE")
	assert.ErrorIs(t, err, model.ErrPromoNotFound)
}

func TestCreate_RequiresAdmin(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	user := shared.Actor{UserID: "owner-x", Role: shared.RoleUser}

	_, err := svc.Create(context.Background(), user, &model.CreatePromoCodeRequest{Code: "AMIN20", OwnerUserID: "owner-x"})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	assert.True(t, apperror.IsKind(svc.Delete(context.Background(), user, "AMIN20"), apperror.KindForbidden))
}

func TestIssue_RetriesOnCollision(t *testing.T) {
	svc, repo, _, _ := newTestService(sequenceGenerator("TAKEN1", "TAKEN1", "FRESH2"))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, model.NewPromoCode("TAKEN1", "someone", "", "")))

	promo, err := svc.Issue(ctx, "stranger", "s@x.io", "Stranger")
	require.NoError(t, err)
	assert.Equal(t, "FRESH2", promo.Code)
	assert.Equal(t, "stranger", promo.OwnerUserID)
}

func TestIssue_GivesUpAfterMaxAttempts(t *testing.T) {
	svc, repo, _, _ := newTestService(sequenceGenerator("TAKEN1", "TAKEN1", "TAKEN1", "FRESH2"))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, model.NewPromoCode("TAKEN1", "someone", "", "")))

	_, err := svc.Issue(ctx, "stranger", "", "")
	assert.ErrorIs(t, err, model.ErrIssueExhausted)
}

func TestResolveOwner(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, model.NewPromoCode("AMIN20", "owner-x", "x@x.io", "X")))

	promo, err := svc.ResolveOwner(ctx, " amin20")
	require.NoError(t, err)
	assert.Equal(t, "owner-x", promo.OwnerUserID)

	_, err = svc.ResolveOwner(ctx, "NOPE")
	assert.ErrorIs(t, err, model.ErrPromoNotFound)
}

func TestUsageCount_LiveCountWrittenBack(t *testing.T) {
	svc, repo, stats, c := newTestService(nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, model.NewPromoCode("AMIN20", "owner-x", "", "")))

	// stale cache value is never read back by UsageCount
	require.NoError(t, c.Set(ctx, usageCacheKey("AMIN20"), 99, 0))
	stats.usage["AMIN20"] = 2

	count, err := svc.UsageCount(ctx, "amin20")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var cached int
	found, err := c.Get(ctx, usageCacheKey("AMIN20"), &cached)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, cached)

	stored, err := repo.FindByCode(ctx, "AMIN20")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsageCount)
}

func TestRecountAll(t *testing.T) {
	svc, repo, stats, _ := newTestService(nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, model.NewPromoCode("AAA", "owner-x", "", "")))
	require.NoError(t, repo.Create(ctx, model.NewPromoCode("BBB", "owner-x", "", "")))
	stats.usage["AAA"] = 3

	n, err := svc.RecountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := svc.List(ctx, admin)
	require.NoError(t, err)
	usage := map[string]int{}
	for _, row := range list {
		usage[row.Code] = row.UsageCount
	}
	assert.Equal(t, map[string]int{"AAA": 3, "BBB": 0}, usage)
}

func TestDelete(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, &model.CreatePromoCodeRequest{Code: "AMIN20", OwnerUserID: "owner-x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, "amin20"))
	assert.ErrorIs(t, svc.Delete(ctx, admin, "AMIN20"), model.ErrPromoNotFound)
}

func TestRandomCodeGenerator(t *testing.T) {
	code, err := RandomCodeGenerator(8)()
	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Equal(t, model.NormalizeCode(code), code)
}
