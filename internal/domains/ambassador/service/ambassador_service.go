package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"monetization-backend/internal/domains/ambassador/model"
	"monetization-backend/internal/domains/ambassador/repository"
	promomodel "monetization-backend/internal/domains/promocode/model"
	userrepo "monetization-backend/internal/domains/user/repository"
	"monetization-backend/internal/infrastructure/metrics"
	"monetization-backend/internal/infrastructure/realtime"
	"monetization-backend/internal/infrastructure/social"
	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/pkg/logger"
)

type Config struct {
	ApplicationFee decimal.Decimal
	StrikeLimit    int
}

type AmbassadorService struct {
	repo      repository.Repository
	promos    PromoIssuer
	profiles  userrepo.ProfileRepository
	verifier  social.Verifier
	publisher realtime.Publisher
	cfg       Config
	now       func() time.Time
}

func NewAmbassadorService(
	repo repository.Repository,
	promos PromoIssuer,
	profiles userrepo.ProfileRepository,
	verifier social.Verifier,
	publisher realtime.Publisher,
	cfg Config,
) *AmbassadorService {
	if cfg.StrikeLimit <= 0 {
		cfg.StrikeLimit = 3
	}
	return &AmbassadorService{
		repo:      repo,
		promos:    promos,
		profiles:  profiles,
		verifier:  verifier,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ ServiceInterface = (*AmbassadorService)(nil)

// -------------------------------------------------------------------
// STAGE A - PAYMENT
// -------------------------------------------------------------------

func (s *AmbassadorService) SubmitPayment(ctx context.Context, actor shared.Actor, req *model.SubmitPaymentRequest) (*model.Application, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	claim := model.PaymentClaim{Phone: req.Phone, Method: req.Method, Amount: req.Amount}
	app, err := s.repo.Update(ctx, actor.UserID, func(app *model.Application) error {
		s.stampEmail(app, actor)
		return app.SubmitPayment(claim, s.cfg.ApplicationFee, s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Ambassador payment submitted", map[string]interface{}{"user_id": actor.UserID, "method": req.Method})
	s.publish(ctx, app)
	return app, nil
}

// ApprovePayment is idempotent; the trust badge is (re)applied on every call
func (s *AmbassadorService) ApprovePayment(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error) {
	if err := s.requireExisting(ctx, actor, userID); err != nil {
		return nil, err
	}

	changed := false
	app, err := s.repo.Update(ctx, userID, func(app *model.Application) error {
		var err error
		changed, err = app.ApprovePayment(s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.profiles.SetVerified(ctx, userID, true); err != nil {
		return nil, fmt.Errorf("set trust badge: %w", err)
	}

	if changed {
		logger.Info("Ambassador payment approved", map[string]interface{}{"user_id": userID, "by": actor.UserID})
		s.publish(ctx, app)
	}
	return app, nil
}

// -------------------------------------------------------------------
// STAGE B - SOCIAL PROOF
// -------------------------------------------------------------------

// SubmitSocialHandle verifies the handle first. Not found costs a strike; an
// unknown verification result is accepted so a flaky check never costs a strike.
func (s *AmbassadorService) SubmitSocialHandle(ctx context.Context, actor shared.Actor, req *model.SubmitSocialRequest) (*model.SocialSubmitResult, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}
	platform := model.NormalizePlatform(req.Platform)
	handle := social.NormalizeHandle(req.Handle)

	// Hồ sơ đã bị khóa thì từ chối ngay, không gọi verifier
	if current, err := s.repo.FindByUserID(ctx, actor.UserID); err == nil && current.IsRejected() {
		return nil, model.ErrFraudThreshold
	} else if err != nil && !errors.Is(err, model.ErrApplicationNotFound) {
		return nil, err
	}

	result, verifyErr := s.verifier.Verify(ctx, platform, handle)
	if verifyErr != nil {
		logger.Warn("Social verification failed, treating as exists", map[string]interface{}{
			"platform": platform,
			"handle":   handle,
			"error":    verifyErr.Error(),
		})
	}

	if result == social.NotExists {
		return s.strike(ctx, actor, platform, handle)
	}

	app, err := s.repo.Update(ctx, actor.UserID, func(app *model.Application) error {
		s.stampEmail(app, actor)
		return app.RecordSocialHandle(platform, handle, s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Social handle submitted", map[string]interface{}{
		"user_id":  actor.UserID,
		"platform": platform,
		"result":   result.String(),
	})
	s.publish(ctx, app)
	return &model.SocialSubmitResult{
		Application:      app,
		Accepted:         true,
		StrikesRemaining: s.cfg.StrikeLimit - app.SocialStrikes,
	}, nil
}

func (s *AmbassadorService) strike(ctx context.Context, actor shared.Actor, platform, handle string) (*model.SocialSubmitResult, error) {
	rejected := false
	app, err := s.repo.Update(ctx, actor.UserID, func(app *model.Application) error {
		s.stampEmail(app, actor)
		var err error
		rejected, err = app.AddStrike(s.cfg.StrikeLimit, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.SocialStrikes.WithLabelValues("verifier").Inc()
	logger.Warn("Social handle not found, strike recorded", map[string]interface{}{
		"user_id":  actor.UserID,
		"platform": platform,
		"handle":   handle,
		"strikes":  app.SocialStrikes,
	})
	s.publish(ctx, app)

	if rejected {
		return nil, model.ErrFraudThreshold
	}
	return nil, model.ErrSocialHandleNotFound.WithDetails(map[string]interface{}{
		"platform":          platform,
		"strikes":           app.SocialStrikes,
		"strikes_remaining": s.cfg.StrikeLimit - app.SocialStrikes,
	})
}

func (s *AmbassadorService) ApproveSocialPlatform(ctx context.Context, actor shared.Actor, userID, platform string) (*model.Application, error) {
	if err := s.requireExisting(ctx, actor, userID); err != nil {
		return nil, err
	}

	app, err := s.repo.Update(ctx, userID, func(app *model.Application) error {
		return app.ApproveSocialPlatform(platform, s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Social platform verified", map[string]interface{}{"user_id": userID, "platform": platform, "by": actor.UserID})
	s.publish(ctx, app)
	return app, nil
}

// RejectSocialPlatform removes the handle and counts a strike; the third strike
// rejects the application and the admin gets the updated document back.
func (s *AmbassadorService) RejectSocialPlatform(ctx context.Context, actor shared.Actor, userID, platform string) (*model.Application, error) {
	if err := s.requireExisting(ctx, actor, userID); err != nil {
		return nil, err
	}

	rejected := false
	app, err := s.repo.Update(ctx, userID, func(app *model.Application) error {
		var err error
		rejected, err = app.RejectSocialPlatform(platform, s.cfg.StrikeLimit, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.SocialStrikes.WithLabelValues("admin").Inc()
	logger.Warn("Social platform rejected, strike recorded", map[string]interface{}{
		"user_id":  userID,
		"platform": platform,
		"strikes":  app.SocialStrikes,
		"rejected": rejected,
		"by":       actor.UserID,
	})
	s.publish(ctx, app)
	return app, nil
}

func (s *AmbassadorService) ApproveSocial(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error) {
	if err := s.requireExisting(ctx, actor, userID); err != nil {
		return nil, err
	}

	app, err := s.repo.Update(ctx, userID, func(app *model.Application) error {
		return app.ApproveSocial(s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Social proof approved", map[string]interface{}{"user_id": userID, "by": actor.UserID})
	s.publish(ctx, app)
	return app, nil
}

// -------------------------------------------------------------------
// STAGE C - IDENTITY
// -------------------------------------------------------------------

func (s *AmbassadorService) SubmitIdentity(ctx context.Context, actor shared.Actor, req *model.SubmitIdentityRequest) (*model.Application, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	app, err := s.repo.Update(ctx, actor.UserID, func(app *model.Application) error {
		s.stampEmail(app, actor)
		return app.SubmitIdentity(req.ToDetails(), s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Identity submitted", map[string]interface{}{"user_id": actor.UserID})
	s.publish(ctx, app)
	return app, nil
}

func (s *AmbassadorService) ApproveIdentity(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error) {
	if err := s.requireExisting(ctx, actor, userID); err != nil {
		return nil, err
	}

	app, err := s.repo.Update(ctx, userID, func(app *model.Application) error {
		return app.ApproveIdentity(s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Identity approved", map[string]interface{}{"user_id": userID, "by": actor.UserID})
	s.publish(ctx, app)
	return app, nil
}

// -------------------------------------------------------------------
// ACTIVATION
// -------------------------------------------------------------------

// Activate issues (or reuses) the promo code, approves the application and flags
// the profile. Each step is safe to repeat, so a failed call can simply be re-run.
func (s *AmbassadorService) Activate(ctx context.Context, actor shared.Actor, userID string, termsAccepted bool) (*model.ActivationResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if !termsAccepted {
		return nil, model.ErrTermsNotAccepted
	}

	current, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.IsRejected() {
		return nil, model.ErrApplicationRejected
	}
	if current.Status != model.StatusApproved && !current.ReadyForActivation() {
		return nil, model.ErrNotReadyForActivation
	}

	// 1. Promo code: dùng lại mã đã có của user nếu có
	code, reused, err := s.ensurePromoCode(ctx, current)
	if err != nil {
		return nil, err
	}

	// 2. Application → approved
	app, err := s.repo.Update(ctx, userID, func(app *model.Application) error {
		_, err := app.Activate(code, s.now())
		return err
	})
	if errors.Is(err, model.ErrAlreadyActivated) && !reused {
		// Một lần kích hoạt song song đã thắng với mã khác: thu hồi mã vừa phát hành
		app, err = s.yieldToConcurrentActivation(ctx, actor, userID, code)
		if err != nil {
			return nil, err
		}
		return &model.ActivationResult{Application: app, PromoCode: app.PromoCode, Reused: true}, nil
	}
	if err != nil {
		return nil, err
	}

	// 3. Profile flags
	if err := s.profiles.MarkAmbassador(ctx, userID); err != nil {
		return nil, fmt.Errorf("mark ambassador: %w", err)
	}

	logger.Info("Ambassador activated", map[string]interface{}{
		"user_id":    userID,
		"promo_code": code,
		"reused":     reused,
		"by":         actor.UserID,
	})
	s.publish(ctx, app)
	return &model.ActivationResult{Application: app, PromoCode: code, Reused: reused}, nil
}

// yieldToConcurrentActivation deletes the code this call issued and returns the
// application activated by the winning call.
func (s *AmbassadorService) yieldToConcurrentActivation(ctx context.Context, actor shared.Actor, userID, orphan string) (*model.Application, error) {
	if err := s.promos.Delete(ctx, actor, orphan); err != nil {
		logger.Error("Failed to revoke orphaned promo code "+orphan, err)
	}
	logger.Warn("Concurrent activation detected, issued code revoked", map[string]interface{}{
		"user_id": userID,
		"revoked": orphan,
	})
	return s.repo.FindByUserID(ctx, userID)
}

func (s *AmbassadorService) ensurePromoCode(ctx context.Context, app *model.Application) (string, bool, error) {
	if app.PromoCode != "" {
		return app.PromoCode, true, nil
	}

	existing, err := s.promos.GetByOwner(ctx, app.UserID)
	if err != nil {
		return "", false, fmt.Errorf("lookup existing promo code: %w", err)
	}
	if len(existing) > 0 {
		return existing[0].Code, true, nil
	}

	name := ""
	if app.Identity != nil {
		name = app.Identity.LegalName
	}
	promo, err := s.promos.Issue(ctx, app.UserID, app.Email, name)
	if err != nil {
		return "", false, err
	}
	return promo.Code, false, nil
}

// -------------------------------------------------------------------
// READS
// -------------------------------------------------------------------

// Get: user xem hồ sơ của mình, admin xem bất kỳ
func (s *AmbassadorService) Get(ctx context.Context, actor shared.Actor, userID string) (*model.Application, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	if userID != actor.UserID && !actor.IsAdmin() {
		return nil, apperror.ErrAdminRequired
	}
	return s.repo.FindByUserID(ctx, userID)
}

func (s *AmbassadorService) ListPending(ctx context.Context, actor shared.Actor) ([]*model.Application, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, model.StatusPending)
}

// Dashboard: total invites dùng số đếm trực tiếp từ subscriptions khi đã có mã
func (s *AmbassadorService) Dashboard(ctx context.Context, actor shared.Actor) (*model.Dashboard, error) {
	app, err := s.Get(ctx, actor, actor.UserID)
	if err != nil {
		return nil, err
	}

	invites := len(app.InvitedUsers)
	if app.PromoCode != "" {
		count, err := s.promos.UsageCount(ctx, app.PromoCode)
		if err != nil {
			return nil, err
		}
		invites = count
	}

	return &model.Dashboard{
		UserID:         app.UserID,
		Status:         app.Status,
		PromoCode:      app.PromoCode,
		TotalInvites:   invites,
		TotalEarned:    app.TotalEarned,
		TotalWithdrawn: app.TotalWithdrawn,
		Withdrawable:   app.Withdrawable(),
		InvitedUsers:   app.InvitedUsers,
		History:        app.History,
		GeneratedAt:    s.now(),
	}, nil
}

func (s *AmbassadorService) PromoCode(ctx context.Context, actor shared.Actor) (*model.PromoCodeView, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	codes, err := s.promos.GetByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, promomodel.ErrPromoNotFound
	}

	usage, err := s.promos.UsageCount(ctx, codes[0].Code)
	if err != nil {
		return nil, err
	}
	return &model.PromoCodeView{Code: codes[0].Code, Usage: usage}, nil
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

func (s *AmbassadorService) requireExisting(ctx context.Context, actor shared.Actor, userID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	_, err := s.repo.FindByUserID(ctx, userID)
	return err
}

func (s *AmbassadorService) stampEmail(app *model.Application, actor shared.Actor) {
	if app.Email == "" && actor.Email != "" {
		app.Email = actor.Email
	}
}

func (s *AmbassadorService) publish(ctx context.Context, app *model.Application) {
	change := realtime.NewChange(realtime.CollectionMonetization, app.UserID, app.UserID, realtime.OpUpsert, app)
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.Error("Failed to publish application change", err)
	}
}
