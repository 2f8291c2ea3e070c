package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"monetization-backend/internal/domains/user/model"
	"monetization-backend/internal/infrastructure/database"
)

// ProfileRepository ghi cờ isAmbassador / isVerified (trust badge).
// Missing rows read as a zero profile; writes upsert.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
	MarkAmbassador(ctx context.Context, userID string) error
}

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*model.Profile, error) {
	query := `
		SELECT user_id, is_ambassador, is_verified, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	p := &model.Profile{}
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.IsAmbassador, &p.IsVerified, &p.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return &model.Profile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepo) SetVerified(ctx context.Context, userID string, verified bool) error {
	query := `
		INSERT INTO user_profiles (user_id, is_verified, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET is_verified = EXCLUDED.is_verified, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, verified); err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	return nil
}

func (r *profileRepo) MarkAmbassador(ctx context.Context, userID string) error {
	query := `
		INSERT INTO user_profiles (user_id, is_ambassador, is_verified, updated_at)
		VALUES ($1, TRUE, TRUE, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET is_ambassador = TRUE, is_verified = TRUE, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("mark ambassador: %w", err)
	}
	return nil
}
