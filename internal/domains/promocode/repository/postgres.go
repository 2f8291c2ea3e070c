package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/infrastructure/database"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, code, owner_user_id, owner_email, owner_name, usage_count, created_at`

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.OwnerUserID, &p.OwnerEmail, &p.OwnerName, &p.UsageCount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	query := `
		INSERT INTO promocodes (id, code, owner_user_id, owner_email, owner_name, usage_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		promo.ID, model.NormalizeCode(promo.Code), promo.OwnerUserID,
		promo.OwnerEmail, promo.OwnerName, promo.UsageCount, promo.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrDuplicateCode
		}
		return fmt.Errorf("insert promocode: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `SELECT ` + selectColumns + ` FROM promocodes WHERE UPPER(TRIM(code)) = $1`

	p, err := scanPromo(r.db.QueryRow(ctx, query, model.NormalizeCode(code)))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promocode by code: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerUserID string) ([]*model.PromoCode, error) {
	query := `SELECT ` + selectColumns + ` FROM promocodes WHERE owner_user_id = $1 ORDER BY created_at ASC`
	return r.query(ctx, query, ownerUserID)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*model.PromoCode, error) {
	query := `SELECT ` + selectColumns + ` FROM promocodes ORDER BY created_at DESC`
	return r.query(ctx, query)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]*model.PromoCode, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query promocodes: %w", err)
	}
	defer rows.Close()

	var out []*model.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promocode: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM promocodes WHERE UPPER(TRIM(code)) = $1`, model.NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("delete promocode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPromoNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateUsageCount(ctx context.Context, code string, count int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE promocodes SET usage_count = $2 WHERE UPPER(TRIM(code)) = $1`,
		model.NormalizeCode(code), count,
	)
	if err != nil {
		return fmt.Errorf("update promocode usage: %w", err)
	}
	return nil
}
