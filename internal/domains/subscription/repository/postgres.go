package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"monetization-backend/internal/domains/subscription/model"
	"monetization-backend/internal/infrastructure/database"
	pkgdb "monetization-backend/pkg/database"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

const selectColumns = `
	id, user_email, user_name, school_name, class_name, amount, status, promo_code, is_manual,
	commission_status, commission_amount, promo_owner_user_id, promo_owner_name,
	commission_pending_at, commission_deducted_at, commission_released_at,
	created_at, updated_at`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var (
		s                model.Subscription
		commissionStatus string
		commissionAmount decimal.NullDecimal
	)
	err := row.Scan(
		&s.ID, &s.UserEmail, &s.UserName, &s.SchoolName, &s.ClassName, &s.Amount, &s.Status,
		&s.PromoCode, &s.IsManual,
		&commissionStatus, &commissionAmount, &s.PromoOwnerUserID, &s.PromoOwnerName,
		&s.Commission.PendingAt, &s.Commission.DeductedAt, &s.Commission.ReleasedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Commission.Status = model.CommissionStatus(commissionStatus)
	if commissionAmount.Valid {
		s.Commission.Amount = commissionAmount.Decimal
	}
	return &s, nil
}

func nullableAmount(state model.CommissionState) interface{} {
	if state.IsNone() {
		return nil
	}
	return state.Amount
}

func (r *PostgresRepository) Create(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_email, user_name, school_name, class_name, amount, status, promo_code, is_manual,
			commission_status, commission_amount, promo_owner_user_id, promo_owner_name,
			commission_pending_at, commission_deducted_at, commission_released_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.UserEmail, sub.UserName, sub.SchoolName, sub.ClassName, sub.Amount, sub.Status,
		sub.PromoCode, sub.IsManual,
		string(sub.Commission.Status), nullableAmount(sub.Commission), sub.PromoOwnerUserID, sub.PromoOwnerName,
		sub.Commission.PendingAt, sub.Commission.DeductedAt, sub.Commission.ReleasedAt,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrSubscriptionExists
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return s, nil
}

// Update khóa row bằng SELECT ... FOR UPDATE, chạy fn rồi ghi lại trong cùng transaction
func (r *PostgresRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Subscription, error) {
	return pkgdb.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Subscription, error) {
		sub, err := scanSubscription(tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if database.IsNoRows(err) {
				return nil, model.ErrSubscriptionNotFound
			}
			return nil, fmt.Errorf("lock subscription: %w", err)
		}

		if err := fn(sub); err != nil {
			return nil, err
		}

		query := `
			UPDATE subscriptions SET
				user_email = $2, user_name = $3, school_name = $4, class_name = $5, amount = $6,
				status = $7, promo_code = $8, is_manual = $9,
				commission_status = $10, commission_amount = $11,
				promo_owner_user_id = $12, promo_owner_name = $13,
				commission_pending_at = $14, commission_deducted_at = $15, commission_released_at = $16,
				updated_at = $17
			WHERE id = $1
		`
		_, err = tx.Exec(ctx, query,
			sub.ID, sub.UserEmail, sub.UserName, sub.SchoolName, sub.ClassName, sub.Amount,
			sub.Status, sub.PromoCode, sub.IsManual,
			string(sub.Commission.Status), nullableAmount(sub.Commission),
			sub.PromoOwnerUserID, sub.PromoOwnerName,
			sub.Commission.PendingAt, sub.Commission.DeductedAt, sub.Commission.ReleasedAt,
			sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("update subscription: %w", err)
		}
		return sub, nil
	})
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status model.Status) ([]*model.Subscription, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE status = $1 ORDER BY created_at ASC`, string(status))
}

func (r *PostgresRepository) ListByCommissionStatus(ctx context.Context, statuses ...model.CommissionStatus) ([]*model.Subscription, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return r.query(ctx, `SELECT `+selectColumns+` FROM subscriptions WHERE commission_status = ANY($1) ORDER BY created_at ASC`, values)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]*model.Subscription, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) HasApprovedSubscription(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1 AND status = 'approved')`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved subscription: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountApprovedByPromoCode(ctx context.Context, code string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE UPPER(promo_code) = $1 AND status = 'approved'`,
		strings.ToUpper(strings.TrimSpace(code)),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count promo usage: %w", err)
	}
	return count, nil
}
