package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monetization-backend/internal/domains/withdrawal/model"
	"monetization-backend/internal/infrastructure/database"
	pkgdb "monetization-backend/pkg/database"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, user_id, phone, amount, tax, total_deducted, status, created_at, paid_at`

func scanWithdrawal(row pgx.Row) (*model.WithdrawalRequest, error) {
	var w model.WithdrawalRequest
	err := row.Scan(&w.ID, &w.UserID, &w.Phone, &w.Amount, &w.Tax, &w.TotalDeducted, &w.Status, &w.CreatedAt, &w.PaidAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresRepository) Create(ctx context.Context, w *model.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawals (id, user_id, phone, amount, tax, total_deducted, status, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		w.ID, w.UserID, w.Phone, w.Amount, w.Tax, w.TotalDeducted, string(w.Status), w.CreatedAt, w.PaidAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrWithdrawalExists
		}
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WithdrawalRequest, error) {
	w, err := scanWithdrawal(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM withdrawals WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("find withdrawal: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*model.WithdrawalRequest, error) {
	return pkgdb.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.WithdrawalRequest, error) {
		w, err := scanWithdrawal(tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if database.IsNoRows(err) {
				return nil, model.ErrWithdrawalNotFound
			}
			return nil, fmt.Errorf("lock withdrawal: %w", err)
		}

		if err := fn(w); err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx,
			`UPDATE withdrawals SET phone = $2, status = $3, paid_at = $4 WHERE id = $1`,
			w.ID, w.Phone, string(w.Status), w.PaidAt,
		)
		if err != nil {
			return nil, fmt.Errorf("update withdrawal: %w", err)
		}
		return w, nil
	})
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*model.WithdrawalRequest, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status model.Status) ([]*model.WithdrawalRequest, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM withdrawals WHERE status = $1 ORDER BY created_at ASC`, string(status))
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]*model.WithdrawalRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query withdrawals: %w", err)
	}
	defer rows.Close()

	var out []*model.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
