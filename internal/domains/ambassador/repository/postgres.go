package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monetization-backend/internal/domains/ambassador/model"
	"monetization-backend/internal/infrastructure/database"
	pkgdb "monetization-backend/pkg/database"
)

// PostgresRepository lưu mỗi application thành một JSONB document,
// status được tách ra cột riêng để lọc hàng đợi admin
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

func decode(raw []byte) (*model.Application, error) {
	var app model.Application
	if err := json.Unmarshal(raw, &app); err != nil {
		return nil, fmt.Errorf("decode application: %w", err)
	}
	return &app, nil
}

func (r *PostgresRepository) FindByUserID(ctx context.Context, userID string) (*model.Application, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM monetization WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return decode(raw)
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, fn UpdateFunc) (*model.Application, error) {
	return pkgdb.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Application, error) {
		now := time.Now().UTC()

		// Tạo document rỗng nếu chưa có; rollback sẽ xóa nó nếu fn lỗi
		seed, err := json.Marshal(model.NewApplication(userID, now))
		if err != nil {
			return nil, fmt.Errorf("encode seed application: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO monetization (user_id, document, status, updated_at)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING`,
			userID, seed, string(model.StatusNone), now,
		)
		if err != nil {
			return nil, fmt.Errorf("seed application: %w", err)
		}

		var raw []byte
		if err := tx.QueryRow(ctx, `SELECT document FROM monetization WHERE user_id = $1 FOR UPDATE`, userID).Scan(&raw); err != nil {
			return nil, fmt.Errorf("lock application: %w", err)
		}
		app, err := decode(raw)
		if err != nil {
			return nil, err
		}

		if err := fn(app); err != nil {
			return nil, err
		}

		doc, err := json.Marshal(app)
		if err != nil {
			return nil, fmt.Errorf("encode application: %w", err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE monetization SET document = $2, status = $3, updated_at = $4 WHERE user_id = $1`,
			userID, doc, string(app.Status), app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("update application: %w", err)
		}
		return app, nil
	})
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status model.Status) ([]*model.Application, error) {
	return r.query(ctx, `SELECT document FROM monetization WHERE status = $1 ORDER BY updated_at ASC`, string(status))
}

func (r *PostgresRepository) ListWithLedger(ctx context.Context) ([]*model.Application, error) {
	return r.query(ctx, `SELECT document FROM monetization WHERE jsonb_array_length(COALESCE(document->'history', '[]'::jsonb)) > 0`)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]*model.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []*model.Application
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		app, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}
