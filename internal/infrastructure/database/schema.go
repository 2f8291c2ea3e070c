package database

import (
	"context"
	"fmt"
	"log"
)

// schemaStatements mirror the logical collections: subscriptions, promocodes,
// monetization, withdrawals, plus the two profile flags the ledger writes.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id                  TEXT PRIMARY KEY,
		user_email          TEXT NOT NULL DEFAULT '',
		user_name           TEXT NOT NULL DEFAULT '',
		school_name         TEXT,
		class_name          TEXT,
		amount              TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'pending',
		promo_code          TEXT,
		is_manual           BOOLEAN NOT NULL DEFAULT FALSE,
		commission_status   TEXT NOT NULL DEFAULT 'none',
		commission_amount   NUMERIC(20,0),
		promo_owner_user_id TEXT,
		promo_owner_name    TEXT,
		commission_pending_at  TIMESTAMPTZ,
		commission_deducted_at TIMESTAMPTZ,
		commission_released_at TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_promo_status ON subscriptions (UPPER(promo_code), status)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_commission_status ON subscriptions (commission_status)`,
	`CREATE TABLE IF NOT EXISTS promocodes (
		id            UUID PRIMARY KEY,
		code          TEXT NOT NULL,
		owner_user_id TEXT NOT NULL,
		owner_email   TEXT NOT NULL DEFAULT '',
		owner_name    TEXT NOT NULL DEFAULT '',
		usage_count   INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_promocodes_code ON promocodes (UPPER(TRIM(code)))`,
	`CREATE INDEX IF NOT EXISTS idx_promocodes_owner ON promocodes (owner_user_id)`,
	`CREATE TABLE IF NOT EXISTS monetization (
		user_id          TEXT PRIMARY KEY,
		document         JSONB NOT NULL,
		status           TEXT NOT NULL DEFAULT 'none',
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_monetization_status ON monetization (status)`,
	`CREATE TABLE IF NOT EXISTS withdrawals (
		id             UUID PRIMARY KEY,
		user_id        TEXT NOT NULL,
		phone          TEXT NOT NULL,
		amount         NUMERIC(20,2) NOT NULL,
		tax            NUMERIC(20,2) NOT NULL,
		total_deducted NUMERIC(20,2) NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		paid_at        TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_withdrawals_user ON withdrawals (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_withdrawals_status ON withdrawals (status)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id       TEXT PRIMARY KEY,
		is_ambassador BOOLEAN NOT NULL DEFAULT FALSE,
		is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates missing tables and indexes; safe to run on every start
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	log.Printf("[DATABASE] Schema ensured (%d statements)", len(schemaStatements))
	return nil
}
