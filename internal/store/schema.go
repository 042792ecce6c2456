package store

import (
	"context"
	"fmt"
)

// Soft delete is a nullable deleted_at column everywhere; rows are
// never physically removed. The partial unique indexes enforce
// uniqueness among live rows only, and uq_disbursements_lddap_num
// backs the code generator's retry-on-conflict.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'USER',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payees (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		contact_number TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		bank_name TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payees_name
		ON payees (lower(name)) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS fund_sources (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		initial_balance NUMERIC(18,2) NOT NULL DEFAULT 0,
		reset TEXT NOT NULL DEFAULT 'NONE',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_fund_sources_code
		ON fund_sources (code) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS fund_entries (
		id BIGSERIAL PRIMARY KEY,
		fund_source_id BIGINT NOT NULL REFERENCES fund_sources(id),
		name TEXT NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS disbursements (
		id BIGSERIAL PRIMARY KEY,
		payee_id BIGINT NOT NULL REFERENCES payees(id),
		fund_source_id BIGINT NOT NULL REFERENCES fund_sources(id),
		method TEXT NOT NULL,
		lddap_type TEXT,
		lddap_num TEXT,
		check_num TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		date_received TIMESTAMPTZ NOT NULL,
		particulars TEXT NOT NULL DEFAULT '',
		gross_amount NUMERIC(18,2) NOT NULL,
		total_deductions NUMERIC(18,2) NOT NULL,
		net_amount NUMERIC(18,2) NOT NULL,
		remarks TEXT,
		approved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_disbursements_lddap_num
		ON disbursements (lddap_num) WHERE lddap_num IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS ix_disbursements_date_received
		ON disbursements (date_received DESC)`,
	`CREATE TABLE IF NOT EXISTS disbursement_items (
		id BIGSERIAL PRIMARY KEY,
		disbursement_id BIGINT NOT NULL REFERENCES disbursements(id),
		description TEXT NOT NULL DEFAULT '',
		account_code TEXT NOT NULL DEFAULT '',
		amount NUMERIC(18,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS deductions (
		id BIGSERIAL PRIMARY KEY,
		disbursement_id BIGINT NOT NULL REFERENCES disbursements(id),
		type TEXT NOT NULL,
		amount NUMERIC(18,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reference_sets (
		id BIGSERIAL PRIMARY KEY,
		disbursement_id BIGINT NOT NULL UNIQUE REFERENCES disbursements(id),
		cert_code TEXT NOT NULL DEFAULT '',
		ors_num TEXT NOT NULL DEFAULT '',
		dv_num TEXT NOT NULL DEFAULT '',
		class_code TEXT NOT NULL DEFAULT '',
		resp_code TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		log TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_logs_created_at ON logs (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS otp_challenges (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		code TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		consumed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema. Statements are idempotent so a restart
// against an existing database is a no-op.
func (s *Store) Migrate(ctx context.Context) error {
	s.log.Info("running database migrations")
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	s.log.Info("database migrations completed")
	return nil
}
