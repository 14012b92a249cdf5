// Package dbtest opens an in-memory SQLite database carrying the marketplace
// schema for package tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		license_number TEXT,
		provider_customer_id TEXT,
		provider_wallet_id TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'OPEN',
		vehicle_plate TEXT NOT NULL,
		vehicle_renavam TEXT,
		service_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE proposals (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		dispatcher_id INTEGER NOT NULL,
		fee_value INTEGER NOT NULL,
		tax_value INTEGER NOT NULL,
		total_value INTEGER NOT NULL,
		estimated_days INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		is_accepted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_proposals_accepted ON proposals (order_id) WHERE is_accepted`,
	`CREATE TABLE payments (
		id INTEGER PRIMARY KEY,
		proposal_id INTEGER NOT NULL,
		provider TEXT NOT NULL,
		external_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		amount INTEGER NOT NULL,
		commission_value INTEGER NOT NULL,
		payout_value INTEGER NOT NULL,
		invoice_url TEXT NOT NULL DEFAULT '',
		qr_code_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE payment_events (
		id INTEGER PRIMARY KEY,
		provider TEXT NOT NULL,
		provider_event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		external_payment_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		received_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_payment_events_provider_event ON payment_events (provider, provider_event_id)`,
	`CREATE TABLE messages (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		is_from_dispatcher BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE reviews (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		dispatcher_id INTEGER NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE ledger_entries (
		id INTEGER PRIMARY KEY,
		source_type TEXT NOT NULL,
		source_id INTEGER NOT NULL,
		currency TEXT NOT NULL DEFAULT 'BRL',
		occurred_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX ux_ledger_entries_source ON ledger_entries (source_type, source_id)`,
	`CREATE TABLE ledger_entry_lines (
		id INTEGER PRIMARY KEY,
		ledger_entry_id INTEGER NOT NULL,
		account_code TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	)`,
}

// Open returns a fresh shared-cache in-memory database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// Node returns a snowflake generator for tests.
func Node(t testing.TB) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

// Exec runs a fixture statement and fails the test on error.
func Exec(t testing.TB, db *gorm.DB, sql string, args ...any) {
	t.Helper()
	if err := db.Exec(sql, args...).Error; err != nil {
		t.Fatalf("fixture %q: %v", sql, err)
	}
}
