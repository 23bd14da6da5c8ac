package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		email_confirmed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE admins (
		user_id TEXT PRIMARY KEY,
		created_at DATETIME
	);`)
}

func createProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		country TEXT,
		phone TEXT,
		dob TEXT,
		address_line1 TEXT,
		address_line2 TEXT,
		city TEXT,
		state_region TEXT,
		postal_code TEXT,
		ssn_last4 TEXT,
		itin_last4 TEXT,
		tax_id_last4 TEXT,
		id_document_path TEXT,
		kyc_status TEXT NOT NULL DEFAULT 'unverified',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createHoldingsTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE balances (
		user_id TEXT PRIMARY KEY,
		amount NUMERIC NOT NULL DEFAULT 0,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		roi_percent NUMERIC NOT NULL,
		duration_days INTEGER NOT NULL,
		min_amount NUMERIC NOT NULL,
		max_amount NUMERIC,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE user_plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ends_at DATETIME NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX user_plans_one_active ON user_plans(user_id) WHERE is_active = 1;`)
	mustExec(t, db, `CREATE TABLE investments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME
	);`)
}
