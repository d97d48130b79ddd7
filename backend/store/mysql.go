package store

import (
	"context"
	"database/sql"
	"errors"

	"mangrovewatch/common"

	"github.com/apex/log"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
	k VARCHAR(255) NOT NULL PRIMARY KEY,
	v MEDIUMTEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// MySQL stores keys as rows of the kv_store table.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (m *MySQL) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, createKVTable)
	if err != nil {
		log.Errorf("Error creating kv_store table: %v", err)
	}
	return err
}

func (m *MySQL) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := m.db.QueryRowContext(ctx, "SELECT v FROM kv_store WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		log.Errorf("Error reading key %q: %v", key, err)
		return "", false, err
	}
	return v, true, nil
}

func (m *MySQL) Set(ctx context.Context, key, value string) error {
	result, err := m.db.ExecContext(ctx, `INSERT INTO kv_store (k, v) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE v = ?`, key, value, value)
	// An upsert that changes a row reports 2 affected rows.
	common.LogResult("kvSet", result, err, false)
	return err
}

func (m *MySQL) Remove(ctx context.Context, key string) error {
	result, err := m.db.ExecContext(ctx, "DELETE FROM kv_store WHERE k = ?", key)
	common.LogResult("kvRemove", result, err, false)
	return err
}
