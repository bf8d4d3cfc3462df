package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotiverse/internal/models"
)

var _ models.Storage = (*StorageRepository)(nil)

// StorageRepository implements [models.Storage] on the SQLite storage table.
type StorageRepository struct {
	db *sql.DB
}

// NewStorageRepository creates a new [StorageRepository] with the given database connection
func NewStorageRepository(db *sql.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Get returns the value stored under key.
func (r *StorageRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query storage key %s: %w", key, err)
	}
	return value, true, nil
}

// Set creates or replaces the value stored under key.
func (r *StorageRepository) Set(key, value string) error {
	query := `
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write storage key %s: %w", key, err)
	}
	return nil
}

// Delete removes every given key in one statement. Missing keys are ignored.
func (r *StorageRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	if _, err := r.db.Exec("DELETE FROM storage WHERE key IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("failed to delete storage keys: %w", err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (r *StorageRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM storage ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan storage key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
