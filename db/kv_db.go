package db

import (
	"database/sql"

	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// KVStore is a flat per-owner string store backed by the kv_store table.
// Read failures are treated as absent values so a corrupt row never
// blocks the caller.
type KVStore struct {
	db *DB
}

func (db *DB) KV() *KVStore {
	return &KVStore{db: db}
}

func (kv *KVStore) Get(owner, key string) (string, bool) {
	var value string
	err := kv.db.QueryRow(`
		SELECT value FROM kv_store WHERE owner = ? AND key = ?
	`, owner, key).Scan(&value)

	if err != nil {
		if err != sql.ErrNoRows {
			utils.LogError("KV get %s/%s failed: %v", owner, key, err)
		}
		return "", false
	}
	return value, true
}

func (kv *KVStore) Set(owner, key, value string) error {
	_, err := kv.db.Exec(`
		INSERT INTO kv_store (owner, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, owner, key, value)
	if err != nil {
		utils.LogError("KV set %s/%s failed: %v", owner, key, err)
	}
	return err
}

func (kv *KVStore) Remove(owner, key string) error {
	_, err := kv.db.Exec("DELETE FROM kv_store WHERE owner = ? AND key = ?", owner, key)
	if err != nil {
		utils.LogError("KV remove %s/%s failed: %v", owner, key, err)
	}
	return err
}
