package db

import (
	"database/sql"
	"fmt"

	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// API keys are encrypted at rest with a key derived from the app secret.
// The plaintext never touches the database.

func (db *DB) StoreAPIKey(owner, apiKey string, secret [32]byte) error {
	utils.LogDB("Storing API key for %s", owner)

	sealed, err := utils.SealValue(secret, apiKey)
	if err != nil {
		utils.LogError("Failed to seal API key for %s: %v", owner, err)
		return err
	}

	_, err = db.Exec(`
		INSERT INTO secure_settings (owner, gemini_api_key, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner) DO UPDATE SET
			gemini_api_key = excluded.gemini_api_key,
			updated_at = CURRENT_TIMESTAMP
	`, owner, sealed)
	if err != nil {
		utils.LogError("StoreAPIKey(%s) failed: %v", owner, err)
		return err
	}

	return nil
}

func (db *DB) GetAPIKey(owner string, secret [32]byte) (string, error) {
	var sealed string
	err := db.QueryRow(`
		SELECT gemini_api_key FROM secure_settings WHERE owner = ?
	`, owner).Scan(&sealed)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no API key configured")
		}
		utils.LogError("GetAPIKey(%s) failed: %v", owner, err)
		return "", err
	}

	apiKey, err := utils.OpenValue(secret, sealed)
	if err != nil {
		utils.LogError("Failed to open API key for %s: %v", owner, err)
		return "", fmt.Errorf("stored API key is unreadable")
	}

	return apiKey, nil
}

func (db *DB) HasAPIKey(owner string) bool {
	var one int
	err := db.QueryRow("SELECT 1 FROM secure_settings WHERE owner = ?", owner).Scan(&one)
	return err == nil
}

func (db *DB) DeleteAPIKey(owner string) error {
	utils.LogDB("Deleting API key for %s", owner)

	result, err := db.Exec("DELETE FROM secure_settings WHERE owner = ?", owner)
	if err != nil {
		utils.LogError("DeleteAPIKey(%s) failed: %v", owner, err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("no API key configured")
	}

	return nil
}
