package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// SaveDeck inserts a deck, or replaces it when the owner already has a
// deck with the same id.
func (db *DB) SaveDeck(owner string, deck *models.FlashcardDeck) error {
	utils.LogDB("Saving deck %s for %s (%d cards)", deck.ID, owner, len(deck.Flashcards))
	start := time.Now()

	cardsJSON, err := json.Marshal(deck.Flashcards)
	if err != nil {
		utils.LogError("Failed to marshal cards for deck %s: %v", deck.ID, err)
		return err
	}

	var metadataJSON interface{}
	if deck.Metadata != nil {
		b, err := json.Marshal(deck.Metadata)
		if err != nil {
			utils.LogError("Failed to marshal metadata for deck %s: %v", deck.ID, err)
			return err
		}
		metadataJSON = string(b)
	}

	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = time.Now()
	}

	result, err := db.Exec(`
		INSERT INTO decks (id, owner, title, description, cards, source, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			cards = excluded.cards,
			source = excluded.source,
			metadata = excluded.metadata
		WHERE decks.owner = excluded.owner
	`, deck.ID, owner, deck.Title, deck.Description, string(cardsJSON),
		deck.Source, metadataJSON, deck.CreatedAt)

	if err != nil {
		utils.LogError("SaveDeck(%s) failed: %v", deck.ID, err)
		return err
	}

	// The owner guard on the upsert leaves the statement a no-op when the
	// id belongs to someone else.
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		utils.LogDB("Deck id %s already taken by another owner", deck.ID)
		return fmt.Errorf("deck id already in use")
	}

	utils.LogDB("Deck %s saved in %v", deck.ID, time.Since(start))
	return nil
}

func (db *DB) GetDeck(owner, id string) (*models.FlashcardDeck, error) {
	utils.LogDB("Getting deck %s for %s", id, owner)

	var deck models.FlashcardDeck
	var cardsJSON string
	var metadataJSON sql.NullString

	err := db.QueryRow(`
		SELECT id, title, description, cards, source, metadata, created_at
		FROM decks WHERE id = ? AND owner = ?
	`, id, owner).Scan(&deck.ID, &deck.Title, &deck.Description, &cardsJSON,
		&deck.Source, &metadataJSON, &deck.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			utils.LogDB("Deck %s not found for %s", id, owner)
			return nil, fmt.Errorf("deck not found")
		}
		utils.LogError("GetDeck(%s) failed: %v", id, err)
		return nil, err
	}

	if err := json.Unmarshal([]byte(cardsJSON), &deck.Flashcards); err != nil {
		utils.LogError("Failed to unmarshal cards for deck %s: %v", id, err)
		return nil, err
	}

	if metadataJSON.Valid {
		var meta models.DeckMetadata
		if err := json.Unmarshal([]byte(metadataJSON.String), &meta); err == nil {
			deck.Metadata = &meta
		}
	}

	return &deck, nil
}

func (db *DB) ListDecks(owner string) ([]models.FlashcardDeck, error) {
	utils.LogDB("Listing decks for %s", owner)
	start := time.Now()

	rows, err := db.Query(`
		SELECT id, title, description, cards, source, metadata, created_at
		FROM decks WHERE owner = ? ORDER BY created_at DESC
	`, owner)
	if err != nil {
		utils.LogError("ListDecks query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.FlashcardDeck
	for rows.Next() {
		var deck models.FlashcardDeck
		var cardsJSON string
		var metadataJSON sql.NullString

		err := rows.Scan(&deck.ID, &deck.Title, &deck.Description, &cardsJSON,
			&deck.Source, &metadataJSON, &deck.CreatedAt)
		if err != nil {
			utils.LogError("Failed to scan deck row: %v", err)
			return nil, err
		}

		if err := json.Unmarshal([]byte(cardsJSON), &deck.Flashcards); err != nil {
			utils.LogError("Skipping deck %s with corrupt cards: %v", deck.ID, err)
			continue
		}

		if metadataJSON.Valid {
			var meta models.DeckMetadata
			if err := json.Unmarshal([]byte(metadataJSON.String), &meta); err == nil {
				deck.Metadata = &meta
			}
		}

		decks = append(decks, deck)
	}

	utils.LogDB("ListDecks completed: %d decks in %v", len(decks), time.Since(start))
	return decks, nil
}

func (db *DB) DeleteDeck(owner, id string) error {
	utils.LogDB("Deleting deck %s for %s", id, owner)

	result, err := db.Exec("DELETE FROM decks WHERE id = ? AND owner = ?", id, owner)
	if err != nil {
		utils.LogError("DeleteDeck(%s) failed: %v", id, err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("deck not found")
	}

	return nil
}
