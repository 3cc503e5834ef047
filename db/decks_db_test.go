package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func deckFixture(id, title string) *models.FlashcardDeck {
	return &models.FlashcardDeck{
		ID:    id,
		Title: title,
		Flashcards: []models.Flashcard{
			{ID: "card-1", Front: "front", Back: "back", Difficulty: models.DifficultyEasy},
		},
		Source:    models.SourcePrompt,
		CreatedAt: time.Now(),
	}
}

func TestSaveDeckUpsertsOwnDeck(t *testing.T) {
	database := testDB(t)

	if err := database.SaveDeck("user:1", deckFixture("deck-a", "first")); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}
	if err := database.SaveDeck("user:1", deckFixture("deck-a", "renamed")); err != nil {
		t.Fatalf("SaveDeck update failed: %v", err)
	}

	deck, err := database.GetDeck("user:1", "deck-a")
	if err != nil {
		t.Fatalf("GetDeck failed: %v", err)
	}
	if deck.Title != "renamed" {
		t.Errorf("Expected updated title, got %q", deck.Title)
	}
}

func TestSaveDeckRejectsForeignDeckID(t *testing.T) {
	database := testDB(t)

	if err := database.SaveDeck("user:1", deckFixture("deck-a", "mine")); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}

	err := database.SaveDeck("user:2", deckFixture("deck-a", "stolen"))
	if err == nil {
		t.Fatal("SaveDeck should fail when the id belongs to another owner")
	}

	// Neither owner's view may change: the original deck keeps its title
	// and the second owner still has nothing stored.
	deck, err := database.GetDeck("user:1", "deck-a")
	if err != nil {
		t.Fatalf("GetDeck failed: %v", err)
	}
	if deck.Title != "mine" {
		t.Errorf("Original deck was overwritten, title %q", deck.Title)
	}
	if _, err := database.GetDeck("user:2", "deck-a"); err == nil {
		t.Error("Second owner should not see the deck")
	}
}
