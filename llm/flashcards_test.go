package llm

import (
	"strings"
	"testing"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

func TestParseFlashcardsResponsePlainArray(t *testing.T) {
	response := `[
		{"front": "What is Go?", "back": "A programming language", "difficulty": "easy", "category": "Programming"},
		{"front": "What is a goroutine?", "back": "A lightweight thread", "difficulty": "medium", "category": "Programming"}
	]`

	cards := ParseFlashcardsResponse(response)
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}
	if cards[0].Front != "What is Go?" || cards[1].Difficulty != "medium" {
		t.Errorf("Unexpected cards: %+v", cards)
	}
}

func TestParseFlashcardsResponseCodeFences(t *testing.T) {
	response := "Here are your flashcards:\n```json\n" +
		`[{"front": "f", "back": "b", "difficulty": "easy", "category": "c"}]` +
		"\n```\nLet me know if you need more."

	cards := ParseFlashcardsResponse(response)
	if len(cards) != 1 {
		t.Fatalf("Expected 1 card from fenced response, got %d", len(cards))
	}
	if cards[0].Front != "f" {
		t.Errorf("Unexpected card: %+v", cards[0])
	}
}

func TestParseFlashcardsResponseDropsIncomplete(t *testing.T) {
	response := `[
		{"front": "complete", "back": "yes", "difficulty": "easy", "category": "c"},
		{"front": "no back", "difficulty": "easy", "category": "c"},
		{"back": "no front", "difficulty": "easy", "category": "c"},
		{"front": "no difficulty", "back": "b", "category": "c"},
		{"front": "no category", "back": "b", "difficulty": "hard"}
	]`

	cards := ParseFlashcardsResponse(response)
	if len(cards) != 1 {
		t.Fatalf("Expected only the complete card, got %d", len(cards))
	}
	if cards[0].Front != "complete" {
		t.Errorf("Wrong card kept: %+v", cards[0])
	}
}

func TestParseFlashcardsResponseGarbage(t *testing.T) {
	for _, response := range []string{"", "not json at all", "{\"front\": \"an object, not an array\"}"} {
		if cards := ParseFlashcardsResponse(response); len(cards) != 0 {
			t.Errorf("ParseFlashcardsResponse(%q) should yield nothing, got %d", response, len(cards))
		}
	}
}

func TestBuildDeck(t *testing.T) {
	cards := []RawFlashcard{
		{Front: "f1", Back: "b1", Difficulty: "easy", Category: "c1"},
		{Front: "f2", Back: "b2", Difficulty: "hard", Category: "c2"},
	}

	deck := BuildDeck(cards, "My Deck", "About things", models.SourcePrompt)

	if !strings.HasPrefix(deck.ID, "deck-") {
		t.Errorf("Deck ID should carry the deck prefix, got %q", deck.ID)
	}
	if deck.Title != "My Deck" || deck.Description != "About things" {
		t.Errorf("Deck metadata lost: title=%q description=%q", deck.Title, deck.Description)
	}
	if deck.Source != models.SourcePrompt {
		t.Errorf("Unexpected source: %q", deck.Source)
	}
	if len(deck.Flashcards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(deck.Flashcards))
	}
	for _, c := range deck.Flashcards {
		if !strings.HasPrefix(c.ID, "card-") {
			t.Errorf("Card ID should carry the card prefix, got %q", c.ID)
		}
	}
	if deck.Metadata == nil || deck.Metadata.TotalCount != 2 {
		t.Error("Deck metadata should record the card count")
	}
}

func TestBuildDeckDefaults(t *testing.T) {
	cards := []RawFlashcard{{Front: "f", Back: "b", Difficulty: "easy", Category: "c"}}

	deck := BuildDeck(cards, "", "", models.SourceDocument)

	if deck.Title == "" {
		t.Error("An empty title should be defaulted")
	}
	if !strings.Contains(deck.Description, models.SourceDocument) {
		t.Errorf("Default description should mention the source, got %q", deck.Description)
	}
}
