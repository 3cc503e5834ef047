package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// RawFlashcard is the shape the prompt asks the model for
type RawFlashcard struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

// ParseFlashcardsResponse extracts flashcards from model output. The
// model is asked for a bare JSON array but routinely wraps it in code
// fences or surrounding text, so the array is located by bracket
// matching before parsing. Items missing any of the four required fields
// are dropped rather than rejecting the whole batch.
func ParseFlashcardsResponse(responseText string) []RawFlashcard {
	cleaned := strings.TrimSpace(responseText)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var parsed []RawFlashcard
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		utils.LogGen("Failed to parse flashcards response: %v", err)
		return nil
	}

	valid := parsed[:0]
	for _, card := range parsed {
		if card.Front == "" || card.Back == "" || card.Difficulty == "" || card.Category == "" {
			continue
		}
		valid = append(valid, card)
	}
	return valid
}

// BuildDeck turns parsed raw cards into a stored deck with fresh ids
func BuildDeck(cards []RawFlashcard, title, description, source string) models.FlashcardDeck {
	now := time.Now()

	flashcards := make([]models.Flashcard, 0, len(cards))
	for _, card := range cards {
		flashcards = append(flashcards, models.Flashcard{
			ID:         "card-" + uuid.NewString(),
			Front:      card.Front,
			Back:       card.Back,
			Difficulty: card.Difficulty,
			Category:   card.Category,
			CreatedAt:  now,
		})
	}

	if title == "" {
		title = fmt.Sprintf("Flashcard Deck - %s", now.Format("2006-01-02"))
	}
	if description == "" {
		description = fmt.Sprintf("Generated from %s with %d cards", source, len(flashcards))
	}

	return models.FlashcardDeck{
		ID:          "deck-" + uuid.NewString(),
		Title:       title,
		Description: description,
		Flashcards:  flashcards,
		CreatedAt:   now,
		Source:      source,
		Metadata: &models.DeckMetadata{
			TotalCount:  len(flashcards),
			GeneratedAt: now,
		},
	}
}
