package models

import "time"

// Flashcard difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Flashcard is a single front/back card. Immutable after creation except
// as part of a whole-deck replace.
type Flashcard struct {
	ID         string    `json:"id"`
	Front      string    `json:"front"`
	Back       string    `json:"back"`
	Difficulty string    `json:"difficulty"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Deck provenance
const (
	SourceDocument = "document"
	SourcePrompt   = "prompt"
)

// DeckMetadata records how a generated deck came to be
type DeckMetadata struct {
	TotalCount  int       `json:"total_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// FlashcardDeck is an ordered, named collection of flashcards. Order is
// meaningful: sequential study walks it front to back.
type FlashcardDeck struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Flashcards  []Flashcard   `json:"flashcards"`
	CreatedAt   time.Time     `json:"created_at"`
	Source      string        `json:"source"`
	Metadata    *DeckMetadata `json:"metadata,omitempty"`
}

// Per-card study outcomes
const (
	CardCorrect   = "correct"
	CardIncorrect = "incorrect"
	CardSkipped   = "skipped"
)

// CardResult is one recorded outcome inside a study session
type CardResult struct {
	CardID string `json:"card_id"`
	Front  string `json:"card_front"`
	Back   string `json:"card_back"`
	Result string `json:"result"`
}

// StudySession tracks one pass through a deck. The four counters only
// ever grow, at most once per unique card id.
type StudySession struct {
	DeckID           string       `json:"deck_id"`
	CurrentCardIndex int          `json:"current_card_index"`
	ReviewedCards    int          `json:"reviewed_cards"`
	CorrectCards     int          `json:"correct_cards"`
	IncorrectCards   int          `json:"incorrect_cards"`
	SkippedCards     int          `json:"skipped_cards"`
	StartTime        time.Time    `json:"start_time"`
	EndTime          *time.Time   `json:"end_time,omitempty"`
	IsFinished       bool         `json:"is_finished"`
	CardResults      []CardResult `json:"card_results"`
}

// HasResult reports whether an outcome is already recorded for a card
func (s *StudySession) HasResult(cardID string) bool {
	for _, r := range s.CardResults {
		if r.CardID == cardID {
			return true
		}
	}
	return false
}

// Study modes
const (
	StudyModeSequential = "sequential"
	StudyModeRandom     = "random"
	StudyModeSpaced     = "spaced-repetition"
)

// FlashcardSettings is the option bag for flashcard study
type FlashcardSettings struct {
	ShuffleCards     bool   `json:"shuffle_cards"`
	ShowProgress     bool   `json:"show_progress"`
	AutoFlip         bool   `json:"auto_flip"`
	AutoFlipDelay    int    `json:"auto_flip_delay"` // seconds
	StudyMode        string `json:"study_mode"`
	DifficultyFilter string `json:"difficulty_filter"` // "all" or a difficulty
}

// DefaultFlashcardSettings returns the settings used when none are stored
func DefaultFlashcardSettings() FlashcardSettings {
	return FlashcardSettings{
		ShuffleCards:     false,
		ShowProgress:     true,
		AutoFlip:         false,
		AutoFlipDelay:    3,
		StudyMode:        StudyModeSequential,
		DifficultyFilter: "all",
	}
}

// FlashcardHistoryEntry is an immutable snapshot of one finished study
// session, complete enough to retake the deck later.
type FlashcardHistoryEntry struct {
	ID             string            `json:"id"`
	Timestamp      int64             `json:"timestamp"` // unix milliseconds
	DeckTitle      string            `json:"deck_title"`
	TotalCards     int               `json:"total_cards"`
	ReviewedCards  int               `json:"reviewed_cards"`
	CorrectCards   int               `json:"correct_cards"`
	IncorrectCards int               `json:"incorrect_cards"`
	SkippedCards   int               `json:"skipped_cards"`
	Accuracy       int               `json:"accuracy"`   // percentage
	StudyTime      int               `json:"study_time"` // seconds
	Deck           FlashcardDeck     `json:"deck"`
	Session        StudySession      `json:"session"`
	Settings       FlashcardSettings `json:"settings"`
}
