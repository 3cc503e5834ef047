package history

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// Store is the flat string-keyed persistence the ledger writes through,
// the server-side stand-in for browser localStorage. A failed or
// unparseable read is treated as "absent", never as an error the caller
// sees.
type Store interface {
	Get(owner, key string) (string, bool)
	Set(owner, key, value string) error
	Remove(owner, key string) error
}

// Storage keys, kept compatible with the payloads older clients persisted
const (
	keyQuizEntries      = "quizHistoryEntries"
	keyQuizEnabled      = "quizHistoryEnabled"
	keyFlashcardEntries = "flashcardHistoryEntries"
	keyFlashcardEnabled = "flashcardHistoryEnabled"
)

// How long a zero-score placeholder stays replaceable by the real
// completion entry.
const quizDedupWindow = 5 * time.Minute

// Two flashcard entries for the same deck closer together than this are
// considered the same session reported twice.
const flashcardDedupWindow = 5 * time.Second

// Ledger is the append-only log of finished sessions, one quiz list and
// one flashcard list per owner. Entries are immutable snapshots; the only
// in-place update is the quiz placeholder replacement.
type Ledger struct {
	mu    sync.Mutex
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// AddQuizEntry appends a finished quiz. When a zero-score entry of the
// same length was recorded within the last five minutes - the speculative
// placeholder written when an AI-generated quiz starts - the new entry
// replaces it in the same slot instead of duplicating it. Returns nil
// when recording is disabled.
func (l *Ledger) AddQuizEntry(owner string, score, totalQuestions int, questions []models.Question, settings models.QuizSettings, title string) *models.QuizHistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled(owner, keyQuizEnabled) {
		return nil
	}

	now := time.Now().UnixMilli()
	entry := models.QuizHistoryEntry{
		ID:             "quiz-" + uuid.NewString(),
		Timestamp:      now,
		Score:          score,
		TotalQuestions: totalQuestions,
		Title:          title,
		Questions:      questions,
		Settings:       settings,
	}

	entries := l.quizEntries(owner)

	// Heuristic placeholder match: question count, recency, zero score.
	// Two equal-length zero-score quizzes started inside the window are
	// conflated; that matches the shipped behavior.
	replaced := false
	for i := range entries {
		if entries[i].TotalQuestions != totalQuestions {
			continue
		}
		if now-entries[i].Timestamp > quizDedupWindow.Milliseconds() {
			continue
		}
		if entries[i].Score != 0 {
			continue
		}
		if len(entries[i].Questions) != len(questions) {
			continue
		}
		entries[i] = entry
		replaced = true
		break
	}

	if !replaced {
		entries = append([]models.QuizHistoryEntry{entry}, entries...)
	}

	l.saveQuiz(owner, entries)
	return &entry
}

// QuizEntries lists the owner's quiz history, newest first
func (l *Ledger) QuizEntries(owner string) []models.QuizHistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quizEntries(owner)
}

// DeleteQuizEntry removes one entry by id
func (l *Ledger) DeleteQuizEntry(owner, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.quizEntries(owner)
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false
	}
	l.saveQuiz(owner, kept)
	return true
}

// ClearQuiz drops the owner's entire quiz history
func (l *Ledger) ClearQuiz(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saveQuiz(owner, nil)
}

// QuizEnabled reports whether quiz recording is on (default: on)
func (l *Ledger) QuizEnabled(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled(owner, keyQuizEnabled)
}

// SetQuizEnabled toggles recording. Existing entries are not purged.
func (l *Ledger) SetQuizEnabled(owner string, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setEnabled(owner, keyQuizEnabled, enabled)
}

// AddFlashcardEntry appends a finished study session. An entry for the
// same deck within five seconds of an existing one is dropped as a
// duplicate report - asymmetric with the quiz rule on purpose. Returns
// nil when recording is disabled, the session is not finished, or the
// entry was deduplicated.
func (l *Ledger) AddFlashcardEntry(owner string, deck models.FlashcardDeck, session models.StudySession, settings models.FlashcardSettings) *models.FlashcardHistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled(owner, keyFlashcardEnabled) || !session.IsFinished {
		return nil
	}

	studyTime := 0
	if session.EndTime != nil {
		studyTime = int(math.Round(session.EndTime.Sub(session.StartTime).Seconds()))
	}

	accuracy := 0
	if session.ReviewedCards > 0 {
		accuracy = int(math.Round(float64(session.CorrectCards) / float64(session.ReviewedCards) * 100))
	}

	entry := models.FlashcardHistoryEntry{
		ID:             "flashcard-" + uuid.NewString(),
		Timestamp:      time.Now().UnixMilli(),
		DeckTitle:      deck.Title,
		TotalCards:     len(deck.Flashcards),
		ReviewedCards:  session.ReviewedCards,
		CorrectCards:   session.CorrectCards,
		IncorrectCards: session.IncorrectCards,
		SkippedCards:   session.SkippedCards,
		Accuracy:       accuracy,
		StudyTime:      studyTime,
		Deck:           deck,
		Session:        session,
		Settings:       settings,
	}

	entries := l.flashcardEntries(owner)
	for _, e := range entries {
		if e.Deck.ID == deck.ID && abs64(e.Timestamp-entry.Timestamp) < flashcardDedupWindow.Milliseconds() {
			utils.LogStudy("Duplicate flashcard history entry for deck %s, skipping", deck.ID)
			return nil
		}
	}

	entries = append([]models.FlashcardHistoryEntry{entry}, entries...)
	l.saveFlashcard(owner, entries)
	return &entry
}

// FlashcardEntries lists the owner's flashcard history, newest first
func (l *Ledger) FlashcardEntries(owner string) []models.FlashcardHistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flashcardEntries(owner)
}

// DeleteFlashcardEntry removes one entry by id
func (l *Ledger) DeleteFlashcardEntry(owner, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.flashcardEntries(owner)
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false
	}
	l.saveFlashcard(owner, kept)
	return true
}

// ClearFlashcard drops the owner's entire flashcard history
func (l *Ledger) ClearFlashcard(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saveFlashcard(owner, nil)
}

// FlashcardEnabled reports whether flashcard recording is on (default: on)
func (l *Ledger) FlashcardEnabled(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled(owner, keyFlashcardEnabled)
}

// SetFlashcardEnabled toggles recording. Existing entries are not purged.
func (l *Ledger) SetFlashcardEnabled(owner string, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setEnabled(owner, keyFlashcardEnabled, enabled)
}

func (l *Ledger) quizEntries(owner string) []models.QuizHistoryEntry {
	raw, ok := l.store.Get(owner, keyQuizEntries)
	if !ok {
		return nil
	}
	var entries []models.QuizHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		utils.LogError("Corrupt quiz history for %s, treating as empty: %v", owner, err)
		return nil
	}
	return entries
}

func (l *Ledger) saveQuiz(owner string, entries []models.QuizHistoryEntry) {
	if entries == nil {
		entries = []models.QuizHistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		utils.LogError("Failed to encode quiz history for %s: %v", owner, err)
		return
	}
	if err := l.store.Set(owner, keyQuizEntries, string(data)); err != nil {
		utils.LogError("Failed to persist quiz history for %s: %v", owner, err)
	}
}

func (l *Ledger) flashcardEntries(owner string) []models.FlashcardHistoryEntry {
	raw, ok := l.store.Get(owner, keyFlashcardEntries)
	if !ok {
		return nil
	}
	var entries []models.FlashcardHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		utils.LogError("Corrupt flashcard history for %s, treating as empty: %v", owner, err)
		return nil
	}
	return entries
}

func (l *Ledger) saveFlashcard(owner string, entries []models.FlashcardHistoryEntry) {
	if entries == nil {
		entries = []models.FlashcardHistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		utils.LogError("Failed to encode flashcard history for %s: %v", owner, err)
		return
	}
	if err := l.store.Set(owner, keyFlashcardEntries, string(data)); err != nil {
		utils.LogError("Failed to persist flashcard history for %s: %v", owner, err)
	}
}

func (l *Ledger) enabled(owner, key string) bool {
	raw, ok := l.store.Get(owner, key)
	if !ok {
		return true
	}
	var enabled bool
	if err := json.Unmarshal([]byte(raw), &enabled); err != nil {
		return true
	}
	return enabled
}

func (l *Ledger) setEnabled(owner, key string, enabled bool) {
	data, _ := json.Marshal(enabled)
	if err := l.store.Set(owner, key, string(data)); err != nil {
		utils.LogError("Failed to persist history toggle for %s: %v", owner, err)
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
