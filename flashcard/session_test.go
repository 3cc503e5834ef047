package flashcard

import (
	"testing"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

func testDeck(cards ...models.Flashcard) models.FlashcardDeck {
	return models.FlashcardDeck{
		ID:         "deck-test",
		Title:      "Test Deck",
		Flashcards: cards,
	}
}

func card(id, difficulty string) models.Flashcard {
	return models.Flashcard{ID: id, Front: "front " + id, Back: "back " + id, Difficulty: difficulty}
}

// All tests run with a zero advance delay so deferred transitions apply
// synchronously.
func newTestSession(t *testing.T, deck models.FlashcardDeck, settings models.FlashcardSettings, onFinish FinishFunc) *Session {
	t.Helper()
	s, err := NewSession(deck, settings, 0, onFinish)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestMarkAdvancesAndCounts(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)
	s.Start()

	if err := s.Mark(true); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Session.CurrentCardIndex != 1 {
		t.Errorf("Expected cursor at 1 after mark, got %d", snap.Session.CurrentCardIndex)
	}
	if snap.Session.ReviewedCards != 1 || snap.Session.CorrectCards != 1 {
		t.Errorf("Unexpected counters: reviewed=%d correct=%d", snap.Session.ReviewedCards, snap.Session.CorrectCards)
	}
	if snap.ShowAnswer {
		t.Error("Advancing should reset to the front of the next card")
	}
}

func TestMarkDedupByCardID(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)
	s.Start()

	if err := s.Mark(true); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	// Walk back to the already-marked card and mark it again
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous failed: %v", err)
	}
	if err := s.Mark(false); err != nil {
		t.Fatalf("Duplicate mark should be silently ignored, got %v", err)
	}

	snap := s.Snapshot()
	if snap.Session.ReviewedCards != 1 {
		t.Errorf("Expected reviewed=1 after duplicate mark, got %d", snap.Session.ReviewedCards)
	}
	if snap.Session.IncorrectCards != 0 {
		t.Errorf("Duplicate mark must not flip the recorded result, got incorrect=%d", snap.Session.IncorrectCards)
	}
	if len(snap.Session.CardResults) != 1 {
		t.Errorf("Expected 1 recorded result, got %d", len(snap.Session.CardResults))
	}
}

func TestAutoFinishOnLastCard(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))

	finished := 0
	var finalState models.StudySession
	onFinish := func(_ models.FlashcardDeck, state models.StudySession, _ models.FlashcardSettings) {
		finished++
		finalState = state
	}

	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), onFinish)
	s.Start()

	if err := s.Mark(true); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := s.Mark(false); err != nil {
		t.Fatalf("Mark on last card failed: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Session.IsFinished {
		t.Fatal("Marking the last card should finish the session")
	}
	if snap.IsStudying {
		t.Error("Finished session should not report as studying")
	}
	if finished != 1 {
		t.Fatalf("Expected exactly one finish notification, got %d", finished)
	}
	if finalState.ReviewedCards != 2 || finalState.CorrectCards != 1 || finalState.IncorrectCards != 1 || finalState.SkippedCards != 0 {
		t.Errorf("Unexpected final counters: %+v", finalState)
	}
	if finalState.EndTime == nil {
		t.Error("Finished session should carry an end time")
	}
}

func TestManualNextRecordsSkip(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)
	s.Start()

	// The answer side is not showing: no skip is recorded
	if err := s.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if snap := s.Snapshot(); snap.Session.SkippedCards != 0 {
		t.Errorf("Next without the answer showing should not record a skip, got %d", snap.Session.SkippedCards)
	}

	// Flip to the answer, then skip past
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous failed: %v", err)
	}
	s.Flip()
	if err := s.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Session.SkippedCards != 1 || snap.Session.ReviewedCards != 1 {
		t.Errorf("Expected one skip, got skipped=%d reviewed=%d", snap.Session.SkippedCards, snap.Session.ReviewedCards)
	}
}

func TestPreviousStopsAtFirstCard(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)
	s.Start()

	if err := s.Previous(); err != nil {
		t.Fatalf("Previous at the first card should be a no-op, got %v", err)
	}
	if snap := s.Snapshot(); snap.Session.CurrentCardIndex != 0 {
		t.Errorf("Cursor moved below zero: %d", snap.Session.CurrentCardIndex)
	}
}

func TestEndFinishesEarly(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"), card("c3", "easy"))

	finished := 0
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), func(models.FlashcardDeck, models.StudySession, models.FlashcardSettings) {
		finished++
	})
	s.Start()

	if err := s.Mark(true); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	s.End()

	snap := s.Snapshot()
	if !snap.Session.IsFinished {
		t.Error("End should finish the session")
	}
	if finished != 1 {
		t.Errorf("Expected one finish notification, got %d", finished)
	}

	// Further actions are rejected
	if err := s.Mark(true); err == nil {
		t.Error("Mark after End should fail")
	}
	if err := s.Next(); err == nil {
		t.Error("Next after End should fail")
	}
}

func TestDifficultyFilter(t *testing.T) {
	deck := testDeck(card("e1", "easy"), card("h1", "hard"), card("e2", "easy"))

	settings := models.DefaultFlashcardSettings()
	settings.DifficultyFilter = "easy"

	s := newTestSession(t, deck, settings, nil)
	s.Start()

	snap := s.Snapshot()
	if len(snap.Deck.Flashcards) != 2 {
		t.Fatalf("Expected 2 cards after filtering, got %d", len(snap.Deck.Flashcards))
	}
	for _, c := range snap.Deck.Flashcards {
		if c.Difficulty != "easy" {
			t.Errorf("Card %s should have been filtered out", c.ID)
		}
	}
}

func TestFilterToEmptyDeckFails(t *testing.T) {
	deck := testDeck(card("e1", "easy"))

	settings := models.DefaultFlashcardSettings()
	settings.DifficultyFilter = "hard"

	if _, err := NewSession(deck, settings, 0, nil); err == nil {
		t.Error("A deck filtered down to zero cards should be rejected")
	}
}

func TestShuffleRejectedWhileStudying(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)
	s.Start()

	if err := s.Shuffle(); err == nil {
		t.Error("Shuffle during a study session should be rejected")
	}

	s.End()
	if err := s.Shuffle(); err != nil {
		t.Errorf("Shuffle after the session ended should succeed, got %v", err)
	}
}

func TestShuffleKeepsAllCards(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"), card("c3", "easy"), card("c4", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)

	if err := s.Shuffle(); err != nil {
		t.Fatalf("Shuffle failed: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Deck.Flashcards) != 4 {
		t.Fatalf("Expected 4 cards, got %d", len(snap.Deck.Flashcards))
	}
	seen := map[string]bool{}
	for _, c := range snap.Deck.Flashcards {
		seen[c.ID] = true
	}
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		if !seen[id] {
			t.Errorf("Card %s lost during shuffle", id)
		}
	}
}

func TestResetNeverNotifies(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))

	finished := 0
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), func(models.FlashcardDeck, models.StudySession, models.FlashcardSettings) {
		finished++
	})
	s.Start()

	if err := s.Mark(true); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	s.Reset()

	if finished != 0 {
		t.Errorf("Reset must not report the session as finished, got %d notifications", finished)
	}
	if snap := s.Snapshot(); snap.IsStudying {
		t.Error("Reset session should not be studying")
	}
}

func TestRegistryResetsReplacedSession(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"))

	finished := 0
	onFinish := func(models.FlashcardDeck, models.StudySession, models.FlashcardSettings) { finished++ }

	r := NewRegistry()

	first, err := NewSession(deck, models.DefaultFlashcardSettings(), 0, onFinish)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	first.Start()
	r.Put("user:1", first)

	second, err := NewSession(deck, models.DefaultFlashcardSettings(), 0, nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	r.Put("user:1", second)

	// The replaced session was abandoned, not finished
	if finished != 0 {
		t.Errorf("Replaced session must not notify, got %d", finished)
	}

	got, ok := r.Get("user:1")
	if !ok || got != second {
		t.Error("Registry should hold the replacement session")
	}
}

func TestSnapshotDoesNotAliasDeckCards(t *testing.T) {
	deck := testDeck(card("c1", "easy"), card("c2", "easy"), card("c3", "easy"))
	s := newTestSession(t, deck, models.DefaultFlashcardSettings(), nil)

	snap := s.Snapshot()
	snap.Deck.Flashcards[0].Front = "tampered"

	fresh := s.Snapshot()
	for _, c := range fresh.Deck.Flashcards {
		if c.Front == "tampered" {
			t.Fatal("Writing to a snapshot's cards changed the live session")
		}
	}

	// The reverse direction: a shuffle reorders the live deck and must
	// leave an earlier snapshot untouched.
	before := s.Snapshot()
	want := make([]string, len(before.Deck.Flashcards))
	for i, c := range before.Deck.Flashcards {
		want[i] = c.ID
	}
	for i := 0; i < 20; i++ {
		if err := s.Shuffle(); err != nil {
			t.Fatalf("Shuffle failed: %v", err)
		}
	}
	for i, c := range before.Deck.Flashcards {
		if c.ID != want[i] {
			t.Fatal("Shuffle reordered the cards of an earlier snapshot")
		}
	}
}
