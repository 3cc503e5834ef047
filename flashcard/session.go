package flashcard

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// DefaultAdvanceDelay is the pause between marking a card and moving on,
// so a client has time to show feedback before the state changes.
const DefaultAdvanceDelay = 500 * time.Millisecond

// FinishFunc is called exactly once when a study session reaches its
// terminal state, whether by marking the last card or ending early.
type FinishFunc func(deck models.FlashcardDeck, session models.StudySession, settings models.FlashcardSettings)

// Session drives one study pass over a deck. Marking a card schedules a
// deferred auto-advance; any manual navigation cancels the pending timer
// so a stale transition can never fire against the wrong card. All
// methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	deck       models.FlashcardDeck
	settings   models.FlashcardSettings
	state      models.StudySession
	showAnswer bool
	studying   bool

	advanceDelay time.Duration
	timer        *time.Timer
	timerSeq     int

	onFinish FinishFunc
	notified bool
}

// NewSession prepares a study session over a copy of the deck. Cards not
// matching the difficulty filter are excluded up front. A zero delay
// applies deferred transitions synchronously.
func NewSession(deck models.FlashcardDeck, settings models.FlashcardSettings, delay time.Duration, onFinish FinishFunc) (*Session, error) {
	cards := make([]models.Flashcard, 0, len(deck.Flashcards))
	for _, c := range deck.Flashcards {
		if settings.DifficultyFilter == "" || settings.DifficultyFilter == "all" || c.Difficulty == settings.DifficultyFilter {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no cards to study in deck %q", deck.Title)
	}

	studyDeck := deck
	studyDeck.Flashcards = cards

	return &Session{
		deck:         studyDeck,
		settings:     settings,
		advanceDelay: delay,
		onFinish:     onFinish,
	}, nil
}

// Start begins the study pass, shuffling first when the settings or the
// random study mode ask for it.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked()

	if s.settings.ShuffleCards || s.settings.StudyMode == models.StudyModeRandom {
		s.shuffleLocked()
	}

	s.state = models.StudySession{
		DeckID:    s.deck.ID,
		StartTime: time.Now(),
	}
	s.showAnswer = false
	s.studying = true
	s.notified = false

	utils.LogStudy("Study session started: deck=%s cards=%d", s.deck.ID, len(s.deck.Flashcards))
}

// Flip toggles between the front and back of the current card
func (s *Session) Flip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.studying {
		return
	}
	s.showAnswer = !s.showAnswer
}

// Mark records the outcome of the current card and schedules the
// auto-advance (or the finish, on the last card). A card that already
// has a recorded outcome is left untouched; the duplicate mark is
// silently ignored.
func (s *Session) Mark(correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.studying || s.state.IsFinished {
		return fmt.Errorf("no study session in progress")
	}

	card, ok := s.currentCardLocked()
	if !ok {
		return fmt.Errorf("no current card")
	}
	if s.state.HasResult(card.ID) {
		utils.LogStudy("Card %s already marked, ignoring", card.ID)
		return nil
	}

	result := models.CardIncorrect
	if correct {
		result = models.CardCorrect
	}
	s.state.CardResults = append(s.state.CardResults, models.CardResult{
		CardID: card.ID,
		Front:  card.Front,
		Back:   card.Back,
		Result: result,
	})
	s.state.ReviewedCards++
	if correct {
		s.state.CorrectCards++
	} else {
		s.state.IncorrectCards++
	}

	if s.state.CurrentCardIndex+1 >= len(s.deck.Flashcards) {
		// Last card: give the client a moment before the terminal state
		s.scheduleLocked(func() { s.finishLocked() })
	} else {
		// Deferred advance after a mark never records a skip; only the
		// manual Next path does.
		s.scheduleLocked(func() { s.advanceLocked() })
	}
	return nil
}

// Next is a manual advance. While the answer side is showing and the
// current card has no recorded outcome, it counts as skipped before
// moving on; the deferred advance after Mark never does.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.studying || s.state.IsFinished {
		return fmt.Errorf("no study session in progress")
	}

	s.cancelPendingLocked()

	if card, ok := s.currentCardLocked(); ok && s.showAnswer && !s.state.HasResult(card.ID) {
		s.state.CardResults = append(s.state.CardResults, models.CardResult{
			CardID: card.ID,
			Front:  card.Front,
			Back:   card.Back,
			Result: models.CardSkipped,
		})
		s.state.ReviewedCards++
		s.state.SkippedCards++
		utils.LogStudy("Card %s skipped", card.ID)
	}

	s.advanceLocked()
	return nil
}

// Previous steps back one card. Any pending deferred transition is
// cancelled so it cannot fire against the wrong card.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.studying || s.state.IsFinished {
		return fmt.Errorf("no study session in progress")
	}

	s.cancelPendingLocked()

	if s.state.CurrentCardIndex == 0 {
		return nil
	}
	s.state.CurrentCardIndex--
	s.showAnswer = false
	return nil
}

// End finishes the session at the current cursor position
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked()
	s.finishLocked()
}

// Shuffle reorders the deck before study begins. Reshuffling a deck with
// a session in progress would detach recorded results from card
// positions, so it is rejected.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.studying {
		return fmt.Errorf("cannot shuffle deck while a study session is in progress")
	}
	s.shuffleLocked()
	return nil
}

// Reset abandons the session without recording anything
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked()
	s.state = models.StudySession{}
	s.showAnswer = false
	s.studying = false
	s.notified = true // never report an abandoned session
}

// advanceLocked moves the cursor forward, finishing at the end of the deck
func (s *Session) advanceLocked() {
	next := s.state.CurrentCardIndex + 1
	if next >= len(s.deck.Flashcards) {
		s.finishLocked()
		return
	}
	s.state.CurrentCardIndex = next
	s.showAnswer = false
}

func (s *Session) finishLocked() {
	if s.state.IsFinished {
		return
	}
	now := time.Now()
	s.state.EndTime = &now
	s.state.IsFinished = true
	s.studying = false

	utils.LogStudy("Study session finished: deck=%s reviewed=%d correct=%d incorrect=%d skipped=%d",
		s.deck.ID, s.state.ReviewedCards, s.state.CorrectCards, s.state.IncorrectCards, s.state.SkippedCards)

	if s.onFinish != nil && !s.notified {
		s.notified = true
		s.onFinish(s.deck, s.state, s.settings)
	}
}

func (s *Session) shuffleLocked() {
	cards := s.deck.Flashcards
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	s.state.CurrentCardIndex = 0
	s.showAnswer = false
}

// scheduleLocked runs fn after the advance delay unless a manual action
// cancels it first. The sequence number is the cancellation token: every
// cancel bumps it, and a stale timer that fires anyway sees the mismatch
// and does nothing.
func (s *Session) scheduleLocked(fn func()) {
	s.cancelPendingLocked()

	if s.advanceDelay <= 0 {
		fn()
		return
	}

	seq := s.timerSeq
	s.timer = time.AfterFunc(s.advanceDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.timerSeq != seq {
			return
		}
		s.timer = nil
		fn()
	})
}

func (s *Session) cancelPendingLocked() {
	s.timerSeq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) currentCardLocked() (models.Flashcard, bool) {
	idx := s.state.CurrentCardIndex
	if idx < 0 || idx >= len(s.deck.Flashcards) {
		return models.Flashcard{}, false
	}
	return s.deck.Flashcards[idx], true
}

// Snapshot returns a copy of the session state for serialization
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.CardResults = append([]models.CardResult(nil), s.state.CardResults...)

	// Copy the card slice so a later shuffle cannot mutate the snapshot
	// while a caller is serializing it.
	deck := s.deck
	deck.Flashcards = append([]models.Flashcard(nil), s.deck.Flashcards...)

	var current *models.Flashcard
	if card, ok := s.currentCardLocked(); ok {
		c := card
		current = &c
	}

	return SessionState{
		Deck:        deck,
		Settings:    s.settings,
		Session:     state,
		CurrentCard: current,
		ShowAnswer:  s.showAnswer,
		IsStudying:  s.studying,
	}
}

// SessionState is the serializable view of a Session
type SessionState struct {
	Deck        models.FlashcardDeck     `json:"deck"`
	Settings    models.FlashcardSettings `json:"settings"`
	Session     models.StudySession      `json:"session"`
	CurrentCard *models.Flashcard        `json:"current_card,omitempty"`
	ShowAnswer  bool                     `json:"show_answer"`
	IsStudying  bool                     `json:"is_studying"`
}

// Registry holds at most one active study session per owner
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Get(owner string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[owner]
	return s, ok
}

// Put replaces any existing session for the owner, cancelling its
// pending transitions first.
func (r *Registry) Put(owner string, s *Session) {
	r.mu.Lock()
	old := r.sessions[owner]
	r.sessions[owner] = s
	r.mu.Unlock()

	if old != nil {
		old.Reset()
	}
}

func (r *Registry) Remove(owner string) {
	r.mu.Lock()
	old := r.sessions[owner]
	delete(r.sessions, owner)
	r.mu.Unlock()

	if old != nil {
		old.Reset()
	}
}
