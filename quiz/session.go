package quiz

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// Session is one pass through a set of parsed questions, from Start to
// Finish. All methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	title     string
	settings  models.QuizSettings
	questions []models.Question
	cursor    int
	started   bool
	finished  bool
}

// NewSession prepares a session over a copy of the given questions. The
// session stays in its not-started state until Start.
func NewSession(questions []models.Question, settings models.QuizSettings, title string) *Session {
	return &Session{
		title:     title,
		settings:  settings,
		questions: cloneQuestions(questions),
	}
}

// cloneQuestions copies the questions along with their Options slices so
// the result shares no backing arrays with the input.
func cloneQuestions(questions []models.Question) []models.Question {
	qs := make([]models.Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].Options = append([]models.Option(nil), qs[i].Options...)
	}
	return qs
}

// Start moves the session to in-progress, applying question and option
// shuffling per the settings. Starting with zero questions is a no-op
// with a diagnostic, not an error; callers are expected to pre-check.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

func (s *Session) startLocked() {
	if len(s.questions) == 0 {
		utils.LogStudy("Cannot start quiz: no questions available")
		return
	}

	// Questions replayed from history arrive with answers attached.
	for i := range s.questions {
		s.questions[i].UserAnswerIndex = nil
	}

	if s.settings.ShuffleQuestions {
		rand.Shuffle(len(s.questions), func(i, j int) {
			s.questions[i], s.questions[j] = s.questions[j], s.questions[i]
		})
	}

	if s.settings.ShuffleOptions {
		for qi := range s.questions {
			opts := s.questions[qi].Options
			// Shuffling the Option values themselves keeps correctness
			// attached to the right text.
			rand.Shuffle(len(opts), func(i, j int) {
				opts[i], opts[j] = opts[j], opts[i]
			})
		}
	}

	s.cursor = 0
	s.started = true
	s.finished = false
}

// SubmitAnswer records the chosen option index on the current question.
// Valid only while the current question is unanswered; it does not
// advance the cursor.
func (s *Session) SubmitAnswer(optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("quiz not started")
	}
	if s.finished {
		return fmt.Errorf("quiz already finished")
	}
	if s.cursor >= len(s.questions) {
		return fmt.Errorf("invalid question index %d", s.cursor)
	}

	current := &s.questions[s.cursor]
	if current.Answered() {
		return fmt.Errorf("question %d already answered", s.cursor)
	}
	if optionIndex < 0 || optionIndex >= len(current.Options) {
		return fmt.Errorf("option index %d out of range", optionIndex)
	}

	idx := optionIndex
	current.UserAnswerIndex = &idx
	return nil
}

// Next advances to the following question, or finishes the session when
// the current question is the last one. The current question must have
// been answered first.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("quiz not started")
	}
	if s.finished {
		return fmt.Errorf("quiz already finished")
	}
	if !s.questions[s.cursor].Answered() {
		return fmt.Errorf("current question not answered")
	}

	if s.cursor < len(s.questions)-1 {
		s.cursor++
	} else {
		s.finished = true
	}
	return nil
}

// Restart discards all recorded answers and re-enters Start semantics,
// re-shuffling if shuffling is enabled.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

// Finish moves the session to its terminal state. Usable before the last
// question; an abandoned session still counts as finished.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
}

// Score counts correctly answered questions. Computed lazily from the
// recorded answers, so it is valid at any point in the session.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	score := 0
	for i := range s.questions {
		if s.questions[i].AnsweredCorrectly() {
			score++
		}
	}
	return score
}

// Snapshot returns a copy of the session state for serialization
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Deep copy so a later shuffle cannot mutate the snapshot's options
	// while a caller is serializing them.
	qs := cloneQuestions(s.questions)

	return SessionState{
		Title:                s.title,
		Settings:             s.settings,
		Questions:            qs,
		CurrentQuestionIndex: s.cursor,
		Started:              s.started,
		Finished:             s.finished,
	}
}

// SessionState is the serializable view of a Session
type SessionState struct {
	Title                string              `json:"title,omitempty"`
	Settings             models.QuizSettings `json:"settings"`
	Questions            []models.Question   `json:"questions"`
	CurrentQuestionIndex int                 `json:"current_question_index"`
	Started              bool                `json:"started"`
	Finished             bool                `json:"finished"`
}

// Registry holds at most one active quiz session per owner
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

// Put replaces any existing session for the owner
func (r *Registry) Put(owner string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[owner] = s
}

func (r *Registry) Remove(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, owner)
}
