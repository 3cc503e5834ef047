package settings

import (
	"sync"
	"testing"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(owner, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[owner+"/"+key]
	return v, ok
}

func (m *memStore) Set(owner, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[owner+"/"+key] = value
	return nil
}

func (m *memStore) Remove(owner, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, owner+"/"+key)
	return nil
}

func TestQuizSettingsDefaults(t *testing.T) {
	m := NewManager(newMemStore())

	got := m.QuizSettings("user:1")
	want := models.DefaultQuizSettings()
	if got != want {
		t.Errorf("Expected defaults %+v, got %+v", want, got)
	}
}

func TestQuizSettingsRoundTrip(t *testing.T) {
	m := NewManager(newMemStore())

	s := models.QuizSettings{ImmediateFeedback: false, ShuffleQuestions: true, ShuffleOptions: true}
	if err := m.SetQuizSettings("user:1", s); err != nil {
		t.Fatalf("SetQuizSettings failed: %v", err)
	}

	if got := m.QuizSettings("user:1"); got != s {
		t.Errorf("Expected %+v, got %+v", s, got)
	}

	// Other owners still see defaults
	if got := m.QuizSettings("user:2"); got != models.DefaultQuizSettings() {
		t.Errorf("Settings leaked across owners: %+v", got)
	}
}

func TestFlashcardSettingsRoundTrip(t *testing.T) {
	m := NewManager(newMemStore())

	s := models.DefaultFlashcardSettings()
	s.ShuffleCards = true
	s.StudyMode = models.StudyModeRandom
	s.DifficultyFilter = models.DifficultyHard

	if err := m.SetFlashcardSettings("user:1", s); err != nil {
		t.Fatalf("SetFlashcardSettings failed: %v", err)
	}
	if got := m.FlashcardSettings("user:1"); got != s {
		t.Errorf("Expected %+v, got %+v", s, got)
	}
}

func TestFlashcardSettingsValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*models.FlashcardSettings)
	}{
		{"bad study mode", func(s *models.FlashcardSettings) { s.StudyMode = "telepathy" }},
		{"bad filter", func(s *models.FlashcardSettings) { s.DifficultyFilter = "impossible" }},
		{"delay too small", func(s *models.FlashcardSettings) { s.AutoFlipDelay = 0 }},
		{"delay too large", func(s *models.FlashcardSettings) { s.AutoFlipDelay = 600 }},
	}

	m := NewManager(newMemStore())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := models.DefaultFlashcardSettings()
			tc.mutate(&s)
			if err := m.SetFlashcardSettings("user:1", s); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestCorruptSettingsFallBackToDefaults(t *testing.T) {
	store := newMemStore()
	store.Set("user:1", "quizSettings", "{broken")

	m := NewManager(store)
	if got := m.QuizSettings("user:1"); got != models.DefaultQuizSettings() {
		t.Errorf("Corrupt settings should fall back to defaults, got %+v", got)
	}
}
