// Package settings persists per-owner study preferences through the
// flat key/value store, falling back to defaults when nothing is saved.
package settings

import (
	"encoding/json"
	"fmt"

	"github.com/mmmustafa1/mcqs-quiz/history"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

const (
	quizSettingsKey      = "quizSettings"
	flashcardSettingsKey = "flashcardSettings"
)

var validStudyModes = []string{
	models.StudyModeSequential,
	models.StudyModeRandom,
	models.StudyModeSpaced,
}

var validDifficultyFilters = []string{
	"all",
	models.DifficultyEasy,
	models.DifficultyMedium,
	models.DifficultyHard,
}

type Manager struct {
	store history.Store
}

func NewManager(store history.Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) QuizSettings(owner string) models.QuizSettings {
	s := models.DefaultQuizSettings()
	raw, ok := m.store.Get(owner, quizSettingsKey)
	if !ok {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		utils.LogError("Corrupt quiz settings for %s, using defaults: %v", owner, err)
		return models.DefaultQuizSettings()
	}
	return s
}

func (m *Manager) SetQuizSettings(owner string, s models.QuizSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.store.Set(owner, quizSettingsKey, string(data))
}

func (m *Manager) FlashcardSettings(owner string) models.FlashcardSettings {
	s := models.DefaultFlashcardSettings()
	raw, ok := m.store.Get(owner, flashcardSettingsKey)
	if !ok {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		utils.LogError("Corrupt flashcard settings for %s, using defaults: %v", owner, err)
		return models.DefaultFlashcardSettings()
	}
	return s
}

func (m *Manager) SetFlashcardSettings(owner string, s models.FlashcardSettings) error {
	if err := ValidateFlashcardSettings(s); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.store.Set(owner, flashcardSettingsKey, string(data))
}

func ValidateFlashcardSettings(s models.FlashcardSettings) error {
	if !utils.Contains(validStudyModes, s.StudyMode) {
		return fmt.Errorf("invalid study mode: %s", s.StudyMode)
	}
	if !utils.Contains(validDifficultyFilters, s.DifficultyFilter) {
		return fmt.Errorf("invalid difficulty filter: %s", s.DifficultyFilter)
	}
	if s.AutoFlipDelay < 1 || s.AutoFlipDelay > 60 {
		return fmt.Errorf("auto flip delay must be between 1 and 60 seconds")
	}
	return nil
}
