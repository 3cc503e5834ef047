package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/settings"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

type SettingsHandlers struct {
	settings *settings.Manager
}

func NewSettingsHandlers(settingsManager *settings.Manager) *SettingsHandlers {
	return &SettingsHandlers{settings: settingsManager}
}

func (sh *SettingsHandlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/settings/")

	switch {
	case path == "quiz" && r.Method == http.MethodGet:
		sh.getQuizSettings(w, r)
	case path == "quiz" && r.Method == http.MethodPut:
		sh.putQuizSettings(w, r)
	case path == "flashcards" && r.Method == http.MethodGet:
		sh.getFlashcardSettings(w, r)
	case path == "flashcards" && r.Method == http.MethodPut:
		sh.putFlashcardSettings(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (sh *SettingsHandlers) getQuizSettings(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sh.settings.QuizSettings(owner))
}

func (sh *SettingsHandlers) putQuizSettings(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req models.QuizSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := sh.settings.SetQuizSettings(owner, req); err != nil {
		utils.LogError("Failed to save quiz settings for %s: %v", owner, err)
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(req)
}

func (sh *SettingsHandlers) getFlashcardSettings(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sh.settings.FlashcardSettings(owner))
}

func (sh *SettingsHandlers) putFlashcardSettings(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req models.FlashcardSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := sh.settings.SetFlashcardSettings(owner, req); err != nil {
		if strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "must be") {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			utils.LogError("Failed to save flashcard settings for %s: %v", owner, err)
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(req)
}
