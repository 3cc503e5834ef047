package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/history"
)

type HistoryHandlers struct {
	ledger *history.Ledger
}

func NewHistoryHandlers(ledger *history.Ledger) *HistoryHandlers {
	return &HistoryHandlers{ledger: ledger}
}

func (hh *HistoryHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/history/")

	switch {
	case path == "quiz" && r.Method == http.MethodGet:
		hh.listQuiz(w, r)
	case path == "quiz" && r.Method == http.MethodDelete:
		hh.clearQuiz(w, r)
	case path == "quiz/enabled" && r.Method == http.MethodPut:
		hh.setQuizEnabled(w, r)
	case strings.HasPrefix(path, "quiz/") && r.Method == http.MethodDelete:
		hh.deleteQuizEntry(w, r, strings.TrimPrefix(path, "quiz/"))
	case path == "flashcards" && r.Method == http.MethodGet:
		hh.listFlashcards(w, r)
	case path == "flashcards" && r.Method == http.MethodDelete:
		hh.clearFlashcards(w, r)
	case path == "flashcards/enabled" && r.Method == http.MethodPut:
		hh.setFlashcardsEnabled(w, r)
	case strings.HasPrefix(path, "flashcards/") && r.Method == http.MethodDelete:
		hh.deleteFlashcardEntry(w, r, strings.TrimPrefix(path, "flashcards/"))
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (hh *HistoryHandlers) listQuiz(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	entries := hh.ledger.QuizEntries(owner)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
		"enabled": hh.ledger.QuizEnabled(owner),
	})
}

func (hh *HistoryHandlers) deleteQuizEntry(w http.ResponseWriter, r *http.Request, id string) {
	owner := getOwnerFromContext(r.Context())

	if !hh.ledger.DeleteQuizEntry(owner, id) {
		http.Error(w, "History entry not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (hh *HistoryHandlers) clearQuiz(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	hh.ledger.ClearQuiz(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (hh *HistoryHandlers) setQuizEnabled(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	hh.ledger.SetQuizEnabled(owner, req.Enabled)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"enabled": req.Enabled,
	})
}

func (hh *HistoryHandlers) listFlashcards(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	entries := hh.ledger.FlashcardEntries(owner)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
		"enabled": hh.ledger.FlashcardEnabled(owner),
	})
}

func (hh *HistoryHandlers) deleteFlashcardEntry(w http.ResponseWriter, r *http.Request, id string) {
	owner := getOwnerFromContext(r.Context())

	if !hh.ledger.DeleteFlashcardEntry(owner, id) {
		http.Error(w, "History entry not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (hh *HistoryHandlers) clearFlashcards(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	hh.ledger.ClearFlashcard(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (hh *HistoryHandlers) setFlashcardsEnabled(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	hh.ledger.SetFlashcardEnabled(owner, req.Enabled)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"enabled": req.Enabled,
	})
}
