package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmmustafa1/mcqs-quiz/db"
	"github.com/mmmustafa1/mcqs-quiz/flashcard"
	"github.com/mmmustafa1/mcqs-quiz/history"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/settings"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

type FlashcardHandlers struct {
	db       *db.DB
	sessions *flashcard.Registry
	ledger   *history.Ledger
	settings *settings.Manager
}

func NewFlashcardHandlers(database *db.DB, sessions *flashcard.Registry, ledger *history.Ledger, settingsManager *settings.Manager) *FlashcardHandlers {
	return &FlashcardHandlers{
		db:       database,
		sessions: sessions,
		ledger:   ledger,
		settings: settingsManager,
	}
}

func (fh *FlashcardHandlers) HandleDecks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		fh.listDecks(w, r)
	case http.MethodPost:
		fh.createDeck(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (fh *FlashcardHandlers) HandleDeckByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/decks/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid deck ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		fh.getDeck(w, r, id)
	case http.MethodPut:
		fh.updateDeck(w, r, id)
	case http.MethodDelete:
		fh.deleteDeck(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (fh *FlashcardHandlers) listDecks(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	decks, err := fh.db.ListDecks(owner)
	if err != nil {
		utils.LogError("Failed to list decks for %s: %v", owner, err)
		http.Error(w, "Failed to fetch decks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"decks": decks,
		"count": len(decks),
	})
}

func (fh *FlashcardHandlers) createDeck(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var deck models.FlashcardDeck
	if err := json.NewDecoder(r.Body).Decode(&deck); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(deck.Title) == "" {
		http.Error(w, "Deck title is required", http.StatusBadRequest)
		return
	}
	if len(deck.Flashcards) == 0 {
		http.Error(w, "Deck must contain at least one card", http.StatusBadRequest)
		return
	}

	normalizeDeck(&deck)

	if err := fh.db.SaveDeck(owner, &deck); err != nil {
		if strings.Contains(err.Error(), "already in use") {
			http.Error(w, "Deck ID already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to save deck", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deck)
}

func (fh *FlashcardHandlers) getDeck(w http.ResponseWriter, r *http.Request, id string) {
	owner := getOwnerFromContext(r.Context())

	deck, err := fh.db.GetDeck(owner, id)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deck)
}

func (fh *FlashcardHandlers) updateDeck(w http.ResponseWriter, r *http.Request, id string) {
	owner := getOwnerFromContext(r.Context())

	if _, err := fh.db.GetDeck(owner, id); err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	var deck models.FlashcardDeck
	if err := json.NewDecoder(r.Body).Decode(&deck); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	deck.ID = id
	if strings.TrimSpace(deck.Title) == "" {
		http.Error(w, "Deck title is required", http.StatusBadRequest)
		return
	}
	if len(deck.Flashcards) == 0 {
		http.Error(w, "Deck must contain at least one card", http.StatusBadRequest)
		return
	}

	normalizeDeck(&deck)

	if err := fh.db.SaveDeck(owner, &deck); err != nil {
		if strings.Contains(err.Error(), "already in use") {
			http.Error(w, "Deck ID already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to save deck", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deck)
}

func (fh *FlashcardHandlers) deleteDeck(w http.ResponseWriter, r *http.Request, id string) {
	owner := getOwnerFromContext(r.Context())

	if err := fh.db.DeleteDeck(owner, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Deck not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to delete deck", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (fh *FlashcardHandlers) HandleStudy(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/study/")

	switch {
	case path == "start" && r.Method == http.MethodPost:
		fh.startStudy(w, r)
	case path == "mark" && r.Method == http.MethodPost:
		fh.mark(w, r)
	case path == "next" && r.Method == http.MethodPost:
		fh.nextCard(w, r)
	case path == "previous" && r.Method == http.MethodPost:
		fh.previousCard(w, r)
	case path == "flip" && r.Method == http.MethodPost:
		fh.flip(w, r)
	case path == "end" && r.Method == http.MethodPost:
		fh.endStudy(w, r)
	case path == "state" && r.Method == http.MethodGet:
		fh.studyState(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (fh *FlashcardHandlers) startStudy(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req struct {
		DeckID   string                    `json:"deck_id"`
		Settings *models.FlashcardSettings `json:"settings,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.DeckID == "" {
		http.Error(w, "Deck ID is required", http.StatusBadRequest)
		return
	}

	deck, err := fh.db.GetDeck(owner, req.DeckID)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	studySettings := fh.settings.FlashcardSettings(owner)
	if req.Settings != nil {
		if err := settings.ValidateFlashcardSettings(*req.Settings); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		studySettings = *req.Settings
	}

	onFinish := func(deck models.FlashcardDeck, state models.StudySession, s models.FlashcardSettings) {
		fh.ledger.AddFlashcardEntry(owner, deck, state, s)
	}

	session, err := flashcard.NewSession(*deck, studySettings, flashcard.DefaultAdvanceDelay, onFinish)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session.Start()
	fh.sessions.Put(owner, session)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (fh *FlashcardHandlers) mark(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	var req struct {
		Correct bool `json:"correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := session.Mark(req.Correct); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (fh *FlashcardHandlers) nextCard(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	if err := session.Next(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (fh *FlashcardHandlers) previousCard(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	if err := session.Previous(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (fh *FlashcardHandlers) flip(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	session.Flip()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (fh *FlashcardHandlers) endStudy(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	session.End()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (fh *FlashcardHandlers) studyState(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

// HandleShuffle reorders the current session's deck. Rejected while a
// study pass is in progress.
func (fh *FlashcardHandlers) HandleShuffle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	owner := getOwnerFromContext(r.Context())
	session, ok := fh.sessions.Get(owner)
	if !ok {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}

	if err := session.Shuffle(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

// normalizeDeck fills in missing identifiers and timestamps on a
// client-supplied deck.
func normalizeDeck(deck *models.FlashcardDeck) {
	if deck.ID == "" {
		deck.ID = "deck-" + uuid.NewString()
	}
	if deck.Source == "" {
		deck.Source = models.SourcePrompt
	}
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = time.Now()
	}
	for i := range deck.Flashcards {
		if deck.Flashcards[i].ID == "" {
			deck.Flashcards[i].ID = "card-" + uuid.NewString()
		}
		if deck.Flashcards[i].Difficulty == "" {
			deck.Flashcards[i].Difficulty = models.DifficultyMedium
		}
		if deck.Flashcards[i].CreatedAt.IsZero() {
			deck.Flashcards[i].CreatedAt = time.Now()
		}
	}
}
