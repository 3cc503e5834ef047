package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/db"
	"github.com/mmmustafa1/mcqs-quiz/llm"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/quiz"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

type GenerateHandlers struct {
	db     *db.DB
	client *llm.Client
	guard  *llm.Guard
	secret [32]byte
}

func NewGenerateHandlers(database *db.DB, client *llm.Client, guard *llm.Guard, secret [32]byte) *GenerateHandlers {
	return &GenerateHandlers{
		db:     database,
		client: client,
		guard:  guard,
		secret: secret,
	}
}

func (gh *GenerateHandlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/generate/")
	switch path {
	case "quiz":
		gh.generateQuiz(w, r)
	case "flashcards":
		gh.generateFlashcards(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (gh *GenerateHandlers) generateQuiz(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Topic == "" && len(req.Attachments) == 0 {
		http.Error(w, "A topic or at least one attachment is required", http.StatusBadRequest)
		return
	}

	if !gh.guard.Begin(owner) {
		http.Error(w, "A generation is already in progress", http.StatusConflict)
		return
	}
	defer gh.guard.End(owner)

	apiKey, err := gh.db.GetAPIKey(owner, gh.secret)
	if err != nil {
		http.Error(w, "No API key configured. Save your key first.", http.StatusBadRequest)
		return
	}

	if req.NumberOfQuestions <= 0 {
		req.NumberOfQuestions = 10
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyMedium
	}

	var prompt string
	if len(req.Attachments) > 0 {
		prompt = llm.BuildQuizDocumentPrompt(len(req.Attachments), req.CustomInstructions)
	} else {
		prompt = llm.BuildQuizTopicPrompt(req.Topic, req.NumberOfQuestions, req.Difficulty, req.CustomInstructions)
	}

	utils.LogGen("Quiz generation requested by %s", owner)

	text, err := gh.client.GenerateContent(r.Context(), apiKey, prompt, req.Attachments...)
	if err != nil {
		utils.LogError("Quiz generation failed for %s: %v", owner, err)
		http.Error(w, fmt.Sprintf("Generation failed: %v", err), http.StatusBadGateway)
		return
	}

	questions := quiz.Parse(text)
	if len(questions) == 0 {
		utils.LogGen("Generated text yielded no parseable questions for %s", owner)
		http.Error(w, "The generated text could not be parsed into questions", http.StatusUnprocessableEntity)
		return
	}

	utils.LogGen("Generated %d questions for %s", len(questions), owner)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
		"title":     req.Title,
	})
}

func (gh *GenerateHandlers) generateFlashcards(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Content == "" && req.Attachment == nil {
		http.Error(w, "Content or an attachment is required", http.StatusBadRequest)
		return
	}

	if !gh.guard.Begin(owner) {
		http.Error(w, "A generation is already in progress", http.StatusConflict)
		return
	}
	defer gh.guard.End(owner)

	apiKey, err := gh.db.GetAPIKey(owner, gh.secret)
	if err != nil {
		http.Error(w, "No API key configured. Save your key first.", http.StatusBadRequest)
		return
	}

	if req.Options.NumberOfCards <= 0 {
		req.Options.NumberOfCards = 10
	}
	if req.Options.Difficulty == "" {
		req.Options.Difficulty = "mixed"
	}
	if req.Options.CardType == "" {
		req.Options.CardType = "mixed"
	}

	source := models.SourcePrompt
	var attachments []models.Attachment
	if req.Attachment != nil {
		source = models.SourceDocument
		attachments = append(attachments, *req.Attachment)
	}

	prompt := llm.BuildFlashcardPrompt(req.Content, req.Options, source)

	utils.LogGen("Flashcard generation requested by %s", owner)

	text, err := gh.client.GenerateContent(r.Context(), apiKey, prompt, attachments...)
	if err != nil {
		utils.LogError("Flashcard generation failed for %s: %v", owner, err)
		http.Error(w, fmt.Sprintf("Generation failed: %v", err), http.StatusBadGateway)
		return
	}

	cards := llm.ParseFlashcardsResponse(text)
	if len(cards) == 0 {
		utils.LogGen("Generated text yielded no usable flashcards for %s", owner)
		http.Error(w, "The generated text could not be parsed into flashcards", http.StatusUnprocessableEntity)
		return
	}

	title := req.Title
	if title == "" {
		title = "Generated Flashcards"
	}
	description := fmt.Sprintf("%d generated cards", len(cards))

	deck := llm.BuildDeck(cards, title, description, source)

	if err := gh.db.SaveDeck(owner, &deck); err != nil {
		http.Error(w, "Failed to save generated deck", http.StatusInternalServerError)
		return
	}

	utils.LogGen("Generated deck %s with %d cards for %s", deck.ID, len(deck.Flashcards), owner)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deck)
}

func (gh *GenerateHandlers) HandleAPIKey(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"configured": gh.db.HasAPIKey(owner),
		})

	case http.MethodPost:
		var req struct {
			APIKey string `json:"api_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.APIKey) == "" {
			http.Error(w, "API key is required", http.StatusBadRequest)
			return
		}

		if err := gh.db.StoreAPIKey(owner, strings.TrimSpace(req.APIKey), gh.secret); err != nil {
			http.Error(w, "Failed to store API key", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":    "API key saved",
			"configured": true,
		})

	case http.MethodDelete:
		if err := gh.db.DeleteAPIKey(owner); err != nil {
			if strings.Contains(err.Error(), "no API key") {
				http.Error(w, "No API key configured", http.StatusNotFound)
			} else {
				http.Error(w, "Failed to delete API key", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
