package handlers

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/mmmustafa1/mcqs-quiz/auth"
	"github.com/mmmustafa1/mcqs-quiz/db"
	"github.com/mmmustafa1/mcqs-quiz/flashcard"
	"github.com/mmmustafa1/mcqs-quiz/history"
	"github.com/mmmustafa1/mcqs-quiz/jobs"
	"github.com/mmmustafa1/mcqs-quiz/llm"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/quiz"
	"github.com/mmmustafa1/mcqs-quiz/settings"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// API wrapper to hold all handlers
type API struct {
	authHandlers      *AuthHandlers
	quizHandlers      *QuizHandlers
	flashcardHandlers *FlashcardHandlers
	historyHandlers   *HistoryHandlers
	settingsHandlers  *SettingsHandlers
	generateHandlers  *GenerateHandlers
}

// Config carries the collaborators the router wires together
type Config struct {
	DB           *db.DB
	SessionStore *auth.SessionStore
	EmailService *auth.EmailService
	EmailConfig  *models.EmailConfig
	JobManager   *jobs.JobManager
	LLMClient    *llm.Client
	Secret       [32]byte
	AllowOrigins []string
}

func NewAPI(cfg Config) *API {
	kv := cfg.DB.KV()
	ledger := history.NewLedger(kv)
	settingsManager := settings.NewManager(kv)
	quizSessions := quiz.NewRegistry()
	studySessions := flashcard.NewRegistry()
	guard := llm.NewGuard()

	return &API{
		authHandlers:      NewAuthHandlers(cfg.DB, cfg.SessionStore, cfg.EmailService, cfg.EmailConfig, cfg.JobManager),
		quizHandlers:      NewQuizHandlers(quizSessions, ledger, settingsManager),
		flashcardHandlers: NewFlashcardHandlers(cfg.DB, studySessions, ledger, settingsManager),
		historyHandlers:   NewHistoryHandlers(ledger),
		settingsHandlers:  NewSettingsHandlers(settingsManager),
		generateHandlers:  NewGenerateHandlers(cfg.DB, cfg.LLMClient, guard, cfg.Secret),
	}
}

func NewRouter(cfg Config) http.Handler {
	api := NewAPI(cfg)

	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("/health", healthCheck)

	// Auth endpoints (handle their own auth as needed)
	mux.HandleFunc("/auth/", api.authHandlers.HandleAuth)

	// Public verification endpoint (no auth required)
	mux.HandleFunc("/verify-email", api.authHandlers.verifyEmail)

	// Profile requires a real user session, not a guest
	mux.HandleFunc("/profile", authMiddleware(api.authHandlers.HandleProfile, cfg.SessionStore))

	// Everything below is keyed by owner identity (user or guest)
	withOwner := func(next http.HandlerFunc) http.HandlerFunc {
		return ownerMiddleware(next, cfg.SessionStore, cfg.DB, cfg.EmailConfig)
	}

	// Quiz routes
	mux.HandleFunc("/quiz/", withOwner(api.quizHandlers.HandleQuiz))

	// Deck and study routes
	mux.HandleFunc("/decks", withOwner(api.flashcardHandlers.HandleDecks))
	mux.HandleFunc("/decks/", withOwner(api.flashcardHandlers.HandleDeckByID))
	mux.HandleFunc("/study/", withOwner(api.flashcardHandlers.HandleStudy))
	mux.HandleFunc("/shuffle", withOwner(api.flashcardHandlers.HandleShuffle))

	// History routes
	mux.HandleFunc("/history/", withOwner(api.historyHandlers.HandleHistory))

	// Settings routes
	mux.HandleFunc("/settings/", withOwner(api.settingsHandlers.HandleSettings))

	// Generation routes
	mux.HandleFunc("/generate/", withOwner(api.generateHandlers.HandleGenerate))
	mux.HandleFunc("/apikey", withOwner(api.generateHandlers.HandleAPIKey))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Guest-ID"},
		AllowCredentials: true,
	})

	return loggingMiddleware(c.Handler(mux))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("Health check requested")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
