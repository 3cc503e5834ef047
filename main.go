package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmmustafa1/mcqs-quiz/auth"
	"github.com/mmmustafa1/mcqs-quiz/db"
	"github.com/mmmustafa1/mcqs-quiz/handlers"
	"github.com/mmmustafa1/mcqs-quiz/jobs"
	"github.com/mmmustafa1/mcqs-quiz/llm"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

func main() {
	// Set up logging with timestamps
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	utils.LogStartup("MCQs Quiz API starting...")

	if err := godotenv.Load(); err != nil {
		utils.LogStartup("No .env file found, using environment variables")
	}

	port := utils.GetEnvOrDefault("PORT", "8080")
	dbPath := utils.GetEnvOrDefault("DB_PATH", "./mcqs-quiz.db")
	redisURL := utils.GetEnvOrDefault("REDIS_URL", "localhost:6379")
	appSecret := utils.GetEnvOrDefault("APP_SECRET", "")
	genBaseURL := utils.GetEnvOrDefault("GENERATION_API_URL", "https://generativelanguage.googleapis.com")
	genModel := utils.GetEnvOrDefault("GENERATION_MODEL", "gemini-2.0-flash")
	origins := utils.GetEnvOrDefault("ALLOWED_ORIGINS", "*")

	log.Printf("[CONFIG] Port: %s", port)
	log.Printf("[CONFIG] Database path: %s", dbPath)
	log.Printf("[CONFIG] Redis: %s", redisURL)
	log.Printf("[CONFIG] Generation model: %s", genModel)

	if appSecret == "" {
		appSecret = utils.GenerateToken()
		utils.LogStartup("APP_SECRET not set, generated an ephemeral one. Stored API keys will not survive a restart.")
	}

	// Initialize database
	utils.LogStartup("Initializing database connection...")
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize database: %v", err)
	}

	// In-memory session store with background expiry cleanup
	sessionStore := auth.NewSessionStore()

	// Email delivery through the job queue
	emailConfig := auth.LoadEmailConfig()
	emailService := auth.NewEmailService(emailConfig)

	jobManager := jobs.NewJobManager(redisURL)
	jobManager.RegisterHandlers(emailService)
	if err := jobManager.Start(); err != nil {
		utils.LogError("Failed to start job manager, emails will not be delivered: %v", err)
	}

	// Generation client; every user supplies their own API key
	llmClient := llm.NewClient(genBaseURL, genModel)

	utils.LogStartup("Setting up API routes...")
	router := handlers.NewRouter(handlers.Config{
		DB:           database,
		SessionStore: sessionStore,
		EmailService: emailService,
		EmailConfig:  emailConfig,
		JobManager:   jobManager,
		LLMClient:    llmClient,
		Secret:       utils.DeriveSecretKey(appSecret),
		AllowOrigins: strings.Split(origins, ","),
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // generation requests can run long
		IdleTimeout:  60 * time.Second,
	}

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		utils.LogShutdown("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			utils.LogError("Error shutting down HTTP server: %v", err)
		}

		jobManager.Stop()

		if err := database.Close(); err != nil {
			utils.LogError("Error closing database: %v", err)
		} else {
			utils.LogShutdown("Database connection closed successfully")
		}
		os.Exit(0)
	}()

	utils.LogStartup("Starting HTTP server on port %s...", port)
	utils.LogStartup("Server ready to accept connections at http://localhost:%s", port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[FATAL] Server failed to start: %v", err)
	}
}
