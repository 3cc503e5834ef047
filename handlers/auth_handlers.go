package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/auth"
	"github.com/mmmustafa1/mcqs-quiz/db"
	"github.com/mmmustafa1/mcqs-quiz/jobs"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

type AuthHandlers struct {
	db           *db.DB
	sessionStore *auth.SessionStore
	emailService *auth.EmailService
	emailConfig  *models.EmailConfig
	jobManager   *jobs.JobManager
}

func NewAuthHandlers(database *db.DB, sessionStore *auth.SessionStore, emailService *auth.EmailService, emailConfig *models.EmailConfig, jobManager *jobs.JobManager) *AuthHandlers {
	return &AuthHandlers{
		db:           database,
		sessionStore: sessionStore,
		emailService: emailService,
		emailConfig:  emailConfig,
		jobManager:   jobManager,
	}
}

func (ah *AuthHandlers) HandleAuth(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/auth/")

	switch {
	case path == "register" && r.Method == http.MethodPost:
		ah.register(w, r)
	case path == "login" && r.Method == http.MethodPost:
		ah.login(w, r)
	case path == "logout" && r.Method == http.MethodPost:
		ah.logout(w, r)
	case path == "me" && r.Method == http.MethodGet:
		ah.getCurrentUserInfo(w, r)
	case path == "resend-verification" && r.Method == http.MethodPost:
		ah.resendVerification(w, r)
	case path == "password-reset" && r.Method == http.MethodPost:
		ah.requestPasswordReset(w, r)
	case path == "password-reset/complete" && r.Method == http.MethodPost:
		ah.completePasswordReset(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (ah *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/register")

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogHTTP("Invalid JSON in register request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := ah.db.CreateUser(req)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			if strings.Contains(err.Error(), "username") {
				http.Error(w, "Username already exists", http.StatusConflict)
			} else if strings.Contains(err.Error(), "email") {
				http.Error(w, "Email already exists", http.StatusConflict)
			} else {
				http.Error(w, "User already exists", http.StatusConflict)
			}
		} else if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "must be") {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			utils.LogError("Failed to create user: %v", err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
		}
		return
	}

	// Create email verification token
	verification, err := ah.db.CreateEmailVerification(user.ID, user.Email)
	if err != nil {
		utils.LogError("Failed to create email verification: %v", err)
	} else {
		subject, body := ah.emailService.BuildVerificationEmail(user, verification.Token)
		if err := ah.jobManager.QueueVerificationEmail(user.Email, subject, body, user.ID, verification.Token); err != nil {
			utils.LogError("Failed to queue verification email: %v", err)
		}
	}

	// Create session for immediate login
	session := ah.sessionStore.CreateSession(user)

	utils.LogHTTP("User registered successfully: %s (ID: %d)", user.Username, user.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    user,
		"session": session,
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

func (ah *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/login")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogHTTP("Invalid JSON in login request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := ah.db.AuthenticateUser(req.Username, req.Password)
	if err != nil {
		utils.LogHTTP("Login failed for user: %s", req.Username)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	session := ah.sessionStore.CreateSession(user)

	utils.LogHTTP("User logged in successfully: %s (ID: %d)", user.Username, user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    user,
		"session": session,
		"message": "Login successful",
	})
}

func (ah *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/logout")

	sessionID := extractSessionFromRequest(r)
	if sessionID != "" && len(sessionID) >= 8 {
		ah.sessionStore.DeleteSession(sessionID)
		utils.LogHTTP("Session %s destroyed", sessionID[:8]+"...")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Logout successful",
	})
}

func (ah *AuthHandlers) getCurrentUserInfo(w http.ResponseWriter, r *http.Request) {
	// Extract session manually since this endpoint handles its own auth
	sessionID := extractSessionFromRequest(r)
	if sessionID == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	session, exists := ah.sessionStore.GetSession(sessionID)
	if !exists {
		http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
		return
	}

	user, err := ah.db.GetUserByID(session.UserID)
	if err != nil {
		utils.LogError("Failed to get current user info: %v", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"user": user,
	}

	// Add grace period info for unverified users
	if !user.EmailVerified {
		inGracePeriod, err := ah.db.IsUserInGracePeriod(user.ID, ah.emailConfig.GracePeriod)
		if err == nil {
			response["email_verification"] = map[string]interface{}{
				"in_grace_period":    inGracePeriod,
				"grace_period_hours": int(ah.emailConfig.GracePeriod.Hours()),
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (ah *AuthHandlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("GET /verify-email")

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	user, err := ah.db.VerifyEmailToken(token)
	if err != nil {
		utils.LogHTTP("Email verification failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.LogHTTP("Email verified successfully for user: %s (ID: %d)", user.Username, user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    user,
		"message": "Email verified successfully",
	})
}

func (ah *AuthHandlers) resendVerification(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/resend-verification")

	sessionID := extractSessionFromRequest(r)
	if sessionID == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	session, exists := ah.sessionStore.GetSession(sessionID)
	if !exists {
		http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
		return
	}

	user, err := ah.db.GetUserByID(session.UserID)
	if err != nil {
		utils.LogError("Failed to get user for verification resend: %v", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	if user.EmailVerified {
		http.Error(w, "Email already verified", http.StatusBadRequest)
		return
	}

	verification, err := ah.db.CreateEmailVerification(user.ID, user.Email)
	if err != nil {
		utils.LogError("Failed to create email verification: %v", err)
		http.Error(w, "Failed to create verification token", http.StatusInternalServerError)
		return
	}

	subject, body := ah.emailService.BuildVerificationEmail(user, verification.Token)
	if err := ah.jobManager.QueueVerificationEmail(user.Email, subject, body, user.ID, verification.Token); err != nil {
		utils.LogError("Failed to queue verification email: %v", err)
		http.Error(w, "Failed to queue verification email", http.StatusInternalServerError)
		return
	}

	utils.LogHTTP("Verification email resent to user: %s (ID: %d)", user.Username, user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Verification email sent successfully",
	})
}

func (ah *AuthHandlers) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/password-reset")

	var req models.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	// Always answer the same way so the endpoint cannot be used to probe
	// which emails are registered.
	respond := func() {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "If an account exists for that email, a reset link has been sent.",
		})
	}

	user, err := ah.db.GetUserByEmail(req.Email)
	if err != nil {
		utils.LogHTTP("Password reset requested for unknown email")
		respond()
		return
	}

	reset, err := ah.db.CreatePasswordReset(user.ID)
	if err != nil {
		utils.LogError("Failed to create password reset: %v", err)
		respond()
		return
	}

	subject, body := ah.emailService.BuildPasswordResetEmail(user, reset.Token)
	if err := ah.jobManager.QueuePasswordResetEmail(user.Email, subject, body, user.ID, reset.Token); err != nil {
		utils.LogError("Failed to queue password reset email: %v", err)
	}

	utils.LogHTTP("Password reset email queued for user ID %d", user.ID)
	respond()
}

func (ah *AuthHandlers) completePasswordReset(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/password-reset/complete")

	var req models.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Token == "" || req.NewPassword == "" {
		http.Error(w, "Token and new password are required", http.StatusBadRequest)
		return
	}

	userID, err := ah.db.ConsumePasswordReset(req.Token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := ah.db.UpdatePassword(userID, req.NewPassword); err != nil {
		if strings.Contains(err.Error(), "must be") {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			utils.LogError("Failed to update password for user %d: %v", userID, err)
			http.Error(w, "Failed to update password", http.StatusInternalServerError)
		}
		return
	}

	// Kill all sessions for this user (force re-login)
	ah.sessionStore.DeleteUserSessions(userID)

	utils.LogHTTP("Password reset completed for user ID %d", userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Password changed successfully. Please log in again.",
	})
}

func (ah *AuthHandlers) HandleProfile(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	if session == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := ah.db.GetUserByID(session.UserID)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)

	case http.MethodPut:
		var req models.ProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if req.DisplayName == nil || strings.TrimSpace(*req.DisplayName) == "" {
			http.Error(w, "Display name is required", http.StatusBadRequest)
			return
		}

		user, err := ah.db.UpdateDisplayName(session.UserID, strings.TrimSpace(*req.DisplayName))
		if err != nil {
			utils.LogError("Failed to update display name for user %d: %v", session.UserID, err)
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}

		utils.LogHTTP("Display name updated for user ID %d", session.UserID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
