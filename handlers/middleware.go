package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmmustafa1/mcqs-quiz/auth"
	"github.com/mmmustafa1/mcqs-quiz/db"
	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

// Context keys for storing request identity
type contextKey string

const (
	sessionContextKey contextKey = "session"
	ownerContextKey   contextKey = "owner"
)

// extractSessionFromRequest gets session ID from Authorization header or cookie
func extractSessionFromRequest(r *http.Request) string {
	_auth := r.Header.Get("Authorization")

	if strings.HasPrefix(_auth, "Bearer ") {
		return strings.TrimPrefix(_auth, "Bearer ")
	}

	cookie, err := r.Cookie("session_id")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ownerMiddleware resolves the identity every piece of study state is
// keyed by: "user:<id>" for a valid session, "guest:<token>" for a
// request carrying X-Guest-ID instead. Logged-in users also go through
// the email verification grace period check.
func ownerMiddleware(next http.HandlerFunc, sessionStore *auth.SessionStore, database *db.DB, emailConfig *models.EmailConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := extractSessionFromRequest(r)
		if sessionID != "" {
			session, exists := sessionStore.GetSession(sessionID)
			if !exists {
				http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}

			user, err := database.GetUserByID(session.UserID)
			if err != nil {
				utils.LogError("Failed to get user for email verification check: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !user.EmailVerified {
				inGracePeriod, err := database.IsUserInGracePeriod(user.ID, emailConfig.GracePeriod)
				if err != nil {
					utils.LogError("Failed to check grace period: %v", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				if !inGracePeriod {
					utils.LogInfo("User %s (%d) blocked - email not verified and grace period expired", user.Username, user.ID)
					http.Error(w, "Email verification required. Please check your email and verify your account.", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			ctx = context.WithValue(ctx, ownerContextKey, fmt.Sprintf("user:%d", session.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		guestID := r.Header.Get("X-Guest-ID")
		if guestID == "" {
			http.Error(w, "Missing session token or guest identity", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ownerContextKey, "guest:"+guestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// authMiddleware requires a valid user session, guests not allowed
func authMiddleware(next http.HandlerFunc, sessionStore *auth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := extractSessionFromRequest(r)
		if sessionID == "" {
			http.Error(w, "Missing session token", http.StatusUnauthorized)
			return
		}

		session, exists := sessionStore.GetSession(sessionID)
		if !exists {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		ctx = context.WithValue(ctx, ownerContextKey, fmt.Sprintf("user:%d", session.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// getSessionFromContext extracts session from request context
func getSessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// getOwnerFromContext extracts the owner identity from request context
func getOwnerFromContext(ctx context.Context) string {
	owner, ok := ctx.Value(ownerContextKey).(string)
	if !ok {
		return ""
	}
	return owner
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		utils.LogHTTP("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
