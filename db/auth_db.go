package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mmmustafa1/mcqs-quiz/models"
	"github.com/mmmustafa1/mcqs-quiz/utils"
)

func (db *DB) CreateUser(req models.RegisterRequest) (*models.User, error) {
	utils.LogDB("Creating user: %s (%s)", req.Username, req.Email)
	start := time.Now()

	if err := utils.ValidateRegistration(req.Username, req.Email, req.Password, false); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		return nil, err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	result, err := db.Exec(`
		INSERT INTO users (username, email, password_hash, display_name)
		VALUES (?, ?, ?, ?)
	`, req.Username, req.Email, hashedPassword, displayName)

	if err != nil {
		duration := time.Since(start)
		utils.LogError("CreateUser failed: %v (%v)", err, duration)
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		utils.LogError("Failed to get LastInsertId for user: %v", err)
		return nil, err
	}

	duration := time.Since(start)
	utils.LogDB("User created with ID %d in %v", id, duration)

	return db.GetUserByID(int(id))
}

func (db *DB) GetUserByID(id int) (*models.User, error) {
	utils.LogDB("Getting user by ID: %d", id)

	var user models.User
	err := db.QueryRow(`
		SELECT id, username, email, display_name, email_verified, email_verified_at, created_at, updated_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.EmailVerified, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			utils.LogDB("User ID %d not found", id)
		} else {
			utils.LogError("GetUserByID(%d) failed: %v", id, err)
		}
		return nil, err
	}

	return &user, nil
}

func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	utils.LogDB("Getting user by username: %s", username)

	var user models.User
	err := db.QueryRow(`
		SELECT id, username, email, display_name, email_verified, email_verified_at, created_at, updated_at
		FROM users WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.EmailVerified, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			utils.LogDB("User %s not found", username)
		} else {
			utils.LogError("GetUserByUsername(%s) failed: %v", username, err)
		}
		return nil, err
	}

	return &user, nil
}

func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	utils.LogDB("Getting user by email: %s", email)

	var user models.User
	err := db.QueryRow(`
		SELECT id, username, email, display_name, email_verified, email_verified_at, created_at, updated_at
		FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.EmailVerified, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			utils.LogDB("User with email %s not found", email)
		} else {
			utils.LogError("GetUserByEmail(%s) failed: %v", email, err)
		}
		return nil, err
	}

	return &user, nil
}

func (db *DB) AuthenticateUser(username, password string) (*models.User, error) {
	utils.LogDB("Authenticating user: %s", username)

	var user models.User
	var passwordHash string

	err := db.QueryRow(`
		SELECT id, username, email, display_name, email_verified, email_verified_at,
		       created_at, updated_at, password_hash
		FROM users WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.EmailVerified, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt, &passwordHash)

	if err != nil {
		if err == sql.ErrNoRows {
			utils.LogDB("Authentication failed: user %s not found", username)
		} else {
			utils.LogError("AuthenticateUser(%s) failed: %v", username, err)
		}
		return nil, fmt.Errorf("invalid credentials")
	}

	if !utils.CheckPassword(passwordHash, password) {
		utils.LogDB("Authentication failed: invalid password for user %s", username)
		return nil, fmt.Errorf("invalid credentials")
	}

	utils.LogDB("User %s authenticated successfully", username)
	return &user, nil
}

func (db *DB) UpdateDisplayName(id int, displayName string) (*models.User, error) {
	utils.LogDB("Updating display name for user ID %d", id)

	result, err := db.Exec(`
		UPDATE users SET display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, displayName, id)
	if err != nil {
		utils.LogError("UpdateDisplayName(%d) failed: %v", id, err)
		return nil, err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user not found")
	}

	return db.GetUserByID(id)
}

func (db *DB) UpdatePassword(id int, newPassword string) error {
	utils.LogDB("Updating password for user ID %d", id)

	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		return err
	}

	result, err := db.Exec(`
		UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, hashedPassword, id)
	if err != nil {
		utils.LogError("UpdatePassword(%d) failed: %v", id, err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// Email verification functions
func (db *DB) CreateEmailVerification(userID int, email string) (*models.EmailVerification, error) {
	utils.LogDB("Creating email verification for user %d", userID)

	// Delete any existing unverified tokens for this user
	_, err := db.Exec("DELETE FROM email_verifications WHERE user_id = ? AND used_at IS NULL", userID)
	if err != nil {
		utils.LogError("Failed to clean up old verification tokens: %v", err)
		return nil, err
	}

	token := utils.GenerateToken()
	expiresAt := time.Now().Add(24 * time.Hour) // Tokens valid for 24 hours

	result, err := db.Exec(`
		INSERT INTO email_verifications (user_id, email, token, created_at, expires_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, ?)
	`, userID, email, token, expiresAt)

	if err != nil {
		utils.LogError("Failed to create email verification: %v", err)
		return nil, err
	}

	id, _ := result.LastInsertId()

	verification := &models.EmailVerification{
		ID:        int(id),
		UserID:    userID,
		Email:     email,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}

	utils.LogDB("Email verification created with token: %s", token[:8]+"...")
	return verification, nil
}

func (db *DB) VerifyEmailToken(token string) (*models.User, error) {
	if len(token) < 8 {
		return nil, fmt.Errorf("invalid or expired verification token")
	}
	utils.LogDB("Verifying email token: %s", token[:8]+"...")

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var verification models.EmailVerification
	err = tx.QueryRow(`
		SELECT id, user_id, email, created_at, expires_at, used_at
		FROM email_verifications
		WHERE token = ? AND used_at IS NULL
	`, token).Scan(&verification.ID, &verification.UserID, &verification.Email,
		&verification.CreatedAt, &verification.ExpiresAt, &verification.UsedAt)

	if err != nil {
		utils.LogDB("Email verification token not found or already used: %s", token[:8]+"...")
		return nil, fmt.Errorf("invalid or expired verification token")
	}

	if time.Now().After(verification.ExpiresAt) {
		utils.LogDB("Email verification token expired: %s", token[:8]+"...")
		return nil, fmt.Errorf("verification token has expired")
	}

	_, err = tx.Exec(`
		UPDATE email_verifications
		SET used_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, verification.ID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE users
		SET email_verified = 1, email_verified_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, verification.UserID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = tx.QueryRow(`
		SELECT id, username, email, display_name, email_verified, created_at, updated_at
		FROM users WHERE id = ?
	`, verification.UserID).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	utils.LogDB("Email verified for user %d (%s)", user.ID, user.Username)
	return &user, nil
}

func (db *DB) IsUserInGracePeriod(userID int, gracePeriod time.Duration) (bool, error) {
	var createdAt time.Time
	err := db.QueryRow("SELECT created_at FROM users WHERE id = ?", userID).Scan(&createdAt)
	if err != nil {
		return false, err
	}

	graceEndsAt := createdAt.Add(gracePeriod)
	return time.Now().Before(graceEndsAt), nil
}

// Password reset functions
func (db *DB) CreatePasswordReset(userID int) (*models.PasswordReset, error) {
	utils.LogDB("Creating password reset for user %d", userID)

	_, err := db.Exec("DELETE FROM password_resets WHERE user_id = ? AND used_at IS NULL", userID)
	if err != nil {
		utils.LogError("Failed to clean up old reset tokens: %v", err)
		return nil, err
	}

	token := utils.GenerateToken()
	expiresAt := time.Now().Add(time.Hour) // Reset links valid for 1 hour

	result, err := db.Exec(`
		INSERT INTO password_resets (user_id, token, created_at, expires_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, ?)
	`, userID, token, expiresAt)

	if err != nil {
		utils.LogError("Failed to create password reset: %v", err)
		return nil, err
	}

	id, _ := result.LastInsertId()

	reset := &models.PasswordReset{
		ID:        int(id),
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}

	utils.LogDB("Password reset created with token: %s", token[:8]+"...")
	return reset, nil
}

func (db *DB) ConsumePasswordReset(token string) (int, error) {
	if len(token) < 8 {
		return 0, fmt.Errorf("invalid or expired reset token")
	}
	utils.LogDB("Consuming password reset token: %s", token[:8]+"...")

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var reset models.PasswordReset
	err = tx.QueryRow(`
		SELECT id, user_id, created_at, expires_at, used_at
		FROM password_resets
		WHERE token = ? AND used_at IS NULL
	`, token).Scan(&reset.ID, &reset.UserID, &reset.CreatedAt, &reset.ExpiresAt, &reset.UsedAt)

	if err != nil {
		utils.LogDB("Password reset token not found or already used: %s", token[:8]+"...")
		return 0, fmt.Errorf("invalid or expired reset token")
	}

	if time.Now().After(reset.ExpiresAt) {
		utils.LogDB("Password reset token expired: %s", token[:8]+"...")
		return 0, fmt.Errorf("reset token has expired")
	}

	_, err = tx.Exec(`
		UPDATE password_resets
		SET used_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, reset.ID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return reset.UserID, nil
}
