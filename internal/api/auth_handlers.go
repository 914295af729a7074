package api

import (
	"database/sql"
	"log"
	"time"

	"scadenze/internal/auth"
	"scadenze/internal/models"

	"github.com/gofiber/fiber/v2"
)

func setRefreshCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   auth.CookieSecure(),
		SameSite: "Lax",
		Path:     "/api/auth",
	})
}

func issueTokens(c *fiber.Ctx, db *sql.DB, user models.User, remember bool) (models.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return models.AuthResponse{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to generate token")
	}

	days := auth.RefreshDays(remember)
	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.Username, days)
	if err != nil {
		return models.AuthResponse{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to generate refresh token")
	}

	expiresAt := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	if err := StoreRefreshToken(db, user.ID, refreshToken, expiresAt, days); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		return models.AuthResponse{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to store refresh token")
	}
	setRefreshCookie(c, refreshToken, expiresAt)

	return models.AuthResponse{Token: accessToken, User: user}, nil
}

func RegisterHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
		}

		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
		}

		result, err := db.Exec(
			"INSERT INTO users (username, password_hash) VALUES (?, ?)",
			req.Username, hashedPassword,
		)
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, "Username already exists")
		}

		userID, _ := result.LastInsertId()
		user := models.User{ID: int(userID), Username: req.Username}

		resp, err := issueTokens(c, db, user, req.Remember)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

func LoginHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var user models.User
		err := db.QueryRow(
			"SELECT id, username, password_hash, COALESCE(email, '') FROM users WHERE username = ?",
			req.Username,
		).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email)

		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Database error")
		}

		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}

		resp, err := issueTokens(c, db, user, req.Remember)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// RefreshTokenHandler rotates the refresh token and mints a new access token.
func RefreshTokenHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refreshToken := c.Cookies("refresh_token")
		if refreshToken == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Refresh token not found")
		}

		claims, err := auth.ValidateRefreshToken(refreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
		}

		dbUserID, ttlDays, err := ValidateRefreshTokenInDB(db, refreshToken)
		if err != nil {
			log.Printf("Refresh token DB validation failed: %v", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Refresh token not valid")
		}
		if dbUserID != claims.UserID {
			return fiber.NewError(fiber.StatusUnauthorized, "Token user mismatch")
		}

		accessToken, err := auth.GenerateToken(claims.UserID, claims.Username)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate access token")
		}

		newRefreshToken, err := auth.GenerateRefreshToken(claims.UserID, claims.Username, ttlDays)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate new refresh token")
		}
		expiresAt := time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour)
		if err := StoreRefreshToken(db, claims.UserID, newRefreshToken, expiresAt, ttlDays); err != nil {
			log.Printf("Failed to store new refresh token: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to store new refresh token")
		}
		_ = RevokeRefreshToken(db, refreshToken)

		setRefreshCookie(c, newRefreshToken, expiresAt)

		return c.JSON(fiber.Map{"token": accessToken})
	}
}

func LogoutHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if old := c.Cookies("refresh_token"); old != "" {
			_ = RevokeRefreshToken(db, old)
		}

		setRefreshCookie(c, "", time.Now().Add(-1*time.Hour))

		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}
}
