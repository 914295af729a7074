package auth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	loadOnce           sync.Once
	jwtSecret          []byte
	refreshSecret      []byte
	accessTokenMinutes = 15
	refreshTokenDays   = 7
	rememberDays       = 30
	cookieSecure       = true
)

// loadConfig reads secrets and TTL overrides from the environment on first
// token operation. JWT_SECRET is mandatory; the refresh secret derives from
// it when JWT_REFRESH_SECRET is not set.
func loadConfig() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable is required and must not be empty")
	}
	if len(secret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
	jwtSecret = []byte(secret)

	refresh := os.Getenv("JWT_REFRESH_SECRET")
	if refresh == "" {
		refresh = secret + "-refresh"
	}
	refreshSecret = []byte(refresh)

	if os.Getenv("COOKIE_SECURE") == "false" {
		cookieSecure = false
	}

	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}
	envInt("ACCESS_TOKEN_MINUTES", &accessTokenMinutes)
	envInt("REFRESH_TOKEN_DAYS", &refreshTokenDays)
	envInt("REMEMBER_REFRESH_DAYS", &rememberDays)
}

func ensureLoaded() {
	loadOnce.Do(loadConfig)
}

// CookieSecure reports whether auth cookies should carry the Secure flag
// (disable with COOKIE_SECURE=false for local HTTP development).
func CookieSecure() bool {
	ensureLoaded()
	return cookieSecure
}

type Claims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

func newToken(userID int, username, tokenType string, ttl time.Duration, key []byte) (string, error) {
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// GenerateToken creates a short-lived access token.
func GenerateToken(userID int, username string) (string, error) {
	ensureLoaded()
	return newToken(userID, username, "access", time.Duration(accessTokenMinutes)*time.Minute, jwtSecret)
}

// GenerateRefreshToken creates a refresh token valid for the given number of
// days, falling back to the configured default when days <= 0.
func GenerateRefreshToken(userID int, username string, days int) (string, error) {
	ensureLoaded()
	if days <= 0 {
		days = refreshTokenDays
	}
	return newToken(userID, username, "refresh", time.Duration(days)*24*time.Hour, refreshSecret)
}

func parseToken(tokenString, wantType string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.TokenType != wantType {
			return nil, errors.New("invalid token type")
		}
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func ValidateToken(tokenString string) (*Claims, error) {
	ensureLoaded()
	return parseToken(tokenString, "access", jwtSecret)
}

func ValidateRefreshToken(tokenString string) (*Claims, error) {
	ensureLoaded()
	return parseToken(tokenString, "refresh", refreshSecret)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// RefreshDays returns the refresh token TTL in days for the remember flag.
func RefreshDays(remember bool) int {
	ensureLoaded()
	if remember {
		return rememberDays
	}
	return refreshTokenDays
}
