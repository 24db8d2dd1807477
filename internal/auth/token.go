package auth

import (
	"errors"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour
)

// SessionClaims is the JWT payload. The registered ID claim carries the
// server-side session id; the signed token alone is not enough to stay
// logged in past the idle timeout.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// InitJWT loads the signing secret and token TTL from env. Call once during
// app bootstrap, before any token is issued or parsed.
func InitJWT() {
	jwtMu.Lock()
	defer jwtMu.Unlock()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
			log.Fatal("❌ CRITICAL: JWT_SECRET must be set in production environment")
		}
		log.Println("⚠️ WARNING: Using default JWT secret (development only)")
		secret = "dev-secret-change-me-0123456789abcdef"
	}
	if len(secret) < 32 {
		log.Fatalf("❌ CRITICAL: JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}
	jwtSecret = []byte(secret)

	if ttl := os.Getenv("JWT_TTL"); ttl != "" {
		dur, err := time.ParseDuration(ttl)
		if err != nil || dur <= 0 {
			log.Printf("invalid JWT_TTL=%q, using default %s", ttl, tokenTTL)
		} else {
			tokenTTL = dur
		}
	}
}

func getJWTSecret() []byte {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtSecret
}

// IssueToken signs a session token for the user. The expiry here is an
// absolute cap; the effective lifetime is bounded by the 30-minute idle
// timeout tracked on the sessions table.
func IssueToken(userID int64, username, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(getJWTSecret())
	return signed, expires, err
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(signed string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return getJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
