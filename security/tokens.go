package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	jwt.RegisteredClaims
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func newToken(userID uint, role, tokenType string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

func NewAccessToken(userID uint, role string) (string, error) {
	return newToken(userID, role, tokenTypeAccess, AccessTokenTTL)
}

func NewRefreshToken(userID uint, role string) (string, error) {
	return newToken(userID, role, tokenTypeRefresh, RefreshTokenTTL)
}

func parseToken(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func ParseAccessToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, tokenTypeAccess)
}

func ParseRefreshToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, tokenTypeRefresh)
}

// Process-local revoked-refresh-token set. Grows for the process lifetime
// and is not shared between instances; multi-instance deployments need an
// external keyed store instead.
var (
	revokedMu     sync.Mutex
	revokedTokens = make(map[string]struct{})
)

func RevokeRefreshToken(token string) {
	revokedMu.Lock()
	defer revokedMu.Unlock()
	revokedTokens[token] = struct{}{}
}

func IsRefreshTokenRevoked(token string) bool {
	revokedMu.Lock()
	defer revokedMu.Unlock()
	_, revoked := revokedTokens[token]
	return revoked
}

// RandomToken returns a URL-safe random token for email verification and
// password reset links.
func RandomToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
