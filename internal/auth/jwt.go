package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier maps a bearer credential to a stable external user id. The rest of
// the system only sees this function boundary, never the token format.
type Verifier interface {
	Verify(tokenString string) (string, error)
}

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type JWTVerifier struct {
	secretKey []byte
}

func NewJWTVerifier(secretKey string) *JWTVerifier {
	return &JWTVerifier{secretKey: []byte(secretKey)}
}

func (m *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	if c, ok := token.Claims.(*claims); ok && token.Valid && c.UserID != "" {
		return c.UserID, nil
	}
	return "", ErrInvalidToken
}

// Generate signs a token for the given user id. Used by tests and tooling;
// production tokens come from the external identity service.
func (m *JWTVerifier) Generate(userID string, ttl time.Duration) string {
	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, _ := token.SignedString(m.secretKey)
	return signed
}
