package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"admin"`
	TokenType string `json:"tokenType"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenSubject identifies who a token is issued for.
type TokenSubject struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func GenerateAccessToken(sub TokenSubject, secret string, expiration time.Duration) (string, error) {
	return generateToken(sub, TokenTypeAccess, secret, expiration)
}

func GenerateRefreshToken(sub TokenSubject, secret string, expiration time.Duration) (string, error) {
	return generateToken(sub, TokenTypeRefresh, secret, expiration)
}

func generateToken(sub TokenSubject, tokenType, secret string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    sub.UserID,
		Email:     sub.Email,
		IsAdmin:   sub.IsAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses tokenString and checks it carries the expected type.
func ValidateToken(tokenString, secret, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if wantType != "" && claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
