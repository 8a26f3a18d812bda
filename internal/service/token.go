package service

import (
	"crypto/rand"
	"errors"
	"time"

	"minesweeper/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// TokenIssuer signs session tokens. A token names the session it was issued
// for, so a client still showing an old board cannot play on the new one.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer uses secret for HS256 signing. An empty secret gets a random
// per-process key, which invalidates tokens on restart.
func NewTokenIssuer(secret string) *TokenIssuer {
	if secret != "" {
		return &TokenIssuer{secret: []byte(secret)}
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("generate session token key: " + err.Error())
	}
	logger.Warn("JWT_SECRET is not set, using a random session token key")
	return &TokenIssuer{secret: key}
}

func (t *TokenIssuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// SessionID validates tokenString and returns the session it was issued for.
func (t *TokenIssuer) SessionID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
