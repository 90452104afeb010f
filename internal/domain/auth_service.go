package domain

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/Vovarama1992/companion/internal/ports"
)

var ErrInvalidPassword = errors.New("invalid password")

type authService struct {
	password string
	secret   []byte
}

// NewAuthService guards the web display with a single shared password.
// An empty password disables auth; an empty secret is replaced by a random
// one, so tokens then only live as long as the process.
func NewAuthService(password, secret string) ports.AuthService {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &authService{password: password, secret: key}
}

func (s *authService) Enabled() bool { return s.password != "" }

func (s *authService) Login(ctx context.Context, password string) (string, error) {
	if !s.Enabled() {
		return s.sign("allowed"), nil
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", ErrInvalidPassword
	}
	return s.sign("allowed"), nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (bool, error) {
	if !s.Enabled() {
		return true, nil
	}
	return hmac.Equal([]byte(token), []byte(s.sign("allowed"))), nil
}

func (s *authService) sign(msg string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}
