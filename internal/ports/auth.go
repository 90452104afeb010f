package ports

import "context"

type AuthService interface {
	// Enabled is false when no password is configured; every token is then accepted.
	Enabled() bool
	Login(ctx context.Context, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
}
