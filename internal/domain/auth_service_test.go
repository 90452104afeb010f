package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Disabled(t *testing.T) {
	auth := NewAuthService("", "")
	assert.False(t, auth.Enabled())

	ok, err := auth.ValidateToken(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService("hunter2", "secret")
	assert.True(t, auth.Enabled())

	_, err := auth.Login(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	token, err := auth.Login(ctx, "hunter2")
	require.NoError(t, err)

	ok, _ := auth.ValidateToken(ctx, token)
	assert.True(t, ok)

	ok, _ = auth.ValidateToken(ctx, token+"x")
	assert.False(t, ok)

	other := NewAuthService("hunter2", "other-secret")
	ok, _ = other.ValidateToken(ctx, token)
	assert.False(t, ok, "tokens are bound to the secret")
}
