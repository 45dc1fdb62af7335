package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/auth"
)

func TestAdminAccount(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("hash is used as is", func(t *testing.T) {
		got, err := AdminAccount(internal.AdminConfig{
			Username:     "admin",
			PasswordHash: "$2a$12$stored",
			Password:     "ignored-password",
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, "$2a$12$stored", got.PasswordHash)
		assert.Equal(t, "Admin", got.Name)
	})

	t.Run("plaintext is hashed", func(t *testing.T) {
		got, err := AdminAccount(internal.AdminConfig{
			Username: " admin ",
			Name:     "Store Owner",
			Password: "correct horse",
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, "admin", got.Username)
		assert.Equal(t, "Store Owner", got.Name)
		assert.NoError(t, auth.VerifyPassword("correct horse", got.PasswordHash))
	})

	t.Run("short plaintext is rejected", func(t *testing.T) {
		_, err := AdminAccount(internal.AdminConfig{Username: "admin", Password: "short"}, logger)
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	})

	t.Run("no password leaves login disabled", func(t *testing.T) {
		got, err := AdminAccount(internal.AdminConfig{Username: "admin"}, logger)
		require.NoError(t, err)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("username required", func(t *testing.T) {
		_, err := AdminAccount(internal.AdminConfig{Password: "long enough"}, logger)
		assert.ErrorIs(t, err, ErrAdminUsernameRequired)
	})
}
