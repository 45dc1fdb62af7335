// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/auth"
)

// ErrAdminUsernameRequired is returned when ADMIN_USERNAME is blank.
var ErrAdminUsernameRequired = errors.New("admin username is required")

// AdminAccount resolves the single console account from configuration.
//
// ADMIN_PASSWORD_HASH wins when both it and ADMIN_PASSWORD are set. A
// plaintext password is hashed here; config validation already refuses it in
// prod. With neither set the account exists but nobody can sign in, which
// keeps a storefront-only deployment bootable.
func AdminAccount(cfg internal.AdminConfig, logger *slog.Logger) (auth.Account, error) {
	account := auth.Account{
		ID:           1,
		Username:     strings.TrimSpace(cfg.Username),
		Name:         strings.TrimSpace(cfg.Name),
		PasswordHash: cfg.PasswordHash,
	}
	if account.Username == "" {
		return account, ErrAdminUsernameRequired
	}
	if account.Name == "" {
		account.Name = "Admin"
	}

	switch {
	case account.PasswordHash != "":
		logger.Info("bootstrap: admin account configured", "username", account.Username)
	case cfg.Password != "":
		hash, err := auth.HashPassword(cfg.Password)
		if err != nil {
			return account, fmt.Errorf("invalid ADMIN_PASSWORD: %w", err)
		}
		account.PasswordHash = hash
		logger.Warn("bootstrap: using plaintext ADMIN_PASSWORD, set ADMIN_PASSWORD_HASH outside development",
			"username", account.Username,
		)
	default:
		logger.Warn("bootstrap: no admin password configured, console login is disabled",
			"hint", "Set ADMIN_PASSWORD_HASH (see catalogctl hash-password)",
		)
	}
	return account, nil
}
