package bootstrap

import (
	"context"
	"fmt"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/catalog"
	"github.com/dukerupert/flipcart/internal/crypto"
	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/settings"
)

// Settings opens the settings record, sealing the SMTP password when
// SETTINGS_KEY is configured.
func Settings(cfg *internal.Config) (*settings.FileStore, error) {
	if cfg.SettingsKey == "" {
		return settings.NewFileStore(cfg.SettingsFile), nil
	}
	key, err := crypto.DecodeKeyBase64(cfg.SettingsKey)
	if err != nil {
		return nil, fmt.Errorf("SETTINGS_KEY: %w", err)
	}
	box, err := crypto.NewSecretBox(key)
	if err != nil {
		return nil, fmt.Errorf("SETTINGS_KEY: %w", err)
	}
	return settings.NewFileStore(cfg.SettingsFile, settings.WithEncryptor(box)), nil
}

// DefaultOrder reads the display order for manual submissions from the
// settings record on every call.
func DefaultOrder(store domain.SettingsStore) catalog.DefaultOrderFunc {
	return func(ctx context.Context) string {
		s, err := store.Get(ctx)
		if err != nil {
			return ""
		}
		return s.DisplayOrder()
	}
}
