// Package settings keeps the store-wide settings record in a JSON file.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/dukerupert/flipcart/internal/crypto"
	"github.com/dukerupert/flipcart/internal/domain"
)

// sealedPrefix marks a password written through an Encryptor.
const sealedPrefix = "sealed:"

// FileStore implements domain.SettingsStore. The record is read once and
// cached; every update rewrites the whole file. An empty path keeps the
// settings in memory only.
type FileStore struct {
	path string
	box  crypto.Encryptor

	mu      sync.RWMutex
	current *domain.Settings
}

var _ domain.SettingsStore = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

// WithEncryptor seals the admin email password before it is written to disk.
func WithEncryptor(box crypto.Encryptor) Option {
	return func(s *FileStore) { s.box = box }
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the current settings. A missing file yields the
// zero record.
func (s *FileStore) Get(ctx context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	if s.current != nil {
		out := *s.current
		s.mu.RUnlock()
		return &out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		loaded, err := s.load()
		if err != nil {
			return nil, domain.Internal(err, "settings.get", "failed to read settings")
		}
		s.current = loaded
	}
	out := *s.current
	return &out, nil
}

// Update replaces the settings record. An empty admin email password keeps
// the stored one so the admin console can save without re-entering it.
func (s *FileStore) Update(ctx context.Context, next domain.Settings) (*domain.Settings, error) {
	const op = "settings.update"

	if err := validate(op, next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		loaded, err := s.load()
		if err != nil {
			return nil, domain.Internal(err, op, "failed to read settings")
		}
		s.current = loaded
	}
	if next.AdminEmailPassword == "" {
		next.AdminEmailPassword = s.current.AdminEmailPassword
	}
	next.DefaultOrder = strings.TrimSpace(next.DefaultOrder)

	if err := s.save(&next); err != nil {
		return nil, domain.Internal(err, op, "failed to save settings")
	}
	s.current = &next
	out := next
	return &out, nil
}

func validate(op string, s domain.Settings) error {
	for _, ip := range strings.Split(s.AllowedIP, ",") {
		if ip = strings.TrimSpace(ip); ip != "" && net.ParseIP(ip) == nil {
			return domain.NewValidationError(op, "allowed_ip", fmt.Sprintf("%q is not an IP address", ip))
		}
	}
	return nil
}

func (s *FileStore) load() (*domain.Settings, error) {
	if s.path == "" {
		return &domain.Settings{}, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out domain.Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if sealed, ok := strings.CutPrefix(out.AdminEmailPassword, sealedPrefix); ok {
		if s.box == nil {
			return nil, fmt.Errorf("%s holds a sealed password but no settings key is configured", s.path)
		}
		plain, err := s.box.Decrypt([]byte(sealed))
		if err != nil {
			return nil, fmt.Errorf("open admin_email_password: %w", err)
		}
		out.AdminEmailPassword = string(plain)
	}
	return &out, nil
}

func (s *FileStore) save(v *domain.Settings) error {
	if s.path == "" {
		return nil
	}
	stored := *v
	if s.box != nil && stored.AdminEmailPassword != "" {
		sealed, err := s.box.Encrypt([]byte(stored.AdminEmailPassword))
		if err != nil {
			return err
		}
		stored.AdminEmailPassword = sealedPrefix + string(sealed)
	}
	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(data))
}
