package storage

import (
	"github.com/dukerupert/flipcart/internal/domain"
)

var (
	ErrR2AccountIDRequired   = domain.Invalid("storage.NewR2Storage", "R2 account ID is required")
	ErrR2CredentialsRequired = domain.Invalid("storage.NewR2Storage", "R2 credentials are required")
	ErrR2BucketRequired      = domain.Invalid("storage.NewR2Storage", "R2 bucket name is required")

	// ErrInvalidKey is returned for keys that escape the storage root.
	ErrInvalidKey = domain.Invalid("storage.LocalStorage", "invalid storage key")
)

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return domain.Errorf(domain.EINVALID, "storage.NewStorage", "unknown storage provider: %s", provider)
}
