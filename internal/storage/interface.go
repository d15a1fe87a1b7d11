package storage

import (
	"context"
	"io"
	"time"

	"car-rental-adjustments/internal/domain"
)

// Interface abstracts where damage photos live. The local implementation
// keeps files on disk for single-node deployments; a cloud-backed one can
// be swapped in without touching the services.
type Interface interface {
	// Upload stores the file under key and returns the number of bytes written.
	Upload(ctx context.Context, key string, r io.Reader) (int64, error)

	// Delete removes the underlying file. Photo rows are soft-deleted
	// separately; file removal is best-effort cleanup.
	Delete(ctx context.Context, key string) error

	// SecureURL returns a signed, expiring download URL for key.
	SecureURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

// Validator holds the upload pre-checks applied before any bytes are stored.
type Validator struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

func (v Validator) ValidateType(contentType string) error {
	for _, t := range v.AllowedTypes {
		if t == contentType {
			return nil
		}
	}
	return domain.NewValidationError("content type %s is not allowed for damage photos", contentType)
}

func (v Validator) ValidateSize(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return domain.NewValidationError("photo is empty")
	}
	if sizeBytes > v.MaxSizeBytes {
		return domain.NewValidationError("photo exceeds the maximum size of %d bytes", v.MaxSizeBytes)
	}
	return nil
}
