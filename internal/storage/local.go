package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage stores damage photos on the local filesystem and signs
// download URLs served by the application's own file endpoint.
type LocalStorage struct {
	baseURL   string
	uploadDir string
	secret    []byte
}

func NewLocalStorage(baseURL, uploadDir, urlSecret string) (*LocalStorage, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		baseURL:   baseURL,
		uploadDir: uploadDir,
		secret:    []byte(urlSecret),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, r io.Reader) (int64, error) {
	path := filepath.Join(s.uploadDir, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create photo directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create photo file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("failed to write photo file: %w", err)
	}
	return n, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.uploadDir, filepath.Clean(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo file: %w", err)
	}
	return nil
}

func (s *LocalStorage) SecureURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	expires := time.Now().Add(expiresIn).Unix()
	sig := s.sign(key, expires)
	return fmt.Sprintf("%s/api/v1/files/%s?expires=%d&sig=%s", s.baseURL, key, expires, sig), nil
}

// VerifyURL checks the signature and expiry produced by SecureURL. Used by
// the file-serving endpoint.
func (s *LocalStorage) VerifyURL(key string, expires int64, sig string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(s.sign(key, expires)))
}

// Open returns the stored file for streaming to a verified download.
func (s *LocalStorage) Open(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.uploadDir, filepath.Clean(key)))
}

func (s *LocalStorage) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
