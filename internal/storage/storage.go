package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store keeps uploaded blobs on local disk and resolves durable public URLs
// for them. Keys look like "<user-id>/<unixnano>.<ext>"; the uploader picks
// them, the store only validates and persists.
type Store struct {
	root    string
	baseURL string
}

// New creates the storage root if needed. baseURL is the public prefix the
// blobs are served under, e.g. "/api/files".
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Upload writes the blob under key. An existing blob is never overwritten;
// keys carry a nanosecond timestamp so collisions mean a caller bug.
func (s *Store) Upload(key string, r io.Reader) (int64, error) {
	if !ValidKey(key) {
		return 0, fmt.Errorf("invalid storage key")
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("failed to write blob: %w", err)
	}

	return n, nil
}

// PublicURL resolves the durable retrieval URL for a stored key.
func (s *Store) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// ValidKey accepts slash-separated keys with non-empty segments and no path
// escapes.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return false
	}
	if path.Clean(key) != key {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
