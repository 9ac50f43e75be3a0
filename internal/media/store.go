// Package media stores uploaded images as opaque blobs under a fixed content
// root. Posts reference them by relative path only; no other binary format is
// involved.
package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"plume/internal/models"

	"github.com/google/uuid"
)

// postsDir is the subdirectory post images land in.
const postsDir = "posts"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes and removes image blobs under a content root.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root, creating the directory tree if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, postsDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating media root: %w", err)
	}
	return &Store{root: root}, nil
}

// SavePostImage sniffs the payload's content type, stores it under a fresh
// name and returns the relative path a Post should reference.
func (s *Store) SavePostImage(r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", models.NewValidationError(fmt.Sprintf("Unsupported image type %q", contentType))
	}

	rel := filepath.Join(postsDir, uuid.NewString()+ext)
	abs := filepath.Join(s.root, rel)

	f, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// A half-written blob must not outlive a failed save.
	if _, err := f.Write(head); err != nil {
		os.Remove(abs)
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(abs)
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// Remove deletes a stored blob. A missing file is not an error; the record is
// the source of truth and the blob may already be gone.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return models.NewValidationError("Invalid media path")
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Root returns the content root, for serving the files statically.
func (s *Store) Root() string {
	return s.root
}
