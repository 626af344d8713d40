// Package storage is the attachment blob store. Blobs live on disk under a
// single uploads directory and are served back at /uploads/<storedFileName>.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the public retrieval path prefix for stored attachments
const URLPrefix = "/uploads/"

// Store is a disk-backed attachment store rooted at one directory
type Store struct {
	dir string
}

// NewStore creates the uploads directory if needed and returns a store
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory, used for static serving
func (s *Store) Dir() string {
	return s.dir
}

// Save streams src to disk under the given stored filename and returns the
// public retrieval URL. Stored filenames are server-generated; anything that
// looks like a path is rejected outright.
func (s *Store) Save(storedFileName string, src io.Reader) (string, error) {
	if err := checkName(storedFileName); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(s.dir, storedFileName))
	if err != nil {
		return "", fmt.Errorf("failed to create blob %s: %w", storedFileName, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write blob %s: %w", storedFileName, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to close blob %s: %w", storedFileName, err)
	}

	return URLPrefix + storedFileName, nil
}

// Remove deletes a stored blob. Used to roll back staged attachments when a
// later write in the same submission fails.
func (s *Store) Remove(storedFileName string) error {
	if err := checkName(storedFileName); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, storedFileName)); err != nil {
		return fmt.Errorf("failed to remove blob %s: %w", storedFileName, err)
	}
	return nil
}

// Path returns the on-disk location of a stored blob
func (s *Store) Path(storedFileName string) string {
	return filepath.Join(s.dir, storedFileName)
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid stored filename %q", name)
	}
	return nil
}
