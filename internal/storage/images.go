// Package storage keeps uploaded product images on disk and hands out the
// public URL paths they are served under.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ImageStore writes files under dir; the router serves dir at publicPrefix.
type ImageStore struct {
	dir          string
	publicPrefix string
}

// NewImageStore creates dir when missing.
func NewImageStore(dir, publicPrefix string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload folder: %w", err)
	}
	return &ImageStore{dir: dir, publicPrefix: publicPrefix}, nil
}

// Dir is the on-disk root, for wiring the static route.
func (s *ImageStore) Dir() string { return s.dir }

// PublicPrefix is the URL path the router mounts the directory at.
func (s *ImageStore) PublicPrefix() string { return s.publicPrefix }

// Save stores the upload under a random name keeping the original extension,
// and returns the public URL path.
func (s *ImageStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return "", fmt.Errorf("validation: unsupported image extension %q", ext)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	name := id.String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path.Join(s.publicPrefix, name), nil
}

// Remove deletes a previously saved image by its public URL path. Unknown
// paths are ignored.
func (s *ImageStore) Remove(publicURL string) error {
	name := path.Base(publicURL)
	if name == "." || name == "/" || !strings.HasPrefix(publicURL, s.publicPrefix) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
