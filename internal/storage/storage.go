// Package storage stores uploaded images on disk and hands back publicly
// retrievable URLs. The API server serves the base directory statically.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ImageStore writes image content under basePath and returns URLs rooted at
// baseURL.
type ImageStore struct {
	basePath string
	baseURL  string
}

// NewImageStore creates an ImageStore and ensures the base directory
// exists. baseURL is the public prefix the files are served under, e.g.
// "http://localhost:8080/images".
func NewImageStore(basePath, baseURL string) (*ImageStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ImageStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// BasePath returns the directory files are written to.
func (s *ImageStore) BasePath() string {
	return s.basePath
}

// Save writes data to bucket/name and returns its public URL. The name is
// sanitized to its base component so callers cannot escape the bucket.
func (s *ImageStore) Save(data []byte, bucket, name string) (string, error) {
	bucket = path.Base(path.Clean("/" + bucket))
	name = path.Base(path.Clean("/" + name))
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("invalid image name %q", name)
	}

	dir := filepath.Join(s.basePath, bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create bucket directory %s: %w", bucket, err)
	}

	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, name), nil
}
