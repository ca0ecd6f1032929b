// Package image keeps local copies of upstream product images.
package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Dir       string
	PublicURL string // prefix the files are served under
	Timeout   time.Duration
}

type LocalStore struct {
	dir       string
	publicURL string
	http      *http.Client
}

func NewLocalStore(cfg *Config) *LocalStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LocalStore{
		dir:       cfg.Dir,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

// Resolve downloads sourceURL to <dir>/<externalID>.jpg unless the file is
// already there, and returns the public URL of the file.
func (s *LocalStore) Resolve(ctx context.Context, sourceURL, externalID string) (string, error) {
	if externalID == "" || strings.ContainsAny(externalID, `/\`) {
		return "", fmt.Errorf("invalid product id %q", externalID)
	}
	name := externalID + ".jpg"
	path := filepath.Join(s.dir, name)
	public := s.publicURL + "/" + name

	if _, err := os.Stat(path); err == nil {
		return public, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	// A partial download must never sit at path.
	tmp, err := os.CreateTemp(s.dir, name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return public, nil
}
