package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cybernetics669/nadlan-website/internal/config"
)

// Saver stores an uploaded file and returns the URL it is publicly served
// from. Two implementations exist: local disk and the remote image host.
type Saver interface {
	Save(filename string, r io.Reader, subdir string) (string, error)
}

// New selects the storage backend: remote image hosting when both account id
// and API token are configured, local disk otherwise.
func New(cfg *config.UploadsConfig) Saver {
	if cfg.HasImageHost() {
		return NewImageHostSaver(cfg.ImageHost)
	}
	return NewLocalSaver(cfg.Dir, cfg.RoutePrefix())
}

// LocalSaver writes uploads to disk under a configured directory and serves
// them from a root-relative route.
type LocalSaver struct {
	dir         string
	routePrefix string
}

func NewLocalSaver(dir, routePrefix string) *LocalSaver {
	return &LocalSaver{dir: dir, routePrefix: routePrefix}
}

// Save writes the file under dir/subdir with a collision-resistant name and
// returns its root-relative URL path.
func (s *LocalSaver) Save(filename string, r io.Reader, subdir string) (string, error) {
	dir := filepath.Join(s.dir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name, err := generateFilename(filename)
	if err != nil {
		return "", fmt.Errorf("failed to generate upload filename: %w", err)
	}
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return s.routePrefix + "/" + subdir + "/" + name, nil
}

// generateFilename builds a timestamp + random-suffix name, keeping the
// source extension and defaulting to .jpg when there is none.
func generateFilename(original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext), nil
}
