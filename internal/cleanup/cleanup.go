package cleanup

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageSource lists every image URL currently referenced by a listing.
type ImageSource interface {
	ImageURLs() ([]string, error)
}

// Service deletes local upload files that no listing references anymore.
// Only the local storage backend produces files to sweep.
type Service struct {
	images      ImageSource
	uploadDir   string
	routePrefix string
}

// NewService creates a new sweep service
func NewService(images ImageSource, uploadDir, routePrefix string) *Service {
	return &Service{
		images:      images,
		uploadDir:   uploadDir,
		routePrefix: routePrefix,
	}
}

// SweepConfig holds configuration for sweep operations
type SweepConfig struct {
	RetentionDays    int  // Minimum age before an orphan file may be deleted
	MaxDeletionCount int  // Maximum number of files to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted
}

// DefaultSweepConfig returns default configuration
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		RetentionDays:    7,
		MaxDeletionCount: 1000,
		DryRun:           false,
	}
}

// SweepResult holds the result of a sweep operation
type SweepResult struct {
	ScannedCount int       `json:"scanned_count"` // Files examined under the upload dir
	OrphanCount  int       `json:"orphan_count"`  // Files with no referencing listing
	DeletedCount int       `json:"deleted_count"` // Files actually deleted
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedFiles []string  `json:"deleted_files"`
	Errors       []string  `json:"errors,omitempty"`
}

// Sweep walks the upload directory and deletes files that are not referenced
// by any property image and are older than the retention window.
func (s *Service) Sweep(cfg SweepConfig) (*SweepResult, error) {
	result := &SweepResult{
		DryRun:     cfg.DryRun,
		ExecutedAt: time.Now(),
	}

	referenced, err := s.referencedFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load referenced image URLs: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	orphans, scanned, err := s.findOrphans(referenced, cutoff)
	if err != nil {
		return nil, err
	}
	result.ScannedCount = scanned
	result.OrphanCount = len(orphans)

	if len(orphans) == 0 {
		log.Println("[Sweep] No orphaned upload files found")
		return result, nil
	}

	// Safety check: abort if too many files would be deleted
	if len(orphans) > cfg.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d orphans exceed max deletion limit of %d",
			len(orphans), cfg.MaxDeletionCount)
	}

	log.Printf("[Sweep] %d orphaned files of %d scanned (retention: %d days, dry-run: %v)",
		len(orphans), scanned, cfg.RetentionDays, cfg.DryRun)

	for _, path := range orphans {
		if cfg.DryRun {
			log.Printf("[Sweep] [DRY-RUN] Would delete %s", path)
			result.DeletedFiles = append(result.DeletedFiles, path)
			result.DeletedCount++
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		result.DeletedFiles = append(result.DeletedFiles, path)
		result.DeletedCount++
	}

	log.Printf("[Sweep] Completed: %d/%d deleted (dry-run: %v)",
		result.DeletedCount, result.OrphanCount, cfg.DryRun)
	return result, nil
}

// referencedFiles maps locally-served image URLs to the files backing them.
// Remote URLs have no local file and are skipped.
func (s *Service) referencedFiles() (map[string]bool, error) {
	urls, err := s.images.ImageURLs()
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(urls))
	prefix := s.routePrefix + "/"
	for _, u := range urls {
		if strings.HasPrefix(u, prefix) {
			rel := filepath.FromSlash(strings.TrimPrefix(u, prefix))
			referenced[filepath.Join(s.uploadDir, rel)] = true
		}
	}
	return referenced, nil
}

// findOrphans returns upload files that are unreferenced and older than the
// cutoff, plus the total number of files scanned.
func (s *Service) findOrphans(referenced map[string]bool, cutoff time.Time) ([]string, int, error) {
	var orphans []string
	scanned := 0

	err := filepath.WalkDir(s.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.uploadDir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		scanned++
		if referenced[path] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		// Fresh files may belong to an in-flight form submission.
		if info.ModTime().After(cutoff) {
			return nil
		}
		orphans = append(orphans, path)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to walk upload dir: %w", err)
	}
	return orphans, scanned, nil
}
