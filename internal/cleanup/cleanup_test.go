package cleanup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeImageSource struct {
	urls []string
	err  error
}

func (f *fakeImageSource) ImageURLs() ([]string, error) {
	return f.urls, f.err
}

// writeUpload creates a file under dir/properties with the given mod time.
func writeUpload(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	sub := filepath.Join(dir, "properties")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(sub, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweepDeletesOrphans(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -30)

	kept := writeUpload(t, dir, "kept.jpg", old)
	orphan := writeUpload(t, dir, "orphan.jpg", old)

	src := &fakeImageSource{urls: []string{"/uploads/properties/kept.jpg"}}
	svc := NewService(src, dir, "/uploads")

	result, err := svc.Sweep(SweepConfig{RetentionDays: 7, MaxDeletionCount: 100})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.ScannedCount != 2 {
		t.Errorf("scanned = %d, want 2", result.ScannedCount)
	}
	if result.OrphanCount != 1 || result.DeletedCount != 1 {
		t.Errorf("orphans = %d deleted = %d, want 1/1", result.OrphanCount, result.DeletedCount)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("orphan file should be deleted")
	}
	if _, err := os.Stat(kept); err != nil {
		t.Error("referenced file must survive the sweep")
	}
}

func TestSweepRetentionWindow(t *testing.T) {
	dir := t.TempDir()
	fresh := writeUpload(t, dir, "fresh.jpg", time.Now().Add(-time.Hour))

	svc := NewService(&fakeImageSource{}, dir, "/uploads")
	result, err := svc.Sweep(SweepConfig{RetentionDays: 7, MaxDeletionCount: 100})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.OrphanCount != 0 {
		t.Errorf("orphans = %d, fresh files must be kept", result.OrphanCount)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh unreferenced file must survive the retention window")
	}
}

func TestSweepDryRun(t *testing.T) {
	dir := t.TempDir()
	orphan := writeUpload(t, dir, "orphan.jpg", time.Now().AddDate(0, 0, -30))

	svc := NewService(&fakeImageSource{}, dir, "/uploads")
	result, err := svc.Sweep(SweepConfig{RetentionDays: 7, MaxDeletionCount: 100, DryRun: true})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.DeletedCount != 1 || !result.DryRun {
		t.Errorf("dry-run result = %+v", result)
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Error("dry-run must not delete files")
	}
}

func TestSweepSafetyLimit(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -30)
	first := writeUpload(t, dir, "a.jpg", old)
	second := writeUpload(t, dir, "b.jpg", old)

	svc := NewService(&fakeImageSource{}, dir, "/uploads")
	if _, err := svc.Sweep(SweepConfig{RetentionDays: 7, MaxDeletionCount: 1}); err == nil {
		t.Fatal("expected safety check error when orphans exceed the limit")
	}

	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); err != nil {
			t.Error("no file may be deleted when the safety check fails")
		}
	}
}

func TestSweepRemoteURLsIgnored(t *testing.T) {
	dir := t.TempDir()
	orphan := writeUpload(t, dir, "local.jpg", time.Now().AddDate(0, 0, -30))

	src := &fakeImageSource{urls: []string{"https://imagedelivery.example/abc/public"}}
	svc := NewService(src, dir, "/uploads")

	result, err := svc.Sweep(SweepConfig{RetentionDays: 7, MaxDeletionCount: 100})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.DeletedCount != 1 {
		t.Errorf("deleted = %d, remote URLs must not shield local files", result.DeletedCount)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("unreferenced local file should be deleted")
	}
}

func TestSweepMissingUploadDir(t *testing.T) {
	svc := NewService(&fakeImageSource{}, filepath.Join(t.TempDir(), "missing"), "/uploads")
	result, err := svc.Sweep(DefaultSweepConfig())
	if err != nil {
		t.Fatalf("Sweep of a missing dir must not fail: %v", err)
	}
	if result.ScannedCount != 0 || result.OrphanCount != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestSweepImageSourceError(t *testing.T) {
	src := &fakeImageSource{err: errors.New("db down")}
	svc := NewService(src, t.TempDir(), "/uploads")
	if _, err := svc.Sweep(DefaultSweepConfig()); err == nil {
		t.Fatal("expected error when referenced URLs cannot be loaded")
	}
}
