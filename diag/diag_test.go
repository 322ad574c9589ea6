package diag

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSinkSave(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	sink.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	sink.Save(KindScreenshot, "feed_timeout", []byte{0x89, 'P', 'N', 'G'})
	sink.Save(KindHTML, "feed_timeout", []byte("<html></html>"))

	png := filepath.Join(dir, "maps_debug_20250314_092653_feed_timeout.png")
	if _, err := os.Stat(png); err != nil {
		t.Errorf("screenshot artifact missing: %v", err)
	}
	html := filepath.Join(dir, "maps_debug_20250314_092653_feed_timeout.html")
	body, err := os.ReadFile(html)
	if err != nil {
		t.Fatalf("html artifact missing: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("html artifact content = %q", body)
	}
}

func TestFileSinkDefaultsToTempDir(t *testing.T) {
	sink := NewFileSink("", nil)
	if sink.Dir != os.TempDir() {
		t.Errorf("dir = %q, want temp dir", sink.Dir)
	}
}

func TestFileSinkSwallowsWriteFailure(t *testing.T) {
	// Pointing the sink at a path occupied by a file makes MkdirAll fail.
	dir := t.TempDir()
	occupied := filepath.Join(dir, "not_a_dir")
	if err := os.WriteFile(occupied, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	sink := NewFileSink(occupied, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	sink.Save(KindHTML, "x", []byte("y")) // must not panic
}
