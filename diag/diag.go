// Package diag saves postmortem artifacts for failed scrapes. Artifacts are
// out-of-band: saving never affects the run's outcome, and save failures are
// logged and swallowed.
package diag

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Kind identifies the artifact type.
type Kind string

const (
	KindScreenshot Kind = "screenshot"
	KindHTML       Kind = "html"
)

func (k Kind) ext() string {
	if k == KindScreenshot {
		return "png"
	}
	return "html"
}

// Sink persists diagnostic artifacts.
type Sink interface {
	Save(kind Kind, label string, content []byte)
}

// FileSink writes artifacts to a directory as
// maps_debug_<timestamp>_<label>.<ext>.
type FileSink struct {
	Dir    string
	Logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewFileSink returns a sink writing into dir, or the system temp directory
// when dir is empty.
func NewFileSink(dir string, logger *slog.Logger) *FileSink {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{Dir: dir, Logger: logger, now: time.Now}
}

func (s *FileSink) Save(kind Kind, label string, content []byte) {
	name := fmt.Sprintf("maps_debug_%s_%s.%s", s.now().Format("20060102_150405"), label, kind.ext())
	path := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		s.Logger.Warn("diagnostic dir unavailable", "dir", s.Dir, "error", err)
		return
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		s.Logger.Warn("diagnostic artifact not saved", "path", path, "error", err)
		return
	}
	s.Logger.Info("diagnostic artifact saved", "path", path, "kind", string(kind))
}

// NopSink discards all artifacts.
type NopSink struct{}

func (NopSink) Save(Kind, string, []byte) {}
