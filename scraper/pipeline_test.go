package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/diag"
)

func TestSearchURL(t *testing.T) {
	raw := SearchURL("coffee & cake in Berlin", "de")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("not a valid URL: %v", err)
	}
	if u.Path != "/maps/search/" {
		t.Errorf("path = %q", u.Path)
	}
	q := u.Query()
	if q.Get("q") != "coffee & cake in Berlin" {
		t.Errorf("q = %q", q.Get("q"))
	}
	if q.Get("hl") != "de" {
		t.Errorf("hl = %q", q.Get("hl"))
	}

	noLang := SearchURL("pizza", "")
	if u, _ := url.Parse(noLang); u.Query().Has("hl") {
		t.Error("empty language should not emit an hl parameter")
	}
}

func TestResolveMaxPlaces(t *testing.T) {
	tests := []struct {
		name       string
		requested  int
		configured int
		want       int
	}{
		{"request wins", 5, 20, 5},
		{"configured fallback", 0, 20, 20},
		{"both unset means unbounded", 0, 0, 0},
		{"negative request falls through", -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveMaxPlaces(tt.requested, tt.configured); got != tt.want {
				t.Errorf("resolveMaxPlaces(%d, %d) = %d, want %d",
					tt.requested, tt.configured, got, tt.want)
			}
		})
	}

	// An omitted request maximum must not be capped out of the box.
	if def := config.Load().Discovery.DefaultMaxPlaces; def != 0 {
		t.Errorf("default DefaultMaxPlaces = %d, want 0 (unbounded)", def)
	}
}

func TestLinkPacerSpacesConsecutiveLinks(t *testing.T) {
	const delay = 20 * time.Millisecond
	pacer := newLinkPacer(delay)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	// First wait is free, the next two each wait out a full gap.
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("three paced links took %v, want at least %v", elapsed, 2*delay)
	}
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(nil, config.Load(),
		slog.New(slog.NewTextHandler(os.Stderr, nil)), diag.NopSink{})
}

// markupWithState embeds a legacy-format state whose payload carries one name.
func markupWithState(t *testing.T, payload any) string {
	t.Helper()
	root := []any{nil, nil, nil, []any{nil, nil, nil, nil, nil, nil, payload}}
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf(`<html><script>;window.APP_INITIALIZATION_STATE=%s;window.APP_FLAGS=[];</script></html>`, b)
}

func TestRecordFromMarkup(t *testing.T) {
	p := testPipeline(t)

	payload := make([]any, 12)
	payload[11] = "Cafe Mocha"
	rec, ok := p.recordFromMarkup(markupWithState(t, payload))
	if !ok {
		t.Fatal("expected a record")
	}
	if rec.Name != "Cafe Mocha" {
		t.Errorf("name = %q", rec.Name)
	}

	if _, ok := p.recordFromMarkup("<html><body>no state here</body></html>"); ok {
		t.Error("markup without embedded state must miss")
	}

	empty := make([]any, 12)
	if _, ok := p.recordFromMarkup(markupWithState(t, empty)); ok {
		t.Error("a payload with no recognizable fields must miss")
	}
}

func TestRecordFromMarkupRequireName(t *testing.T) {
	p := testPipeline(t)
	p.cfg.Extract.RequireName = true

	payload := make([]any, 12)
	payload[10] = "ChIJ123"
	if _, ok := p.recordFromMarkup(markupWithState(t, payload)); ok {
		t.Error("nameless record must be rejected when a name is required")
	}

	p.cfg.Extract.RequireName = false
	rec, ok := p.recordFromMarkup(markupWithState(t, payload))
	if !ok || rec.PlaceID != "ChIJ123" {
		t.Errorf("got (%+v, %v), want the nameless record accepted by default", rec, ok)
	}
}
