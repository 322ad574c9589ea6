package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/use-agent/mapscout/jsonval"
)

func wrapMarkup(state string) string {
	return fmt.Sprintf(`<html><head><script>
;window.APP_INITIALIZATION_STATE=%s;window.APP_FLAGS=[1,2,3];
</script></head><body></body></html>`, state)
}

func TestLocateState(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		text, err := LocateState(wrapMarkup(`[[1,2],[3,4]]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "[[1,2],[3,4]]" {
			t.Errorf("got %q", text)
		}
	})

	t.Run("missing markers", func(t *testing.T) {
		_, err := LocateState(`<html><body>nothing here</body></html>`)
		if !errors.Is(err, ErrStateNotFound) {
			t.Errorf("want ErrStateNotFound, got %v", err)
		}
	})

	t.Run("malformed start", func(t *testing.T) {
		_, err := LocateState(wrapMarkup(`function(){}`))
		if !errors.Is(err, ErrMalformedState) {
			t.Errorf("want ErrMalformedState, got %v", err)
		}
	})

	t.Run("spans newlines", func(t *testing.T) {
		text, err := LocateState(wrapMarkup("[[1,\n2],\n[3]]"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "[[1,\n2],\n[3]]" {
			t.Errorf("got %q", text)
		}
	})
}

// stateRoot builds a minimal root array whose [3][6] is x.
func stateRoot(t *testing.T, x any) string {
	t.Helper()
	root := []any{nil, nil, nil, []any{nil, nil, nil, nil, nil, nil, x}}
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestParseStateLegacyArray(t *testing.T) {
	payload := []any{"a", "b", "c"}
	blob, err := ParseState(stateRoot(t, payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob.Len() != 3 {
		t.Errorf("payload length = %d, want 3", blob.Len())
	}
	if s, _ := mustIndex(t, blob, 0).Str(); s != "a" {
		t.Errorf("payload[0] = %q, want a", s)
	}
}

func TestParseStatePrefixedString(t *testing.T) {
	inner := []any{0, 1, 2, 3, 4, 5, []any{"n0", "n1"}}
	innerJSON, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := ParseState(stateRoot(t, ")]}'\n"+string(innerJSON)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, _ := mustIndex(t, blob, 1).Str(); s != "n1" {
		t.Errorf("payload[1] = %q, want n1", s)
	}
}

func TestParseStatePlainJSONString(t *testing.T) {
	inner := []any{0, 1, 2, 3, 4, 5, []any{"plain"}}
	innerJSON, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := ParseState(stateRoot(t, string(innerJSON)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, _ := mustIndex(t, blob, 0).Str(); s != "plain" {
		t.Errorf("payload[0] = %q, want plain", s)
	}
}

func TestParseStateMismatches(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"root too short", `[1,2]`},
		{"slot is number", stateRoot(t, 42)},
		{"slot is freeform string", stateRoot(t, "hello world")},
		{"inner is object", stateRoot(t, `{"k":"v"}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseState(tc.text)
			if !errors.Is(err, ErrStructureMismatch) {
				t.Errorf("want ErrStructureMismatch, got %v", err)
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseState(`[1,2,`)
		if !errors.Is(err, ErrStateDecode) {
			t.Errorf("want ErrStateDecode, got %v", err)
		}
	})

	t.Run("invalid inner json", func(t *testing.T) {
		_, err := ParseState(stateRoot(t, ")]}'\n[broken"))
		if !errors.Is(err, ErrStateDecode) {
			t.Errorf("want ErrStateDecode, got %v", err)
		}
	})
}

func TestScanForPayloadDeterminism(t *testing.T) {
	// The candidate at index 2 is too short and too flat; the one at
	// index 5 qualifies and must win.
	weak := []any{[]any{1}, 2, 3, 4, 5}
	strong := []any{[]any{1}, []any{2}, map[string]any{"k": 1}, []any{3}, 5, 6, 7, 8, 9, 10, 11, 12}
	inner := []any{0, 1, weak, 3, 4, strong, "not-an-array"}
	innerJSON, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}

	blob, err := ParseState(stateRoot(t, ")]}'\n"+string(innerJSON)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob.Len() != 12 {
		t.Errorf("scan picked length-%d candidate, want the length-12 one", blob.Len())
	}
}

func TestScanForPayloadNoCandidate(t *testing.T) {
	inner := []any{0, 1, []any{1, 2, 3}, "x"}
	innerJSON, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ParseState(stateRoot(t, ")]}'\n"+string(innerJSON)))
	if !errors.Is(err, ErrStructureMismatch) {
		t.Errorf("want ErrStructureMismatch, got %v", err)
	}
}

func TestParseStateIdempotent(t *testing.T) {
	text := stateRoot(t, []any{"a", []any{1.5}, nil})
	first, err := ParseState(text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseState(text)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("parsing identical text twice should yield equal payloads")
	}
}

func mustIndex(t *testing.T, v jsonval.Value, i int) jsonval.Value {
	t.Helper()
	el, ok := v.Index(i)
	if !ok {
		t.Fatalf("index %d out of range", i)
	}
	return el
}
