// Package extract turns Google Maps page markup into place records.
//
// The primary path locates the APP_INITIALIZATION_STATE blob embedded in the
// page HTML and reads fields out of it by position. The blob's encoding has
// been observed in several shapes (a direct array, an anti-hijacking-prefixed
// JSON string, a plain JSON string) and its layout shifts between
// deployments, so parsing is deliberately tolerant: every tier that fails
// hands over to the next, and a final shape-based scan recovers a plausible
// payload when the fixed offsets stop working.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/use-agent/mapscout/jsonval"
)

// antiHijackPrefix is the token Google prepends to some embedded JSON strings
// to block naive eval-style parsing. It must be stripped before decoding.
const antiHijackPrefix = ")]}'\n"

// stateRe isolates the text between the application-state assignment and the
// flags assignment that always follows it. (?s) lets the blob span newlines.
var stateRe = regexp.MustCompile(`(?s);window\.APP_INITIALIZATION_STATE\s*=\s*(.*?);window\.APP_FLAGS`)

var (
	// ErrStateNotFound means the marker pair is absent from the markup.
	ErrStateNotFound = errors.New("app initialization state not found in markup")

	// ErrMalformedState means the located text does not look like JSON.
	ErrMalformedState = errors.New("located state text does not start with [ or {")

	// ErrStateDecode means the located text (or a nested payload string)
	// is not valid JSON.
	ErrStateDecode = errors.New("state text is not valid JSON")

	// ErrStructureMismatch means the decoded state holds no recognizable
	// place payload in any known encoding.
	ErrStructureMismatch = errors.New("no place payload found in decoded state")
)

// LocateState finds the embedded application-state text in raw page markup.
func LocateState(markup string) (string, error) {
	m := stateRe.FindStringSubmatch(markup)
	if m == nil {
		return "", ErrStateNotFound
	}
	text := m[1]
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return "", ErrMalformedState
	}
	return text, nil
}

// ParseState decodes located state text and navigates it to the payload blob:
// the array holding one place's positional fields.
//
// Known encodings, tried in order:
//  1. root[3][6] is the payload array itself (legacy format).
//  2. root[3][6] is a string carrying the anti-hijacking prefix; the
//     remainder decodes to an array whose offset 6 holds the payload.
//  3. root[3][6] is a plain JSON string; same offset-6 rule.
//
// When offset 6 of a decoded inner array is not itself an array, a heuristic
// shape scan over the inner array recovers a plausible payload instead.
func ParseState(text string) (jsonval.Value, error) {
	root, err := jsonval.Decode(text)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}

	x, ok := root.At(3, 6)
	if !ok {
		return jsonval.Value{}, ErrStructureMismatch
	}

	switch x.Kind() {
	case jsonval.KindArray:
		return x, nil

	case jsonval.KindString:
		s, _ := x.Str()
		if strings.HasPrefix(s, antiHijackPrefix) {
			return parseInner(strings.TrimPrefix(s, antiHijackPrefix))
		}
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			return parseInner(trimmed)
		}
		return jsonval.Value{}, ErrStructureMismatch

	default:
		return jsonval.Value{}, ErrStructureMismatch
	}
}

// parseInner decodes a nested payload string and extracts the payload blob
// from it, falling back to the heuristic scan.
func parseInner(text string) (jsonval.Value, error) {
	actual, err := jsonval.Decode(text)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}
	if actual.Kind() != jsonval.KindArray {
		return jsonval.Value{}, ErrStructureMismatch
	}
	if el, ok := actual.Index(6); ok && el.Kind() == jsonval.KindArray {
		return el, nil
	}
	if blob, ok := scanForPayload(actual); ok {
		return blob, nil
	}
	return jsonval.Value{}, ErrStructureMismatch
}

// scanForPayload scans a candidate array for the first element that looks
// like a place payload by shape: an array of length >= 10 containing at
// least 3 nested arrays or objects. This trades precision for availability
// when the upstream encoding shifts.
func scanForPayload(candidate jsonval.Value) (jsonval.Value, bool) {
	for _, el := range candidate.Elems() {
		if el.Kind() != jsonval.KindArray || el.Len() < 10 {
			continue
		}
		nested := 0
		for _, sub := range el.Elems() {
			if k := sub.Kind(); k == jsonval.KindArray || k == jsonval.KindObject {
				nested++
			}
		}
		if nested >= 3 {
			return el, true
		}
	}
	return jsonval.Value{}, false
}
