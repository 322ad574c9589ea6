package models

import (
	"encoding/json"
	"testing"
)

func TestSearchRequestDecode(t *testing.T) {
	var req SearchRequest
	// Older callers may still send a headless key; it is ignored.
	body := `{"query": "pizza", "max_places": 5, "headless": false}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if req.Query != "pizza" || req.MaxPlaces != 5 {
		t.Errorf("decoded request = %+v", req)
	}

	req.Defaults()
	if req.Language != "en" {
		t.Errorf("default language = %q, want en", req.Language)
	}
	if req.MaxPlaces != 5 {
		t.Errorf("Defaults changed MaxPlaces to %d", req.MaxPlaces)
	}
}
