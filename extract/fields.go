package extract

import (
	"strings"

	"github.com/use-agent/mapscout/jsonval"
	"github.com/use-agent/mapscout/models"
)

// phoneIconMarker appears in the icon-asset URL that precedes the phone
// number string inside the payload blob. The phone number has no stable
// position, so it is found by searching for this pattern.
const phoneIconMarker = "call_googblue"

// Positional offsets into the payload blob, reverse-engineered from observed
// snapshots. The website and thumbnail paths are best-effort: they matched
// one snapshot and are expected to drift. Every read goes through the safe
// walk, so a drifted offset degrades to an omitted field.
//
//	name           [11]
//	place_id       [10]
//	coordinates    [9][2] lat, [9][3] lon
//	address        [2] (array of parts)
//	rating         [4][7]
//	reviews_count  [4][8]
//	categories     [13]
//	website        [7][0]
//	thumbnail      [14][0][0][6][0]

// PlaceFromBlob reads all known fields out of a payload blob. Fields whose
// accessors fail are omitted; the caller decides what to do with an empty
// record.
func PlaceFromBlob(blob jsonval.Value) models.PlaceRecord {
	var rec models.PlaceRecord

	if name, ok := strAt(blob, 11); ok {
		rec.Name = name
	}
	if id, ok := strAt(blob, 10); ok {
		rec.PlaceID = id
	}
	// Both halves must resolve; a half pair is worse than no pair.
	if lat, ok := numAt(blob, 9, 2); ok {
		if lon, ok := numAt(blob, 9, 3); ok {
			rec.Coordinates = &models.Coordinates{Latitude: lat, Longitude: lon}
		}
	}
	if addr, ok := joinedAddress(blob); ok {
		rec.Address = addr
	}
	if r, ok := numAt(blob, 4, 7); ok {
		rec.Rating = &r
	}
	if n, ok := numAt(blob, 4, 8); ok {
		count := int(n)
		rec.ReviewsCount = &count
	}
	rec.Categories = categories(blob)
	if site, ok := strAt(blob, 7, 0); ok {
		rec.Website = site
	}
	if phone, ok := findPhone(blob); ok {
		rec.Phone = phone
	}
	if thumb, ok := strAt(blob, 14, 0, 0, 6, 0); ok {
		rec.Thumbnail = thumb
	}

	return rec
}

func strAt(v jsonval.Value, path ...any) (string, bool) {
	el, ok := v.At(path...)
	if !ok {
		return "", false
	}
	return el.Str()
}

func numAt(v jsonval.Value, path ...any) (float64, bool) {
	el, ok := v.At(path...)
	if !ok {
		return 0, false
	}
	return el.Num()
}

// joinedAddress joins the non-empty string parts at offset 2 with ", ".
// All-empty parts yield absent, never an empty string.
func joinedAddress(blob jsonval.Value) (string, bool) {
	parts, ok := blob.At(2)
	if !ok || parts.Kind() != jsonval.KindArray {
		return "", false
	}
	var kept []string
	for _, el := range parts.Elems() {
		if s, ok := el.Str(); ok && s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ", "), true
}

func categories(blob jsonval.Value) []string {
	list, ok := blob.At(13)
	if !ok || list.Kind() != jsonval.KindArray {
		return nil
	}
	var out []string
	for _, el := range list.Elems() {
		if s, ok := el.Str(); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// findPhone searches the whole blob depth-first for an array whose first
// element is the phone icon URL and whose second element is the phone number
// string. The first hit in traversal order wins.
func findPhone(blob jsonval.Value) (string, bool) {
	var phone string
	jsonval.Walk(blob, func(v jsonval.Value) bool {
		if v.Kind() != jsonval.KindArray || v.Len() < 2 {
			return false
		}
		first, _ := v.Index(0)
		icon, ok := first.Str()
		if !ok || !strings.Contains(icon, phoneIconMarker) {
			return false
		}
		second, _ := v.Index(1)
		raw, ok := second.Str()
		if !ok {
			return false
		}
		digits := digitsOnly(raw)
		if digits == "" {
			return false
		}
		phone = digits
		return true
	})
	return phone, phone != ""
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizePhone standardizes a phone number scraped from rendered text:
// digits plus an optional leading +. Numbers shorter than 7 digits are
// rejected as implausible.
func NormalizePhone(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	digits := digitsOnly(trimmed)
	if len(digits) < 7 {
		return "", false
	}
	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits, true
	}
	return digits, true
}
