package models

import "testing"

func TestPlaceRecordEmpty(t *testing.T) {
	var rec PlaceRecord
	if !rec.Empty() {
		t.Error("zero record should be empty")
	}

	rec.Link = "https://www.google.com/maps/place/x"
	if !rec.Empty() {
		t.Error("a record with only a source link carries no extracted fields")
	}

	rating := 4.5
	rec.Rating = &rating
	if rec.Empty() {
		t.Error("record with a rating should not be empty")
	}

	named := PlaceRecord{Name: "Cafe Mocha"}
	if named.Empty() {
		t.Error("record with a name should not be empty")
	}
}
