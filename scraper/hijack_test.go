package scraper

import "testing"

func TestIsTrackerDomain(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"google-analytics.com", true},
		{"www.google-analytics.com", true},
		{"pagead2.googlesyndication.com", true},
		{"www.google.com", false},
		{"cafemocha.example", false},
	}
	for _, tc := range cases {
		if got := isTrackerDomain(tc.host); got != tc.want {
			t.Errorf("isTrackerDomain(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}
