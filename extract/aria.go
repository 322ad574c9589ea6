package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Accessible labels are the most stable DOM surface Google Maps offers: the
// visible markup is class-obfuscated and churns constantly, but the labels
// keep a recognizable "<number> stars" / "<number> reviews" shape across
// locales that share the token roots below.

var (
	ratingNumRe  = regexp.MustCompile(`(\d+[.,]\d+|\d+)`)
	reviewsNumRe = regexp.MustCompile(`([\d.,\x{00a0}\s]+)\s*(?i:review|bewertung|rezension)`)
)

// ratingTokens mark a label as rating-bearing. Lowercase substring match, so
// "stars", "Sterne" and "étoiles" all hit via their shared roots.
var ratingTokens = []string{"star", "stern", "étoile"}

// RatingFromLabels scans every labeled element for a decimal number next to a
// localized "stars" token. Values outside [0, 5] are ignored as mis-parses.
func RatingFromLabels(doc *goquery.Document) (float64, bool) {
	var rating float64
	var found bool
	doc.Find("[aria-label]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		label, _ := sel.Attr("aria-label")
		lower := strings.ToLower(label)
		if !containsAny(lower, ratingTokens) {
			return true
		}
		m := ratingNumRe.FindString(label)
		if m == "" {
			return true
		}
		v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		if err != nil || v < 0 || v > 5 {
			return true
		}
		rating, found = v, true
		return false
	})
	return rating, found
}

// ReviewsFromLabels scans every labeled element for a count next to a
// localized "reviews" token, dropping thousands separators. Zero and
// implausibly large values are rejected.
func ReviewsFromLabels(doc *goquery.Document) (int, bool) {
	var count int
	var found bool
	doc.Find("[aria-label]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		label, _ := sel.Attr("aria-label")
		m := reviewsNumRe.FindStringSubmatch(label)
		if m == nil {
			return true
		}
		digits := digitsOnly(m[1])
		if digits == "" {
			return true
		}
		v, err := strconv.Atoi(digits)
		if err != nil || v <= 0 || v >= 10_000_000 {
			return true
		}
		count, found = v, true
		return false
	})
	return count, found
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
