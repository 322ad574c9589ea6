package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// placeLinkMatcher selects anchors pointing at individual place pages. It is
// compiled once; link harvesting runs on every scroll iteration.
var placeLinkMatcher = cascadia.MustCompile(`a[href*="/maps/place/"]`)

// endOfListMarkers are the feed footer texts the service renders when no
// further results exist. Matched as substrings of the whole document text.
var endOfListMarkers = []string{
	"You've reached the end of the list.",
	"Das Ende der Liste ist erreicht.",
}

// PlaceLinks harvests all place-page links under root, resolved against base,
// deduplicated in first-seen order. Only absolute http(s) links survive.
func PlaceLinks(root *goquery.Selection, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	root.FindMatcher(placeLinkMatcher).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		abs := resolveLink(base, href)
		if abs == "" {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// HasEndOfListMarker reports whether the rendered page carries an end-of-list
// footer in a recognized locale.
func HasEndOfListMarker(doc *goquery.Document) bool {
	text := doc.Text()
	for _, marker := range endOfListMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// outboundScanLimit caps the generic hyperlink scan. The interesting link is
// near the top of the details panel; scanning further only finds footer junk.
const outboundScanLimit = 20

// OutboundWebsite finds the first external hyperlink on a place page,
// skipping the mapping host and its static-asset domain. This is the last
// tier of website resolution when labeled selectors find nothing.
func OutboundWebsite(doc *goquery.Document) (string, bool) {
	var site string
	scanned := 0
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		scanned++
		if scanned > outboundScanLimit {
			return false
		}
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		host := strings.ToLower(u.Hostname())
		if strings.HasSuffix(host, "google.com") || strings.HasSuffix(host, "gstatic.com") {
			return true
		}
		site = href
		return false
	})
	return site, site != ""
}
