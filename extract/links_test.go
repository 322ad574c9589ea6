package extract

import (
	"net/url"
	"reflect"
	"testing"
)

func TestPlaceLinks(t *testing.T) {
	base, _ := url.Parse("https://www.google.com/maps/search/coffee")
	html := `<div role="feed">
		<a href="https://www.google.com/maps/place/Cafe+Mocha/data=1"></a>
		<a href="/maps/place/Bean+There/data=2"></a>
		<a href="https://www.google.com/maps/place/Cafe+Mocha/data=1"></a>
		<a href="https://www.google.com/maps/contrib/123"></a>
		<a href="javascript:void(0)"></a>
	</div>`
	doc := docFrom(t, html)

	links := PlaceLinks(doc.Selection, base)
	want := []string{
		"https://www.google.com/maps/place/Cafe+Mocha/data=1",
		"https://www.google.com/maps/place/Bean+There/data=2",
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links = %v, want %v", links, want)
	}
}

func TestPlaceLinksDedupAcrossIterations(t *testing.T) {
	base, _ := url.Parse("https://www.google.com/maps/search/x")
	html := `<div>
		<a href="/maps/place/A"></a>
		<a href="/maps/place/B"></a>
	</div>`
	doc := docFrom(t, html)

	// A discovery loop re-harvests the same DOM each scroll iteration and
	// merges; distinct URL count must stay constant.
	set := make(map[string]struct{})
	var merged []string
	for i := 0; i < 3; i++ {
		for _, l := range PlaceLinks(doc.Selection, base) {
			if _, dup := set[l]; dup {
				continue
			}
			set[l] = struct{}{}
			merged = append(merged, l)
		}
	}
	if len(merged) != 2 {
		t.Errorf("merged %d links, want 2 distinct", len(merged))
	}
}

func TestHasEndOfListMarker(t *testing.T) {
	withMarker := docFrom(t, `<div><span>You've reached the end of the list.</span></div>`)
	if !HasEndOfListMarker(withMarker) {
		t.Error("english marker not detected")
	}

	german := docFrom(t, `<div><span>Das Ende der Liste ist erreicht.</span></div>`)
	if !HasEndOfListMarker(german) {
		t.Error("german marker not detected")
	}

	without := docFrom(t, `<div><span>more results below</span></div>`)
	if HasEndOfListMarker(without) {
		t.Error("marker falsely detected")
	}
}

func TestOutboundWebsite(t *testing.T) {
	html := `<div>
		<a href="https://www.google.com/maps/place/X"></a>
		<a href="https://maps.gstatic.com/icon.png"></a>
		<a href="/relative/link"></a>
		<a href="https://cafemocha.example/menu"></a>
		<a href="https://another.example"></a>
	</div>`
	site, ok := OutboundWebsite(docFrom(t, html))
	if !ok || site != "https://cafemocha.example/menu" {
		t.Errorf("got (%q, %v)", site, ok)
	}
}

func TestOutboundWebsiteNone(t *testing.T) {
	html := `<div>
		<a href="https://www.google.com/maps"></a>
		<a href="https://www.gstatic.com/x"></a>
	</div>`
	if site, ok := OutboundWebsite(docFrom(t, html)); ok {
		t.Errorf("unexpected website %q", site)
	}
}
