package scraper

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/extract"
	"github.com/use-agent/mapscout/models"
)

// ErrAnchorMissing means the place heading never rendered, so the page cannot
// be read as a place page at all.
var ErrAnchorMissing = errors.New("place heading not found on rendered page")

// domExtractor reads a place record out of the rendered page. It is the
// second extraction tier, used when the embedded state yields nothing.
// Unlike the embedded-state tier it hard-requires a name: without the heading
// there is no evidence the page is a place page.
type domExtractor struct {
	cfg    config.ScraperConfig
	logger *slog.Logger
}

const headingSelector = `h1, [role="heading"][aria-level="1"]`

func (e *domExtractor) extract(page *rod.Page) (models.PlaceRecord, error) {
	heading, err := page.Timeout(e.cfg.HeadingAttachTimeout).Element(headingSelector)
	if err != nil {
		return models.PlaceRecord{}, ErrAnchorMissing
	}
	// The element often attaches before its text streams in. The wait is
	// best-effort; headingName decides from the parsed markup.
	waitForText(heading.CancelTimeout(), e.cfg.HeadingTextTimeout)

	doc, err := pageDocument(page)
	if err != nil {
		return models.PlaceRecord{}, err
	}
	name, ok := headingName(doc)
	if !ok {
		return models.PlaceRecord{}, ErrAnchorMissing
	}
	rec := recordFromDocument(doc, name)
	e.logger.Debug("rendered-page extraction", "name", name)
	return rec, nil
}

func waitForText(heading *rod.Element, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for {
		text, err := heading.Text()
		if err == nil && strings.TrimSpace(text) != "" {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// headingName resolves the place name: the main heading's text, a nested
// text-bearing child, or a level-1 heading-role element, whichever yields a
// plausible (longer than 2 characters) value first.
func headingName(doc *goquery.Document) (string, bool) {
	plausible := func(selector string) func() (string, bool) {
		return func() (string, bool) {
			v, ok := itemText(doc, selector)
			return v, ok && len(v) > 2
		}
	}
	return extract.First(
		plausible("h1"),
		plausible("h1 span"),
		plausible(`[role="heading"][aria-level="1"]`),
	)
}

// recordFromDocument assembles a record from the rendered markup. Each field
// runs its preference-ordered strategy tiers; implausible values make a tier
// miss rather than producing a bad field.
func recordFromDocument(doc *goquery.Document, name string) models.PlaceRecord {
	rec := models.PlaceRecord{Name: name}

	plausibleAddr := func(try func() (string, bool)) func() (string, bool) {
		return func() (string, bool) {
			v, ok := try()
			return v, ok && len(v) > 5
		}
	}
	if addr, ok := extract.First(
		plausibleAddr(func() (string, bool) { return itemText(doc, `button[data-item-id="address"]`) }),
		plausibleAddr(func() (string, bool) { return itemText(doc, `div[data-item-id="address"]`) }),
		plausibleAddr(func() (string, bool) { return labeledValue(doc, "Address:", "Adresse:") }),
	); ok {
		rec.Address = addr
	}

	plausibleSite := func(try func() (string, bool)) func() (string, bool) {
		return func() (string, bool) {
			v, ok := try()
			return v, ok && isAbsoluteURL(v)
		}
	}
	if site, ok := extract.First(
		plausibleSite(func() (string, bool) { return itemHref(doc, `a[data-item-id="authority"]`) }),
		plausibleSite(func() (string, bool) { return labeledValue(doc, "Website:") }),
		func() (string, bool) { return extract.OutboundWebsite(doc) },
	); ok {
		rec.Website = site
	}

	normalized := func(try func() (string, bool)) func() (string, bool) {
		return func() (string, bool) {
			v, ok := try()
			if !ok {
				return "", false
			}
			return extract.NormalizePhone(v)
		}
	}
	if phone, ok := extract.First(
		normalized(func() (string, bool) { return itemText(doc, `button[data-item-id*="phone"]`) }),
		normalized(func() (string, bool) { return labeledValue(doc, "Phone:", "Telefon:") }),
	); ok {
		rec.Phone = phone
	}

	if rating, ok := extract.RatingFromLabels(doc); ok {
		rec.Rating = &rating
	}
	if count, ok := extract.ReviewsFromLabels(doc); ok {
		rec.ReviewsCount = &count
	}

	return rec
}

func itemText(doc *goquery.Document, selector string) (string, bool) {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	return text, text != ""
}

func itemHref(doc *goquery.Document, selector string) (string, bool) {
	href, ok := doc.Find(selector).First().Attr("href")
	href = strings.TrimSpace(href)
	return href, ok && href != ""
}

// labeledValue scans accessible labels for one starting with a known field
// prefix and returns the remainder, e.g. "Address: 1 Main St" -> "1 Main St".
func labeledValue(doc *goquery.Document, prefixes ...string) (string, bool) {
	var value string
	doc.Find("[aria-label]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		label, _ := sel.Attr("aria-label")
		for _, prefix := range prefixes {
			if rest, found := strings.CutPrefix(label, prefix); found {
				if trimmed := strings.TrimSpace(rest); trimmed != "" {
					value = trimmed
					return false
				}
			}
		}
		return true
	})
	return value, value != ""
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
