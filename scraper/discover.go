package scraper

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/diag"
	"github.com/use-agent/mapscout/extract"
)

const feedSelector = `[role="feed"]`

// discoverer enumerates place links on an already-navigated search page.
//
// Three layouts are handled:
//  1. Feed layout: a scrollable result list. Scroll to the bottom, harvest,
//     repeat until the end marker shows up, the scroll extent and link set
//     both stall, or enough links are collected.
//  2. Single place page: the search redirected straight to a place; its own
//     URL is the only link.
//  3. No feed at all: wheel-scroll the whole page a bounded number of times,
//     harvesting globally.
type discoverer struct {
	cfg    config.DiscoveryConfig
	logger *slog.Logger
	sink   diag.Sink
}

func (d *discoverer) run(page *rod.Page, maxPlaces int) []string {
	feed, err := d.visibleFeed(page)
	if err == nil {
		d.logger.Info("result feed found, scrolling")
		return d.scrollFeed(page, feed, maxPlaces)
	}

	currentURL := pageURL(page)
	d.logger.Warn("result feed not found", "url", currentURL)
	if strings.Contains(currentURL, "/maps/place/") {
		d.logger.Info("search resolved to a single place page")
		return []string{currentURL}
	}

	snapshotPage(page, d.sink, "feed_not_found")
	return d.scrollGlobal(page, maxPlaces)
}

// visibleFeed waits for the results feed to attach and become visible. An
// attached but hidden feed shell is a miss: harvesting it would read an
// empty list. The returned element is detached from the wait deadline so it
// does not expire mid-scroll.
func (d *discoverer) visibleFeed(page *rod.Page) (*rod.Element, error) {
	feed, err := page.Timeout(d.cfg.FeedWaitTimeout).Element(feedSelector)
	if err != nil {
		return nil, err
	}
	if err := feed.WaitVisible(); err != nil {
		return nil, err
	}
	return feed.CancelTimeout(), nil
}

// feedProgress tracks feed-scroll termination: a changed scroll extent or a
// fresh link resets the stall counter; otherwise the loop ends once the end
// marker appears or the counter reaches its bound.
type feedProgress struct {
	maxStalls  int
	stalls     int
	lastHeight int
}

// observe reports whether scrolling should continue.
func (p *feedProgress) observe(height int, endMarker bool, added int) bool {
	if height != p.lastHeight {
		p.lastHeight = height
		p.stalls = 0
		return true
	}
	if endMarker {
		return false
	}
	if added > 0 {
		p.stalls = 0
		return true
	}
	p.stalls++
	return p.stalls < p.maxStalls
}

func (d *discoverer) scrollFeed(page *rod.Page, feed *rod.Element, maxPlaces int) []string {
	set := newLinkSet()
	prog := &feedProgress{
		maxStalls:  d.cfg.MaxStalledScrolls,
		lastHeight: elementScrollHeight(feed),
	}

	for {
		_, _ = feed.Eval(`() => { this.scrollTop = this.scrollHeight }`)
		time.Sleep(d.cfg.ScrollPause)

		doc, err := pageDocument(page)
		if err != nil {
			d.logger.Warn("feed harvest failed", "error", err)
			break
		}
		added := set.add(extract.PlaceLinks(doc.Find(feedSelector), pageBaseURL(page)))
		d.logger.Debug("feed harvest", "total", set.size(), "new", added)

		if maxPlaces > 0 && set.size() >= maxPlaces {
			d.logger.Info("link limit reached", "limit", maxPlaces)
			return set.list()[:maxPlaces]
		}
		if !prog.observe(elementScrollHeight(feed), extract.HasEndOfListMarker(doc), added) {
			break
		}
	}

	d.logger.Info("feed scrolling finished", "links", set.size())
	return set.list()
}

func (d *discoverer) scrollGlobal(page *rod.Page, maxPlaces int) []string {
	d.logger.Info("using global link collection fallback")
	set := newLinkSet()
	stalls := 0

	for i := 0; i < d.cfg.MaxFallbackScrolls; i++ {
		doc, err := pageDocument(page)
		if err != nil {
			d.logger.Warn("global harvest failed", "error", err)
			break
		}
		added := set.add(extract.PlaceLinks(doc.Selection, pageBaseURL(page)))
		d.logger.Debug("global harvest", "total", set.size(), "new", added, "iteration", i+1)

		if maxPlaces > 0 && set.size() >= maxPlaces {
			return set.list()[:maxPlaces]
		}
		if added == 0 {
			stalls++
			if stalls >= d.cfg.MaxStalledScrolls {
				break
			}
		} else {
			stalls = 0
		}

		_ = page.Mouse.Scroll(0, float64(d.cfg.WheelDelta), 1)
		time.Sleep(d.cfg.ScrollPause)
	}

	d.logger.Info("global collection finished", "links", set.size())
	return set.list()
}

// linkSet accumulates links in first-seen order.
type linkSet struct {
	seen  map[string]struct{}
	links []string
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

// add merges links, returning how many were new.
func (s *linkSet) add(links []string) int {
	added := 0
	for _, l := range links {
		if _, dup := s.seen[l]; dup {
			continue
		}
		s.seen[l] = struct{}{}
		s.links = append(s.links, l)
		added++
	}
	return added
}

func (s *linkSet) size() int      { return len(s.links) }
func (s *linkSet) list() []string { return s.links }

func elementScrollHeight(el *rod.Element) int {
	res, err := el.Eval(`() => this.scrollHeight`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func pageURL(page *rod.Page) string {
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func pageBaseURL(page *rod.Page) *url.URL {
	raw := pageURL(page)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}

func pageDocument(page *rod.Page) (*goquery.Document, error) {
	markup, err := page.HTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}

// snapshotPage saves a screenshot and the page HTML for postmortem analysis.
func snapshotPage(page *rod.Page, sink diag.Sink, label string) {
	if sink == nil {
		return
	}
	if shot, err := page.Screenshot(true, nil); err == nil {
		sink.Save(diag.KindScreenshot, label, shot)
	}
	if markup, err := page.HTML(); err == nil {
		sink.Save(diag.KindHTML, label, []byte(markup))
	}
}
