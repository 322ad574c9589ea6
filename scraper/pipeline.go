package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/diag"
	"github.com/use-agent/mapscout/extract"
	"github.com/use-agent/mapscout/models"
	"golang.org/x/time/rate"
)

// searchBaseURL is the search results endpoint; query and language ride in
// URL parameters.
const searchBaseURL = "https://www.google.com/maps/search/"

// Pipeline runs a whole search: navigate, dismiss consent, discover links,
// and extract a record per link. Extraction failures degrade to skipped
// links; only session acquisition and the initial navigation abort a run.
type Pipeline struct {
	scraper *Scraper
	cfg     *config.Config
	logger  *slog.Logger
	sink    diag.Sink
	fetcher *httpFetcher
}

// NewPipeline wires a pipeline over a running scraper.
func NewPipeline(s *Scraper, cfg *config.Config, logger *slog.Logger, sink diag.Sink) *Pipeline {
	if sink == nil {
		sink = diag.NopSink{}
	}
	return &Pipeline{
		scraper: s,
		cfg:     cfg,
		logger:  logger,
		sink:    sink,
		fetcher: newHTTPFetcher(cfg.Browser.DefaultProxy),
	}
}

// SearchURL builds the results URL for a query and language code.
func SearchURL(query, lang string) string {
	v := url.Values{}
	v.Set("q", query)
	if lang != "" {
		v.Set("hl", lang)
	}
	return searchBaseURL + "?" + v.Encode()
}

// Search runs the full pipeline and returns the extracted records in
// processing order. The returned slice may be empty; per-link failures are
// logged and skipped, never propagated.
func (p *Pipeline) Search(ctx context.Context, req *models.SearchRequest) ([]models.PlaceRecord, error) {
	req.Defaults()
	logger := p.logger.With("query", req.Query)

	page, err := p.scraper.AcquirePage(req.Language)
	if err != nil {
		return nil, err
	}
	defer p.scraper.ReleasePage(page)

	router := setupHijack(page, p.cfg.Browser.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	bound := page.Context(ctx)

	target := SearchURL(req.Query, req.Language)
	logger.Info("navigating to search results", "url", target)
	nav := bound.Timeout(p.cfg.Scraper.NavigationTimeout)
	if navErr := nav.Navigate(target); navErr != nil {
		return nil, categorizeError(navErr, "search page navigation failed")
	}
	if stableErr := nav.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		logger.Debug("search page did not stabilize, proceeding", "error", stableErr)
	}
	time.Sleep(p.cfg.Scraper.SettleDelay)

	if dismissConsent(bound, p.cfg.Scraper.ConsentSettleTimeout, logger) {
		logger.Info("consent dialog dismissed")
	}

	maxPlaces := resolveMaxPlaces(req.MaxPlaces, p.cfg.Discovery.DefaultMaxPlaces)
	d := &discoverer{cfg: p.cfg.Discovery, logger: logger, sink: p.sink}
	links := d.run(bound, maxPlaces)
	if len(links) == 0 {
		logger.Warn("no place links found")
		snapshotPage(bound, p.sink, "zero_results")
		return nil, nil
	}

	logger.Info("scraping discovered places", "links", len(links))
	pacer := newLinkPacer(p.cfg.Scraper.LinkDelay)
	records := make([]models.PlaceRecord, 0, len(links))
	for _, link := range links {
		if waitErr := pacer.Wait(ctx); waitErr != nil {
			logger.Warn("search canceled mid-run", "error", waitErr)
			break
		}
		rec, ok := p.scrapePlace(ctx, bound, link, req.Language)
		if !ok {
			logger.Warn("no record extracted, skipping", "link", link)
			continue
		}
		rec.Link = link
		records = append(records, rec)
	}

	logger.Info("search finished", "places", len(records))
	return records, nil
}

// resolveMaxPlaces picks the effective result bound: the request's when
// positive, else the configured default. 0 from both leaves the run
// unbounded.
func resolveMaxPlaces(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 0
}

// newLinkPacer spaces consecutive place navigations a LinkDelay apart. The
// bucket starts full, so the first link proceeds immediately and every later
// one waits out the full gap.
func newLinkPacer(delay time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(delay), 1)
}

// scrapePlace runs one link through the extraction tiers: optional raw HTTP
// fetch, then browser navigation with embedded-state extraction, then the
// rendered-page extractor.
func (p *Pipeline) scrapePlace(ctx context.Context, page *rod.Page, link, lang string) (models.PlaceRecord, bool) {
	if p.cfg.Scraper.HTTPFirst {
		fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Scraper.HTTPTimeout)
		body, err := p.fetcher.fetch(fetchCtx, link, lang)
		cancel()
		if err == nil && hasEmbeddedState(body) {
			if rec, ok := p.recordFromMarkup(string(body)); ok {
				p.logger.Debug("extracted without browser", "link", link)
				return rec, true
			}
		}
	}

	nav := page.Timeout(p.cfg.Scraper.NavigationTimeout)
	if err := nav.Navigate(link); err != nil {
		p.logger.Warn("place navigation failed", "link", link, "error", err)
		return models.PlaceRecord{}, false
	}
	if err := nav.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		p.logger.Debug("place page did not stabilize, proceeding", "error", err)
	}
	time.Sleep(p.cfg.Scraper.SettleDelay)

	if markup, err := page.HTML(); err == nil {
		if rec, ok := p.recordFromMarkup(markup); ok {
			return rec, true
		}
	}

	dom := &domExtractor{cfg: p.cfg.Scraper, logger: p.logger}
	rec, err := dom.extract(page)
	if err != nil {
		p.logger.Debug("rendered-page extraction failed", "link", link, "error", err)
		return models.PlaceRecord{}, false
	}
	if rec.Empty() {
		return models.PlaceRecord{}, false
	}
	return rec, true
}

// recordFromMarkup runs the embedded-state tiers over raw markup. All
// extraction errors degrade to a miss.
func (p *Pipeline) recordFromMarkup(markup string) (models.PlaceRecord, bool) {
	text, err := extract.LocateState(markup)
	if err != nil {
		p.logger.Debug("embedded state unavailable", "error", err)
		return models.PlaceRecord{}, false
	}
	blob, err := extract.ParseState(text)
	if err != nil {
		p.logger.Debug("embedded state unusable", "error", err)
		return models.PlaceRecord{}, false
	}
	rec := extract.PlaceFromBlob(blob)
	if rec.Empty() {
		return models.PlaceRecord{}, false
	}
	if p.cfg.Extract.RequireName && rec.Name == "" {
		p.logger.Debug("record rejected: no name")
		return models.PlaceRecord{}, false
	}
	return rec, true
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
