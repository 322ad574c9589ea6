package scraper

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Consent button labels, accept variants preferred over reject. The lists are
// ordered by how often each variant is seen in the wild.
var (
	consentAcceptLabels = []string{
		"Accept all",
		"Alle akzeptieren",
		"I agree",
		"Ich stimme zu",
		"Akzeptieren",
	}
	consentRejectLabels = []string{
		"Reject all",
		"Alle ablehnen",
		"Ablehnen",
	}
)

// consentMatch returns the index of the first button whose text contains a
// label, scanning labels in priority order. Returns -1 when nothing matches.
func consentMatch(buttonTexts, labels []string) int {
	for _, label := range labels {
		for i, text := range buttonTexts {
			if strings.Contains(text, label) {
				return i
			}
		}
	}
	return -1
}

// dismissConsent clicks the consent dialog away if one is present. A page
// without a consent prompt is the common case, not a failure; the function
// just reports whether it clicked anything.
func dismissConsent(page *rod.Page, settleTimeout time.Duration, logger *slog.Logger) bool {
	buttons, err := page.Elements("button")
	if err != nil || len(buttons) == 0 {
		return false
	}

	texts := make([]string, len(buttons))
	for i, btn := range buttons {
		text, textErr := btn.Text()
		if textErr != nil {
			continue
		}
		texts[i] = strings.TrimSpace(text)
	}

	for _, labels := range [][]string{consentAcceptLabels, consentRejectLabels} {
		idx := consentMatch(texts, labels)
		if idx < 0 {
			continue
		}
		logger.Info("consent dialog detected", "button", texts[idx])
		if clickErr := buttons[idx].Click(proto.InputMouseButtonLeft, 1); clickErr != nil {
			logger.Warn("consent click failed, proceeding anyway", "error", clickErr)
			return false
		}
		if stableErr := page.Timeout(settleTimeout).WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
			logger.Debug("page did not settle after consent click", "error", stableErr)
		}
		return true
	}

	logger.Debug("no consent dialog detected")
	return false
}
