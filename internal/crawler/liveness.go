package crawler

import (
	"context"
	"net/http"

	"newsfetcher/internal/logger"
)

// LivenessChecker answers whether an article URL still resolves.
type LivenessChecker struct {
	scraper *Scraper
	log     *logger.Logger
}

// NewLivenessChecker creates a checker sharing the scraper's HTTP client.
func NewLivenessChecker(scraper *Scraper, log *logger.Logger) *LivenessChecker {
	return &LivenessChecker{scraper: scraper, log: log}
}

// Check issues a HEAD request. Only a 200 response counts as live; transport
// failures count as not live.
func (c *LivenessChecker) Check(ctx context.Context, rawURL string) bool {
	status, err := c.scraper.Head(ctx, rawURL)
	if err != nil {
		c.log.Debug("Liveness check failed", "url", rawURL, "error", err)
		return false
	}

	if status != http.StatusOK {
		c.log.Debug("Liveness check rejected", "url", rawURL, "status", status)
		return false
	}

	return true
}
