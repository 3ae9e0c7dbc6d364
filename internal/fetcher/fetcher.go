// Package fetcher routes page fetches between a static HTTP client and a
// headless browser.
package fetcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
	"github.com/JakeFAU/frontier-crawler/internal/headless/detector"
)

// PageFetcher fetches one URL. Both the static and headless fetchers satisfy
// this.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (crawler.FetchResponse, error)
}

// Hybrid implements crawler.Fetcher by delegating to a static fetcher unless
// the caller asks for JavaScript rendering. When no headless fetcher is
// configured, render requests fall back to the static path with a warning.
// Static responses that look like an unrendered SPA shell are promoted to a
// headless re-fetch.
type Hybrid struct {
	static   PageFetcher
	headless PageFetcher
	promoter *detector.Heuristic
	logger   *zap.Logger
}

// NewHybrid builds a Hybrid fetcher. The headless fetcher may be nil.
func NewHybrid(static, headless PageFetcher, logger *zap.Logger) *Hybrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{
		static:   static,
		headless: headless,
		promoter: detector.NewHeuristic(0),
		logger:   logger,
	}
}

// Fetch implements crawler.Fetcher.
func (h *Hybrid) Fetch(ctx context.Context, url string, renderJS bool) (crawler.FetchResponse, error) {
	if renderJS {
		if h.headless != nil {
			resp, err := h.headless.Fetch(ctx, url)
			if err == nil {
				return resp, nil
			}
			h.logger.Warn("headless fetch failed; retrying with static client",
				zap.String("url", url), zap.Error(err))
		} else {
			h.logger.Debug("render requested but headless fetcher not configured",
				zap.String("url", url))
		}
	}
	resp, err := h.static.Fetch(ctx, url)
	if err != nil || renderJS || h.headless == nil {
		return resp, err
	}
	if h.promoter.ShouldPromote(resp) {
		h.logger.Debug("promoting fetch to headless render", zap.String("url", url))
		rendered, rerr := h.headless.Fetch(ctx, url)
		if rerr == nil {
			return rendered, nil
		}
		h.logger.Warn("headless promotion failed; keeping static response",
			zap.String("url", url), zap.Error(rerr))
	}
	return resp, nil
}
