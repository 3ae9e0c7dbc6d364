package headless

import (
	"context"
	"errors"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

// Noop always returns an error to indicate that headless browsing is not
// available in the current deployment.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch returns an error since this is a stub implementation.
func (Noop) Fetch(context.Context, string) (crawler.FetchResponse, error) {
	return crawler.FetchResponse{}, errors.New("headless fetcher not configured")
}
