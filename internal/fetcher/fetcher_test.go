package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

type stubFetcher struct {
	resp  crawler.FetchResponse
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, string) (crawler.FetchResponse, error) {
	s.calls++
	return s.resp, s.err
}

// staticPage is an ordinary server-rendered response that should never be
// promoted to a headless render.
func staticPage() crawler.FetchResponse {
	return crawler.FetchResponse{
		StatusCode: 200,
		OK:         true,
		Body:       []byte("<html><body><h1>Plain page</h1><p>server rendered content</p></body></html>"),
	}
}

func TestHybridRoutesStaticByDefault(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{resp: staticPage()}
	headless := &stubFetcher{resp: crawler.FetchResponse{StatusCode: 200, OK: true, UsedHeadless: true}}
	h := NewHybrid(static, headless, zap.NewNop())

	resp, err := h.Fetch(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	require.False(t, resp.UsedHeadless)
	require.Equal(t, 1, static.calls)
	require.Equal(t, 0, headless.calls)
}

func TestHybridRoutesHeadlessForRender(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{}
	headless := &stubFetcher{resp: crawler.FetchResponse{StatusCode: 200, OK: true, UsedHeadless: true}}
	h := NewHybrid(static, headless, zap.NewNop())

	resp, err := h.Fetch(context.Background(), "https://example.com", true)
	require.NoError(t, err)
	require.True(t, resp.UsedHeadless)
	require.Equal(t, 0, static.calls)
}

func TestHybridFallsBackWhenHeadlessFails(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{resp: staticPage()}
	headless := &stubFetcher{err: errors.New("browser crashed")}
	h := NewHybrid(static, headless, zap.NewNop())

	resp, err := h.Fetch(context.Background(), "https://example.com", true)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, 1, headless.calls)
	require.Equal(t, 1, static.calls)
}

func TestHybridWithoutHeadless(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{resp: staticPage()}
	h := NewHybrid(static, nil, zap.NewNop())

	resp, err := h.Fetch(context.Background(), "https://example.com", true)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, 1, static.calls)
}

func TestHybridPromotesSPAShell(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{resp: crawler.FetchResponse{
		StatusCode: 200,
		OK:         true,
		Body:       []byte(`<html><body><div id="root"></div></body></html>`),
	}}
	headless := &stubFetcher{resp: crawler.FetchResponse{StatusCode: 200, OK: true, UsedHeadless: true}}
	h := NewHybrid(static, headless, zap.NewNop())

	resp, err := h.Fetch(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	require.True(t, resp.UsedHeadless)
	require.Equal(t, 1, static.calls)
	require.Equal(t, 1, headless.calls)
}

func TestHybridKeepsStaticWhenPromotionFails(t *testing.T) {
	t.Parallel()

	static := &stubFetcher{resp: crawler.FetchResponse{
		StatusCode: 200,
		OK:         true,
		Body:       []byte(`<html><body><div id="app"></div></body></html>`),
	}}
	headless := &stubFetcher{err: errors.New("browser crashed")}
	h := NewHybrid(static, headless, zap.NewNop())

	resp, err := h.Fetch(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	require.False(t, resp.UsedHeadless)
	require.True(t, resp.OK)
	require.Equal(t, 1, headless.calls)
}
