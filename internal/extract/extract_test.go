package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="OG Title">
<meta name="twitter:title" content="Twitter Title">
<meta name="author" content="Jane Author">
<meta name="description" content="A short abstract.">
<meta name="keywords" content="go, crawler , frontier,">
<meta property="article:published_time" content="2024-03-15T10:30:00Z">
</head>
<body>
<a href="/relative">Relative</a>
<a href="https://example.com/absolute">Absolute</a>
<a href="https://example.com/absolute">Duplicate</a>
<a href="https://other.com/page">Other domain</a>
<a href="mailto:someone@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
<a href="#">Anchor</a>
<a href="https://example.com/paper.pdf">Paper</a>
</body>
</html>`

type stubTask struct {
	visited map[string]bool
	allowed func(url string) bool
}

func (s *stubTask) IsVisited(url string) bool { return s.visited[url] }

func (s *stubTask) IsAllowedDomain(url string) bool {
	if s.allowed == nil {
		return true
	}
	return s.allowed(url)
}

type denyPathPolicy struct {
	denied string
}

func (d *denyPathPolicy) Allowed(_ context.Context, rawURL string) bool {
	return d.denied == "" || rawURL != d.denied
}

func (d *denyPathPolicy) CrawlDelay(context.Context, string) (time.Duration, bool) {
	return 0, false
}

func TestExtractMetadataPriority(t *testing.T) {
	t.Parallel()

	ex := New(nil)
	md, err := ex.ExtractMetadata([]byte(samplePage), "https://example.com/")
	require.NoError(t, err)

	require.Equal(t, "OG Title", md.Title)
	require.Equal(t, "Jane Author", md.Author)
	require.Equal(t, "A short abstract.", md.Abstract)
	require.Equal(t, []string{"go", "crawler", "frontier"}, md.Keywords)
	require.Equal(t, "2024-03-15", md.PublishDate)
}

func TestExtractMetadataFallbacks(t *testing.T) {
	t.Parallel()

	ex := New(nil)

	md, err := ex.ExtractMetadata([]byte(`<html><head><title> Page Title </title></head></html>`), "https://example.com/")
	require.NoError(t, err)
	require.Equal(t, "Page Title", md.Title)
	require.Empty(t, md.Author)
	require.Empty(t, md.Keywords)

	md, err = ex.ExtractMetadata([]byte(`<html><body>no head</body></html>`), "https://example.com/")
	require.NoError(t, err)
	require.Equal(t, DefaultTitle, md.Title)
}

func TestExtractMetadataBadDate(t *testing.T) {
	t.Parallel()

	ex := New(nil)
	page := `<html><head><meta property="article:published_time" content="next tuesday"></head></html>`
	md, err := ex.ExtractMetadata([]byte(page), "https://example.com/")
	require.NoError(t, err)
	require.Empty(t, md.PublishDate)
}

func TestDiscoverLinksFilters(t *testing.T) {
	t.Parallel()

	ex := New(nil)
	task := &stubTask{
		visited: map[string]bool{"https://example.com/paper.pdf": true},
		allowed: func(url string) bool {
			return url != "https://other.com/page"
		},
	}

	links, err := ex.DiscoverLinks(context.Background(), []byte(samplePage), "https://example.com/", task)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.com/relative",
		"https://example.com/absolute",
	}, links)
}

func TestDiscoverLinksRespectsRobots(t *testing.T) {
	t.Parallel()

	ex := New(&denyPathPolicy{denied: "https://example.com/absolute"})
	task := &stubTask{}

	links, err := ex.DiscoverLinks(context.Background(), []byte(samplePage), "https://example.com/", task)
	require.NoError(t, err)
	require.NotContains(t, links, "https://example.com/absolute")
	require.Contains(t, links, "https://example.com/relative")
}

func TestIdentifyPdfLinks(t *testing.T) {
	t.Parallel()

	ex := New(nil)
	pdfs := ex.IdentifyPdfLinks([]string{
		"https://example.com/paper.pdf",
		"https://example.com/REPORT.PDF?download=1",
		"https://example.com/page.html",
		"https://example.com/archive.pdf#page=3",
	})
	require.Equal(t, []string{
		"https://example.com/paper.pdf",
		"https://example.com/REPORT.PDF?download=1",
		"https://example.com/archive.pdf#page=3",
	}, pdfs)

	require.Empty(t, ex.IdentifyPdfLinks(nil))
}
