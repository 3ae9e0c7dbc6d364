// Package extract parses fetched HTML into page metadata and discoverable
// links.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
	"github.com/JakeFAU/frontier-crawler/internal/robots"
)

// DefaultTitle is used when a page carries no usable title tag.
const DefaultTitle = "Untitled"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Extractor implements metadata extraction, link discovery, and PDF
// identification on top of goquery.
type Extractor struct {
	robots robots.Policy
}

// New builds an Extractor. The robots policy filters discovered links; pass
// an allow-all policy to disable that check.
func New(policy robots.Policy) *Extractor {
	return &Extractor{robots: policy}
}

// ExtractMetadata pulls title, author, abstract, keywords, and publish date
// from the document's meta tags. Title resolution falls back OpenGraph,
// Twitter Card, plain meta, then the title element.
func (e *Extractor) ExtractMetadata(body []byte, pageURL string) (crawler.PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return crawler.PageMetadata{}, fmt.Errorf("parse html for %s: %w", pageURL, err)
	}

	meta := collectMetaTags(doc)

	title := firstNonEmpty(meta["og:title"], meta["twitter:title"], meta["title"])
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = DefaultTitle
	}

	md := crawler.PageMetadata{
		Title:    title,
		Author:   firstNonEmpty(meta["author"], meta["og:article:author"], meta["article:author"]),
		Abstract: firstNonEmpty(meta["og:description"], meta["twitter:description"], meta["description"]),
		Keywords: splitKeywords(meta["keywords"]),
	}
	if raw := meta["article:published_time"]; raw != "" {
		md.PublishDate = parseDate(raw)
	}
	return md, nil
}

// DiscoverLinks extracts anchors from the document, absolutizes them against
// baseURL, and filters out anything the task has visited, the allow list
// rejects, or robots disallows. The return order follows document order.
func (e *Extractor) DiscoverLinks(ctx context.Context, body []byte, baseURL string, task crawler.TaskContext) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html for %s: %w", baseURL, err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", baseURL, err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || href == "#" {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "data:") {
			return
		}
		target, err := base.Parse(href)
		if err != nil {
			return
		}
		if target.Scheme != "http" && target.Scheme != "https" {
			return
		}
		link, err := crawler.NormalizeURL(target.String())
		if err != nil {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		if !task.IsAllowedDomain(link) {
			return
		}
		if task.IsVisited(link) {
			return
		}
		if e.robots != nil && !e.robots.Allowed(ctx, link) {
			return
		}
		links = append(links, link)
	})
	return links, nil
}

// IdentifyPdfLinks returns the subset of links ending in a .pdf extension.
// Content-Type probing via HEAD requests is deliberately skipped; it turns
// link discovery on a dense page into hundreds of extra requests.
func (e *Extractor) IdentifyPdfLinks(links []string) []string {
	var pdfs []string
	for _, link := range links {
		trimmed := link
		if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		if strings.HasSuffix(strings.ToLower(trimmed), ".pdf") {
			pdfs = append(pdfs, link)
		}
	}
	return pdfs
}

func collectMetaTags(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		key, _ := s.Attr("name")
		if key == "" {
			key, _ = s.Attr("property")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if _, exists := meta[key]; !exists {
			meta[key] = content
		}
	})
	return meta
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
