package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
	"github.com/JakeFAU/frontier-crawler/internal/metrics"
	"github.com/JakeFAU/frontier-crawler/internal/progress"
	"github.com/JakeFAU/frontier-crawler/internal/score"
)

// bigSitePriorityBoost guarantees a priority-domain link outranks any
// small-site PDF discovered at the same depth.
const bigSitePriorityBoost = 100

// runLoop is the worker body: one iteration per dequeued URL, strictly
// sequential within a task. Per-URL failures become recorded events and the
// loop moves on; only the stop signal, an empty frontier, or the page budget
// end it.
func (o *Orchestrator) runLoop(r *runner, done chan struct{}) {
	defer close(done)
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	ctx := context.Background()
	taskID := r.task.ID()
	fr := r.task.Frontier()
	sinceSnapshot := 0

	o.logger.Info("crawl loop started", zap.String("task_id", taskID))

	for {
		if r.stop.Load() {
			break
		}
		if r.pause.Load() {
			time.Sleep(o.cfg.PausePoll)
			continue
		}
		if r.task.Status() != crawler.TaskStatusRunning {
			break
		}

		item, ok := fr.Dequeue()
		if !ok {
			break
		}
		// URLs are normalized at enqueue; a parse failure here means the raw
		// form is all we have.
		url, err := crawler.NormalizeURL(item.URL)
		if err != nil {
			url = item.URL
		}

		if r.task.IsVisited(url) {
			r.task.RecordLinkFiltered(url, "already visited")
			r.scores.Update(url, score.EventDuplicateContent)
			o.publish(r)
			continue
		}
		if !r.task.IsAllowedDomain(url) {
			r.task.RecordError(url, "domain not in allow list", progress.ErrDomainNotAllowed)
			o.publish(r)
			continue
		}

		// Mark before fetching so a sibling page discovering the same URL
		// mid-fetch cannot race a duplicate into the pipeline.
		r.task.MarkVisited(url)
		sinceSnapshot++

		cfg := r.task.Config()
		o.politenessWait(ctx, url, cfg.RequestInterval)

		o.crawlOne(ctx, r, url, item.Depth, cfg)
		if sinceSnapshot >= o.cfg.SnapshotEvery {
			o.persist(ctx, r)
			sinceSnapshot = 0
		}
		o.publish(r)
		metrics.SetFrontierSize(fr.Size())

		if r.task.ResultCount() >= cfg.MaxPages {
			o.logger.Info("page budget reached",
				zap.String("task_id", taskID), zap.Int("max_pages", cfg.MaxPages))
			break
		}
	}

	if r.stop.Load() {
		r.task.Stop()
	} else if r.task.Status() == crawler.TaskStatusRunning {
		r.task.Complete()
	}
	o.sync(ctx, r)
	o.logger.Info("crawl loop exited",
		zap.String("task_id", taskID),
		zap.String("status", string(r.task.Status())),
		zap.Int("visited", r.task.VisitedCount()),
		zap.Int("results", r.task.ResultCount()),
	)
}

// crawlOne processes a single URL end to end: fetch, extract, record the
// result, and enqueue discovered links.
func (o *Orchestrator) crawlOne(ctx context.Context, r *runner, url string, depth int, cfg crawler.CrawlConfig) {
	resp, err := o.deps.Fetcher.Fetch(ctx, url, o.cfg.RenderJS)
	if err != nil || !resp.OK {
		msg := resp.ErrorMessage
		if msg == "" && err != nil {
			msg = err.Error()
		}
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		r.task.RecordError(url, msg, progress.ErrRequestFailed)
		if resp.StatusCode >= 400 {
			r.scores.Update(url, score.EventError4xx5xx)
		}
		return
	}

	metrics.ObserveCrawl(url, strconv.Itoa(resp.StatusCode), len(resp.Body))
	if resp.Duration > 0 && resp.Duration < o.cfg.FastResponse {
		r.scores.Update(url, score.EventFastResponse)
	}

	md, err := o.deps.Metadata.ExtractMetadata(resp.Body, url)
	if err != nil {
		r.task.RecordError(url, err.Error(), progress.ErrMetadataExtract)
		return
	}
	if md.Title != "" && md.Abstract != "" {
		r.scores.Update(url, score.EventHighQualityContent)
	}

	links, err := o.deps.Links.DiscoverLinks(ctx, resp.Body, url, r.task)
	if err != nil {
		r.task.RecordError(url, err.Error(), progress.ErrLinkDiscovery)
		links = nil
	}

	pdfs := o.deps.Pdfs.IdentifyPdfLinks(links)
	if len(pdfs) > 0 {
		r.scores.Update(url, score.EventResourceFound)
	}

	var tags []string
	if cfg.Strategy == crawler.StrategyBigSiteFirst &&
		crawler.HostMatchesAny(crawler.Host(url), cfg.PriorityDomains) {
		tags = append(tags, crawler.TagBigSite)
	}

	result := crawler.CrawlResult{
		URL:         url,
		Title:       md.Title,
		Author:      md.Author,
		Abstract:    md.Abstract,
		Keywords:    md.Keywords,
		PublishDate: md.PublishDate,
		PDFLinks:    pdfs,
		Tags:        tags,
		Depth:       depth,
		CrawledAt:   o.deps.Clock.Now(),
	}
	r.task.AddResult(result)
	if err := o.deps.Store.SaveResult(ctx, r.task.ID(), result); err != nil {
		o.logger.Warn("persist result failed",
			zap.String("task_id", r.task.ID()), zap.String("url", url), zap.Error(err))
	}

	pdfSet := make(map[string]struct{}, len(pdfs))
	for _, p := range pdfs {
		pdfSet[p] = struct{}{}
	}
	for _, link := range links {
		if r.task.IsVisited(link) {
			continue
		}
		_, isPDF := pdfSet[link]
		r.task.Frontier().Enqueue(link, depth+1, o.linkPriority(r, link, isPDF, cfg))
	}
}

// linkPriority computes the enqueue priority for a discovered link: base 1
// for normal pages, 5 for PDFs. Under BIG_SITE_FIRST a priority-domain link
// gets a flat boost; under PRIORITY the base is scaled by the domain score.
func (o *Orchestrator) linkPriority(r *runner, link string, isPDF bool, cfg crawler.CrawlConfig) int {
	base := 1
	if isPDF {
		base = 5
	}
	switch cfg.Strategy {
	case crawler.StrategyBigSiteFirst:
		if crawler.HostMatchesAny(crawler.Host(link), cfg.PriorityDomains) {
			return base + bigSitePriorityBoost
		}
		return base
	case crawler.StrategyPriority:
		return int(float64(base) * r.scores.Score(link))
	default:
		return base
	}
}

// politenessWait enforces the effective per-domain delay: the larger of the
// configured interval and the host's robots Crawl-delay. The limiter credits
// time already spent since the domain's previous request.
func (o *Orchestrator) politenessWait(ctx context.Context, url string, interval time.Duration) {
	target := interval
	if o.deps.Politeness != nil {
		if delay, ok := o.deps.Politeness.CrawlDelay(ctx, url); ok && delay > target {
			target = delay
		}
	}
	if target <= 0 || o.deps.Limiter == nil {
		return
	}
	waited, err := o.deps.Limiter.Wait(ctx, url, target)
	if err != nil {
		o.logger.Debug("politeness wait interrupted", zap.String("url", url), zap.Error(err))
		return
	}
	if waited > 0 {
		metrics.ObservePolitenessDelay(metrics.SanitizeSite(url), waited)
	}
}
