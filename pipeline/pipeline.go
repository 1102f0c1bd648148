// Package pipeline orchestrates a redaction run: it decides per page
// between the digital and OCR extraction paths, fans pages out to a
// bounded worker pool, runs the pattern-to-region engine on each, and
// gathers the per-page outcomes. Pages are fully independent; one
// page's failure is recorded and never aborts the others.
package pipeline

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/wudi/pdfredact/config"
	"github.com/wudi/pdfredact/extract"
	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/redact"
)

// ErrNoOCR is recorded for scanned pages when no OCR engine was wired.
var ErrNoOCR = errors.New("pipeline: page has no usable text layer and OCR is unavailable")

// Options tunes a run.
type Options struct {
	// Workers caps concurrent page processing. Each OCR page holds a
	// full-resolution raster in memory, so the cap bounds peak memory.
	Workers int
	// TextLayerThreshold is the minimum number of non-space characters
	// for a page's embedded text layer to be trusted; below it the page
	// is treated as scanned.
	TextLayerThreshold int
	// SparseTextThreshold triggers an OCR retry for digital pages that
	// produced no regions from a thin text layer.
	SparseTextThreshold int
	// OCRFallback enables the sparse-text retry and the OCR rescue of
	// pages whose text layer fails to parse.
	OCRFallback bool
	// Redact carries the engine tolerances.
	Redact redact.Options
	// Logger receives run diagnostics.
	Logger observability.Logger
}

// DefaultOptions mirrors the thresholds of the original tool.
func DefaultOptions() Options {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	return Options{
		Workers:             workers,
		TextLayerThreshold:  100,
		SparseTextThreshold: 500,
		OCRFallback:         true,
		Redact:              redact.DefaultOptions(),
	}
}

// PageResult is the outcome for one page.
type PageResult struct {
	Page     int
	Source   redact.Source
	Tokens   int
	Matches  int
	Regions  []redact.Region
	Unmapped []redact.MatchSpan
	Err      error
}

// Result aggregates a whole run. Regions is the flattened region list
// for the renderer.
type Result struct {
	Pages       []PageResult
	Regions     []redact.Region
	FailedPages int
	Duration    time.Duration
}

// TextProber reports page count and embedded text, used for source
// selection. *extract.Document satisfies it.
type TextProber interface {
	NumPages() int
	PageText(page int) (string, error)
}

// Pipeline wires the probe, the extractors and the compiled rules.
type Pipeline struct {
	probe   TextProber
	digital extract.Extractor
	ocr     extract.Extractor
	rules   *config.RuleSet
	opts    Options
	log     observability.Logger
}

// New builds a pipeline. Either extractor may be nil when that path is
// unavailable; pages needing a missing path fail individually.
func New(probe TextProber, digital, ocr extract.Extractor, rules *config.RuleSet, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.TextLayerThreshold <= 0 {
		opts.TextLayerThreshold = DefaultOptions().TextLayerThreshold
	}
	if opts.SparseTextThreshold <= 0 {
		opts.SparseTextThreshold = DefaultOptions().SparseTextThreshold
	}
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Pipeline{
		probe:   probe,
		digital: digital,
		ocr:     ocr,
		rules:   rules,
		opts:    opts,
		log:     log,
	}
}

// Run processes every page and returns the aggregated result. The pool
// is the only concurrency; within a page the stages run sequentially.
// Run itself never fails: page errors are carried in the result and the
// caller decides how a partial failure affects the run status.
func (p *Pipeline) Run(ctx context.Context) *Result {
	start := time.Now()
	n := p.probe.NumPages()
	results := make([]PageResult, n)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				results[page] = p.processPage(ctx, page)
			}
		}()
	}
	for page := 0; page < n; page++ {
		select {
		case jobs <- page:
		case <-ctx.Done():
			results[page] = PageResult{Page: page, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	res := &Result{Pages: results, Duration: time.Since(start)}
	for _, pr := range results {
		if pr.Err != nil {
			res.FailedPages++
			continue
		}
		res.Regions = append(res.Regions, pr.Regions...)
	}
	p.logSummary(res)
	return res
}

func (p *Pipeline) processPage(ctx context.Context, page int) PageResult {
	txt, probeErr := p.probe.PageText(page)
	textLen := len(strings.TrimSpace(txt))
	scanned := probeErr != nil || textLen < p.opts.TextLayerThreshold

	if scanned || p.digital == nil {
		if p.ocr == nil {
			return PageResult{Page: page, Err: ErrNoOCR}
		}
		return p.runStages(ctx, p.ocr, page)
	}

	res := p.runStages(ctx, p.digital, page)
	if p.opts.OCRFallback && p.ocr != nil {
		switch {
		case res.Err != nil:
			// The text layer exists but failed to parse; the raster may
			// still be readable.
			p.log.Warn("digital extraction failed, retrying with ocr",
				observability.Int("page", page),
				observability.Error("err", res.Err))
			if retry := p.runStages(ctx, p.ocr, page); retry.Err == nil {
				return retry
			}
		case len(res.Regions) == 0 && textLen > 0 && textLen < p.opts.SparseTextThreshold:
			// A sparse text layer with no hits often means the real
			// content lives in a scanned image on the page.
			if retry := p.runStages(ctx, p.ocr, page); retry.Err == nil && len(retry.Regions) > 0 {
				return retry
			}
		}
	}
	return res
}

func (p *Pipeline) runStages(ctx context.Context, ex extract.Extractor, page int) PageResult {
	res := PageResult{Page: page, Source: ex.Source()}

	extractStart := time.Now()
	tokens, err := ex.Extract(ctx, page)
	if err != nil {
		res.Err = err
		return res
	}
	extractMetric := observability.MetricExtractTime
	if ex.Source() == redact.SourceOCR {
		extractMetric = observability.MetricOCRTime
	}
	p.log.Debug("extraction finished",
		observability.Int("page", page),
		observability.Duration(extractMetric, time.Since(extractStart)))

	pt := redact.Normalize(page, tokens, p.opts.Redact)
	res.Tokens = len(pt.Tokens)

	matchStart := time.Now()
	spans, err := redact.Match(pt, p.rules.Rules(), ex.Source() == redact.SourceOCR)
	if err != nil {
		res.Err = err
		return res
	}
	res.Matches = len(spans)
	p.log.Debug("matching finished",
		observability.Int("page", page),
		observability.Duration(observability.MetricMatchTime, time.Since(matchStart)))

	res.Regions, res.Unmapped = redact.MapRegions(pt, spans, p.opts.Redact)
	for _, u := range res.Unmapped {
		p.log.Warn("match mapped to no token",
			observability.Int("page", page),
			observability.String("rule", u.Rule),
			observability.Int("start", u.Start),
			observability.Int("end", u.End))
	}
	return res
}

func (p *Pipeline) logSummary(res *Result) {
	for _, pr := range res.Pages {
		if pr.Err != nil {
			p.log.Error("page failed",
				observability.Int("page", pr.Page),
				observability.Error("err", pr.Err))
			continue
		}
		p.log.Info("page processed",
			observability.Int("page", pr.Page),
			observability.String("source", string(pr.Source)),
			observability.Int("tokens", pr.Tokens),
			observability.Int("matches", pr.Matches),
			observability.Int("regions", len(pr.Regions)),
			observability.Int("unmapped", len(pr.Unmapped)))
	}
	var unmapped int
	for _, pr := range res.Pages {
		unmapped += len(pr.Unmapped)
	}
	p.log.Debug("run metrics",
		observability.Int(observability.MetricRegionCount, len(res.Regions)),
		observability.Int(observability.MetricUnmappedHits, unmapped))
	p.log.Info("run complete",
		observability.Int("pages", len(res.Pages)),
		observability.Int("failed", res.FailedPages),
		observability.Int("regions", len(res.Regions)),
		observability.Duration("elapsed", res.Duration))
}
