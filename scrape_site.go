// Copyright 2025 Divetide, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package siteingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kennygrant/sanitize"
	"go.uber.org/zap"
)

// maxStylesheetFetches bounds how many external stylesheets are fetched for
// style analysis.
const maxStylesheetFetches = 20

// pipelineSteps are the coarse progress milestones of one run.
const pipelineSteps = 5

// Options configures one ScrapeSite run.
type Options struct {
	// TargetURL is the absolute URL of the business website.
	TargetURL string
	// MaxPages bounds crawl-fallback discovery. Zero selects the default.
	MaxPages int
	// Completer performs LLM segmentation and block classification. When
	// nil, sections come from DOM heuristics and no blocks are produced.
	Completer Completer
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// FetchTimeout bounds plain HTTP fetches (robots, sitemaps, CSS).
	FetchTimeout time.Duration
	// RenderTimeout bounds one headless page navigation.
	RenderTimeout time.Duration
	// DebugDir, when set, receives the per-run debug JSON snapshots.
	DebugDir string
	// Progress receives milestone updates. Optional.
	Progress ProgressFunc
	// ProcessAllPages renders and classifies every discovered URL instead
	// of only the home page.
	ProcessAllPages bool

	// fetcher and renderer overrides, used by tests.
	fetcher  *Fetcher
	renderer pageRenderer
}

// pageRenderer is what the orchestrator needs from the headless renderer.
type pageRenderer interface {
	Render(url string) (*RenderResult, error)
	Close()
}

// ScrapeSite runs the full ingestion pipeline for one website: URL
// discovery, home-page rendering for style and business signals, per-page
// rendering, extraction, segmentation and block classification. Per-resource
// failures degrade to missing data; the only fatal outcomes are an invalid
// target URL and a final aggregate that fails its root schema.
func ScrapeSite(ctx context.Context, opts Options) (*SiteScrape, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ValidateTargetURL(opts.TargetURL); err != nil {
		return nil, err
	}
	origin, err := ToOrigin(opts.TargetURL)
	if err != nil {
		return nil, err
	}

	fetcher := opts.fetcher
	if fetcher == nil {
		fetcher = NewFetcher(opts.FetchTimeout)
	}
	renderer := opts.renderer
	if renderer == nil {
		renderer = NewRenderer(opts.RenderTimeout)
	}
	defer renderer.Close()

	result := &SiteScrape{
		TargetURL:       opts.TargetURL,
		CrawledAt:       time.Now().UTC(),
		Colors:          ColorPalette{Palette: []string{}},
		Fonts:           Fonts{Families: []string{}, Sources: []string{}},
		Sitemap:         []SiteMapNode{},
		Pages:           []ScrapedPage{},
		SitemapXMLURLs:  []string{},
		Errors:          []string{},
		RenderCSSSample: []string{},
	}
	recordError := func(format string, args ...any) {
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	report := reportFunc(opts.Progress)
	report(0, 1, "starting ingestion", nil)

	// Discovery.
	robots := FetchRobots(fetcher, origin)
	result.RobotsTxt = robots.Raw
	discovery := DiscoverURLs(fetcher, robots, opts.TargetURL, opts.MaxPages, logger)
	result.SitemapXMLURLs = append(result.SitemapXMLURLs, discovery.SitemapXMLURLs...)
	result.Sitemap = buildSiteMapTree(opts.TargetURL, discovery.URLs)
	logger.Info("URL discovery complete",
		zap.Int("urls", len(discovery.URLs)),
		zap.Int("sitemaps", len(discovery.SitemapXMLURLs)))
	report(20, 2, "discovered site structure", nil)

	// Home-page render drives style and business extraction. Failure here
	// keeps the defaults rather than failing the run.
	homeRender, err := renderer.Render(opts.TargetURL)
	if err != nil {
		logger.Warn("home page render failed", zap.String("url", opts.TargetURL), zap.Error(err))
		recordError("home page render failed: %v", err)
	} else {
		blobs, sampled := collectCSSBlobs(fetcher, homeRender, logger, recordError)
		result.RenderCSSSample = sampled
		result.Colors = PickPalette(ScoreColorsFromCSS(blobs))
		result.Fonts = ExtractFonts(blobs, homeRender.CSSURLs, homeRender.HTML)
		result.Business = ExtractBusinessProfile(homeRender.HTML, origin)
	}
	report(40, 3, "extracted styles and business profile", result)

	// Page processing. Single-page mode renders only the target URL; the
	// rest of the discovered set is still recorded in the sitemap tree.
	pageURLs := []string{opts.TargetURL}
	if opts.ProcessAllPages && len(discovery.URLs) > 0 {
		pageURLs = discovery.URLs
	}

	seenHashes := make(map[string]bool)
	for _, pageURL := range pageURLs {
		page := scrapePage(ctx, scrapePageDeps{
			renderer:  renderer,
			completer: opts.Completer,
			logger:    logger,
		}, pageURL, homeRenderFor(pageURL, opts.TargetURL, homeRender), recordError)

		if page.Render != nil && page.Render.ContentHash != "" {
			if seenHashes[page.Render.ContentHash] {
				page.Render.IsDuplicateContent = true
			}
			seenHashes[page.Render.ContentHash] = true
		}
		result.Pages = append(result.Pages, page)
	}
	report(80, 4, "classified page content", result)

	if err := validateSiteScrape(result); err != nil {
		return nil, fmt.Errorf("assembled scrape failed schema validation: %w", err)
	}

	if opts.DebugDir != "" {
		writeDebugSnapshots(opts.DebugDir, opts.TargetURL, result, logger)
	}
	report(100, 5, "ingestion complete", result)
	return result, nil
}

type scrapePageDeps struct {
	renderer  pageRenderer
	completer Completer
	logger    *zap.Logger
}

// homeRenderFor reuses the home-page render when the page being scraped is
// the target URL itself, avoiding a second navigation.
func homeRenderFor(pageURL, targetURL string, homeRender *RenderResult) *RenderResult {
	if pageURL == targetURL {
		return homeRender
	}
	return nil
}

// scrapePage renders one URL and extracts everything the pipeline mines from
// it. A failed render yields a minimal page record, never a missing one, so
// positional expectations over pages[] hold.
func scrapePage(ctx context.Context, deps scrapePageDeps, pageURL string, reuse *RenderResult, recordError func(string, ...any)) ScrapedPage {
	page := ScrapedPage{
		URL:             pageURL,
		Slug:            SlugFromURL(pageURL),
		Sections:        []PageSection{},
		BlockCandidates: []BlockCandidate{},
		Images:          []ImageAsset{},
	}

	render := reuse
	var renderDuration time.Duration
	if render == nil {
		start := time.Now()
		r, err := deps.renderer.Render(pageURL)
		renderDuration = time.Since(start)
		if err != nil {
			deps.logger.Warn("page render failed", zap.String("url", pageURL), zap.Error(err))
			recordError("render failed for %s: %v", pageURL, err)
			return page
		}
		render = r
	}

	page.HTML = render.HTML
	page.Text = ExtractVisibleText(render.HTML)
	page.SEO = ExtractSeoMeta(render.HTML)
	page.Title = firstNonEmpty(page.SEO.Title, page.SEO.OGTitle)
	page.Images = ExtractImages(pageURL, render.HTML, nil)
	page.Render = &RenderStats{
		DurationMs:    renderDuration.Milliseconds(),
		CSSCount:      len(render.CSSURLs),
		ContentHash:   ContentHash(render.HTML),
		ScreenshotPNG: render.ScreenshotPNG,
	}

	if deps.completer != nil {
		page.Sections = SegmentWithLLM(ctx, deps.completer, render.HTML, page.Text, deps.logger)
		page.BlockCandidates = ClassifySections(ctx, deps.completer, page.Sections, deps.logger)
		page.AI = &PageAI{LLMBlocks: page.BlockCandidates}
		if len(page.BlockCandidates) > 0 {
			var sum float64
			for _, c := range page.BlockCandidates {
				sum += c.Confidence
			}
			page.AI.Confidence = sum / float64(len(page.BlockCandidates))
		}
	} else {
		page.Sections = InferSections(pageURL, render.HTML)
	}
	return page
}

// collectCSSBlobs fetches the rendered page's stylesheets and appends the
// contents of inline <style> elements. Individual fetch failures skip that
// stylesheet. Returns the blobs and a small URL sample for the aggregate.
func collectCSSBlobs(fetcher *Fetcher, render *RenderResult, logger *zap.Logger, recordError func(string, ...any)) ([]string, []string) {
	var blobs []string
	sample := []string{}

	urls := render.CSSURLs
	if len(urls) > maxStylesheetFetches {
		urls = urls[:maxStylesheetFetches]
	}
	for _, cssURL := range urls {
		body, err := fetcher.FetchText(cssURL)
		if err != nil {
			logger.Debug("stylesheet fetch failed", zap.String("url", cssURL), zap.Error(err))
			recordError("stylesheet fetch failed for %s: %v", cssURL, err)
			continue
		}
		blobs = append(blobs, body)
		if len(sample) < 5 {
			sample = append(sample, cssURL)
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(render.HTML)); err == nil {
		doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
			if css := strings.TrimSpace(sel.Text()); css != "" {
				blobs = append(blobs, css)
			}
		})
	}
	return blobs, sample
}

// buildSiteMapTree arranges discovered URLs as a one-level tree rooted at
// the target URL.
func buildSiteMapTree(targetURL string, urls []string) []SiteMapNode {
	root := SiteMapNode{URL: targetURL}
	normalizedTarget, err := NormalizeURL(targetURL, targetURL)
	if err != nil {
		normalizedTarget = targetURL
	}
	for _, u := range urls {
		if u == normalizedTarget || u == targetURL {
			continue
		}
		root.Children = append(root.Children, SiteMapNode{URL: u})
	}
	return []SiteMapNode{root}
}

func reportFunc(progress ProgressFunc) func(pct, current int, msg string, partial *SiteScrape) {
	return func(pct, current int, msg string, partial *SiteScrape) {
		if progress == nil {
			return
		}
		progress(Progress{
			Percentage:    pct,
			Current:       current,
			Total:         pipelineSteps,
			Message:       msg,
			PartialResult: partial,
		})
	}
}

// siteScrapeSchema is the root contract the rest of the product depends on.
// Failing it is run-fatal; there is no silent downgrade at this gate.
var siteScrapeSchema = mustResolveSchema(&jsonschema.Schema{
	Type:     "object",
	Required: []string{"targetUrl", "crawledAt", "colors", "fonts", "sitemap", "pages", "sitemapXmlUrls", "errors"},
	Properties: map[string]*jsonschema.Schema{
		"targetUrl": {Type: "string"},
		"crawledAt": {Type: "string"},
		"colors": {
			Type:     "object",
			Required: []string{"palette"},
			Properties: map[string]*jsonschema.Schema{
				"palette": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			},
		},
		"fonts": {
			Type:     "object",
			Required: []string{"families", "sources"},
		},
		"sitemap": {Type: "array"},
		"pages": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"url", "slug", "sections", "blockCandidates", "images"},
			},
		},
		"sitemapXmlUrls": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		"errors":         {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
	},
})

func mustResolveSchema(s *jsonschema.Schema) *jsonschema.Resolved {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("invalid root schema: %v", err))
	}
	return resolved
}

// validateSiteScrape checks the assembled aggregate against the root schema
// through a JSON round trip, so validation sees exactly what downstream
// consumers will parse.
func validateSiteScrape(s *SiteScrape) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode scrape result: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("failed to decode scrape result: %w", err)
	}
	return siteScrapeSchema.Validate(instance)
}

// writeDebugSnapshots persists three JSON files for offline inspection: the
// full aggregate, the LLM-only output, and the sections that were never
// converted into blocks. Snapshot failures are logged, never fatal.
func writeDebugSnapshots(dir, targetURL string, result *SiteScrape, logger *zap.Logger) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("failed to create debug directory", zap.String("dir", dir), zap.Error(err))
		return
	}

	base := fmt.Sprintf("%s-%d", sanitize.BaseName(hostnameOf(targetURL)), time.Now().Unix())
	write := func(suffix string, payload any) {
		name := base + suffix + ".json"
		raw, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			logger.Warn("failed to encode debug snapshot", zap.String("file", name), zap.Error(err))
			return
		}
		if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
			logger.Warn("failed to write debug snapshot", zap.String("file", name), zap.Error(err))
		}
	}

	write("", result)

	type llmPage struct {
		URL string  `json:"url"`
		AI  *PageAI `json:"ai,omitempty"`
	}
	llmPages := make([]llmPage, 0, len(result.Pages))
	for _, p := range result.Pages {
		llmPages = append(llmPages, llmPage{URL: p.URL, AI: p.AI})
	}
	write("-llm", llmPages)

	type leftoverSection struct {
		URL     string      `json:"url"`
		Section PageSection `json:"section"`
		Reason  string      `json:"reason"`
	}
	var leftovers []leftoverSection
	for _, p := range result.Pages {
		converted := make(map[SectionType]int)
		for _, c := range p.BlockCandidates {
			converted[c.SourceSectionType]++
		}
		for _, s := range p.Sections {
			reason := ""
			if _, ok := sectionTypeTargets[s.Type]; !ok {
				reason = "no block target for section type"
			} else if converted[s.Type] == 0 {
				reason = "classification produced no valid candidate"
			}
			if reason != "" {
				leftovers = append(leftovers, leftoverSection{URL: p.URL, Section: s, Reason: reason})
			}
		}
	}
	write("-leftover", leftovers)
}

// hostnameOf extracts the hostname of a URL for snapshot file naming.
func hostnameOf(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/:?"); i >= 0 {
		host = host[:i]
	}
	return host
}
