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
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Discovery is the outcome of URL discovery for a target site.
type Discovery struct {
	// URLs is the deduplicated candidate page set, in discovery order.
	URLs []string
	// SitemapXMLURLs lists the sitemap documents that contributed URLs.
	SitemapXMLURLs []string
}

// DiscoverURLs resolves the candidate page set for a site. Sitemaps are
// tried first (robots.txt Sitemap: directives, then /sitemap.xml); when they
// yield nothing, a same-origin breadth-first crawl seeded at targetURL runs
// as fallback, bounded by maxPages and filtered through robots rules.
// Individual fetch failures are swallowed; discovery itself never fails.
func DiscoverURLs(fetcher *Fetcher, robots *Robots, targetURL string, maxPages int, logger *zap.Logger) Discovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	origin, err := ToOrigin(targetURL)
	if err != nil {
		return Discovery{URLs: []string{targetURL}}
	}

	var d Discovery
	seen := make(map[string]bool)
	for _, loc := range resolveSitemapLocations(robots, origin) {
		urls, err := FetchSitemapURLs(fetcher, loc)
		if err != nil {
			logger.Warn("sitemap fetch failed", zap.String("sitemap", loc), zap.Error(err))
			continue
		}
		if len(urls) > 0 {
			d.SitemapXMLURLs = append(d.SitemapXMLURLs, loc)
		}
		for _, u := range urls {
			normalized, err := NormalizeURL(targetURL, u)
			if err != nil {
				continue
			}
			if !seen[normalized] {
				seen[normalized] = true
				d.URLs = append(d.URLs, normalized)
			}
		}
	}

	if len(d.URLs) == 0 {
		logger.Info("no sitemap URLs found, falling back to crawl",
			zap.String("target", targetURL), zap.Int("maxPages", maxPages))
		d.URLs = crawlSameOrigin(fetcher, robots, targetURL, maxPages, logger)
	}
	return d
}

// crawlSameOrigin walks anchor links breadth-first from start, visiting at
// most maxPages pages on the same origin and honoring robots rules. Page
// fetch failures are skipped, never fatal.
func crawlSameOrigin(fetcher *Fetcher, robots *Robots, start string, maxPages int, logger *zap.Logger) []string {
	if maxPages <= 0 {
		maxPages = 25
	}

	normalized, err := NormalizeURL(start, start)
	if err != nil {
		normalized = start
	}

	visited := make(map[string]bool)
	queue := []string{normalized}
	var pages []string

	for len(queue) > 0 && len(pages) < maxPages {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		if !robots.IsAllowed(current) {
			logger.Debug("skipping disallowed URL", zap.String("url", current))
			continue
		}

		body, err := fetcher.FetchText(current)
		if err != nil {
			logger.Warn("crawl fetch failed", zap.String("url", current), zap.Error(err))
			continue
		}
		pages = append(pages, current)

		for _, link := range extractAnchorLinks(current, body) {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}
	return pages
}

// extractAnchorLinks returns the same-origin anchor targets of an HTML page.
func extractAnchorLinks(pageURL, html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}
		normalized, err := NormalizeURL(pageURL, href)
		if err != nil {
			// Cross-origin and malformed links alike are simply not followed.
			return
		}
		if !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	})
	return links
}
