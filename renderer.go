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
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/gobwas/glob"
)

// trackingDomainPatterns match third-party tracking/analytics hosts whose
// resource loads are aborted during rendering. Blocking these reduces noise
// and load time without touching the page's own assets.
var trackingDomainPatterns = []string{
	"*google-analytics.com",
	"*googletagmanager.com",
	"*doubleclick.net",
	"*connect.facebook.net",
	"*hotjar.com",
	"*segment.io",
	"*segment.com",
	"*clarity.ms",
	"*mixpanel.com",
	"*fullstory.com",
	"*intercom.io",
	"*hs-analytics.net",
	"*hs-scripts.com",
}

// blockedResourceTypes are the resource classes aborted when they originate
// from a tracking domain.
var blockedResourceTypes = map[network.ResourceType]bool{
	network.ResourceTypeImage:      true,
	network.ResourceTypeMedia:      true,
	network.ResourceTypeFont:       true,
	network.ResourceTypeStylesheet: true,
	network.ResourceTypeScript:     true,
}

var trackingGlobs = compileTrackingGlobs(trackingDomainPatterns)

func compileTrackingGlobs(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p))
	}
	return globs
}

// isTrackingHost reports whether a request URL's host matches a known
// tracking/analytics domain pattern.
func isTrackingHost(requestURL string) bool {
	host := requestURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/:?"); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)
	for _, g := range trackingGlobs {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// RenderResult is the outcome of rendering a single page.
type RenderResult struct {
	// HTML is the final post-JavaScript document markup.
	HTML string
	// CSSURLs merges stylesheet URLs observed on the wire (responses with a
	// text/css content type) with <link rel=stylesheet> hrefs parsed from
	// the final HTML, deduplicated.
	CSSURLs []string
	// ScreenshotPNG is a full-page screenshot as a base64 data URL.
	ScreenshotPNG string
}

// Renderer drives a headless browser to fully render pages, including
// client-side JavaScript. One browser instance is launched lazily on the
// first Render call and reused until Close. A Renderer is not safe for
// concurrent Render calls; the pipeline is strictly sequential.
type Renderer struct {
	timeout time.Duration

	initOnce    sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewRenderer creates a Renderer. A zero timeout selects the 45s default
// navigation bound.
func NewRenderer(timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Renderer{timeout: timeout}
}

// init launches the browser allocator on first use.
func (r *Renderer) init() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Close releases the browser. Safe to call when Render was never invoked.
func (r *Renderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// Render navigates to url, waits for the page to settle, and returns the
// rendered HTML, collected stylesheet URLs and a full-page screenshot.
// Navigation errors and timeouts propagate to the caller; the orchestrator
// treats them as page failure, not process failure.
func (r *Renderer) Render(pageURL string) (*RenderResult, error) {
	r.initOnce.Do(r.init)

	ctx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cssSet := make(map[string]bool)
	var mu sync.Mutex

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventRequestPaused:
			// Interception decisions must not block the event loop.
			go func() {
				c := chromedp.FromContext(ctx)
				ectx := cdp.WithExecutor(ctx, c.Target)
				if isTrackingHost(ev.Request.URL) && blockedResourceTypes[ev.ResourceType] {
					_ = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
					return
				}
				_ = fetch.ContinueRequest(ev.RequestID).Do(ectx)
			}()
		case *network.EventResponseReceived:
			if strings.Contains(strings.ToLower(ev.Response.MimeType), "text/css") {
				mu.Lock()
				cssSet[ev.Response.URL] = true
				mu.Unlock()
			}
		}
	})

	var htmlContent string
	var screenshot []byte
	err := chromedp.Run(ctx,
		network.Enable(),
		fetch.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Allow client-side frameworks to hydrate before reading the DOM.
		chromedp.Sleep(1500*time.Millisecond),
		// Scroll to the bottom to trigger lazy-loaded images, then back up
		// so the screenshot starts at the top of the page.
		chromedp.Evaluate(`window.scrollTo({top: document.body.scrollHeight, behavior: 'instant'})`, nil),
		chromedp.Sleep(1000*time.Millisecond),
		chromedp.Evaluate(`window.scrollTo({top: 0, behavior: 'instant'})`, nil),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
		chromedp.FullScreenshot(&screenshot, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	mu.Lock()
	cssURLs := make([]string, 0, len(cssSet))
	for u := range cssSet {
		cssURLs = append(cssURLs, u)
	}
	mu.Unlock()
	cssURLs = mergeStylesheetLinks(pageURL, htmlContent, cssURLs)

	return &RenderResult{
		HTML:          htmlContent,
		CSSURLs:       cssURLs,
		ScreenshotPNG: "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot),
	}, nil
}

// mergeStylesheetLinks unions wire-observed CSS URLs with the
// <link rel=stylesheet> hrefs found by statically parsing the final HTML.
func mergeStylesheetLinks(pageURL, html string, cssURLs []string) []string {
	merged := append([]string{}, cssURLs...)
	seen := make(map[string]bool, len(cssURLs))
	for _, u := range cssURLs {
		seen[u] = true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return merged
	}
	doc.Find("link[rel='stylesheet'][href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := ResolveURL(pageURL, href)
		if abs != "" && !seen[abs] {
			seen[abs] = true
			merged = append(merged, abs)
		}
	})
	return merged
}
