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
	"errors"
	"strings"
	"testing"

	"github.com/divetide/siteingest/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fetchRenderer stands in for the headless browser in tests: it fetches the
// raw HTML over plain HTTP and reports stylesheet links parsed from it.
type fetchRenderer struct {
	fetcher *Fetcher
	err     error
	closed  bool
}

func (r *fetchRenderer) Render(url string) (*RenderResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	html, err := r.fetcher.FetchText(url)
	if err != nil {
		return nil, err
	}
	return &RenderResult{HTML: html, CSSURLs: mergeStylesheetLinks(url, html, nil)}, nil
}

func (r *fetchRenderer) Close() { r.closed = true }

func scrapeOptions(t *testing.T, targetURL string) Options {
	t.Helper()
	fetcher := NewFetcher(0)
	return Options{
		TargetURL: targetURL,
		fetcher:   fetcher,
		renderer:  &fetchRenderer{fetcher: fetcher},
	}
}

func TestScrapeSiteHeuristicPipeline(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)

	require.NotNil(t, result.Business)
	assert.Equal(t, "Blue Divers", result.Business.Name)
	assert.Equal(t, "+1-555-0100", result.Business.PhoneNumber)

	assert.Equal(t, "#2563eb", result.Colors.Primary)
	assert.Contains(t, result.Fonts.Families, "Open Sans")

	require.Len(t, result.Pages, 1)
	page := result.Pages[0]
	assert.Equal(t, "home", page.Slug)
	assert.Equal(t, "Blue Divers - Dive Center", page.Title)
	assert.NotNil(t, findSection(page.Sections, SectionHero))
	assert.Empty(t, page.BlockCandidates)
	assert.Nil(t, page.AI)
	require.NotNil(t, page.Render)
	assert.NotEmpty(t, page.Render.ContentHash)

	assert.NotEmpty(t, result.SitemapXMLURLs)
	require.Len(t, result.Sitemap, 1)
	assert.Len(t, result.Sitemap[0].Children, 2)
	assert.Contains(t, result.RobotsTxt, "Sitemap:")
	assert.Empty(t, result.Errors)
}

func TestScrapeSiteLLMPipeline(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")
	opts.Completer = completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		if strings.Contains(messages[0].Content, "segment them into semantic sections") {
			return `{"sections": [
				{"type": "hero", "title": "Dive the Reef with Blue Divers", "confidence": 0.9},
				{"type": "footer", "title": ""}
			]}`, nil
		}
		return `{"title": "Dive the Reef with Blue Divers", "ctaText": "Book a dive"}`, nil
	})

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	page := result.Pages[0]
	require.Len(t, page.Sections, 2)
	require.Len(t, page.BlockCandidates, 1)

	candidate := page.BlockCandidates[0]
	assert.Equal(t, BlockHero, candidate.Type)
	assert.Equal(t, SectionHero, candidate.SourceSectionType)
	assert.InDelta(t, 0.9, candidate.Confidence, 0.001)

	require.NotNil(t, page.AI)
	assert.InDelta(t, 0.9, page.AI.Confidence, 0.001)
}

func TestScrapeSiteDegradesWhenLLMFails(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")
	opts.Completer = completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return "", errors.New("model overloaded")
	})

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)

	// Style and business extraction do not depend on the LLM.
	require.NotNil(t, result.Business)
	assert.Equal(t, "Blue Divers", result.Business.Name)

	require.Len(t, result.Pages, 1)
	assert.Empty(t, result.Pages[0].Sections)
	assert.Empty(t, result.Pages[0].BlockCandidates)
}

func TestScrapeSiteProcessAllPages(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")
	opts.ProcessAllPages = true

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Pages, 3)

	slugs := make([]string, 0, len(result.Pages))
	for _, p := range result.Pages {
		slugs = append(slugs, p.Slug)
	}
	assert.Contains(t, slugs, "home")
	assert.Contains(t, slugs, "about")
	assert.Contains(t, slugs, "courses")
}

func TestScrapeSiteCrawlFallback(t *testing.T) {
	server := testutil.NewTestServer(testutil.WithoutSitemap())
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.SitemapXMLURLs)
	require.Len(t, result.Sitemap, 1)
	assert.NotEmpty(t, result.Sitemap[0].Children)
}

func TestScrapeSiteHomeRenderFailure(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	fetcher := NewFetcher(0)
	opts := Options{
		TargetURL: server.URL + "/",
		fetcher:   fetcher,
		renderer:  &fetchRenderer{fetcher: fetcher, err: errors.New("browser crashed")},
	}

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)

	assert.Nil(t, result.Business)
	assert.Empty(t, result.Colors.Palette)
	assert.NotEmpty(t, result.Errors)

	// The failed page is still present, just minimal.
	require.Len(t, result.Pages, 1)
	assert.Equal(t, server.URL+"/", result.Pages[0].URL)
	assert.Nil(t, result.Pages[0].Render)
}

func TestScrapeSiteRejectsInvalidTarget(t *testing.T) {
	_, err := ScrapeSite(context.Background(), Options{TargetURL: "https://192.168.1.1/"})
	assert.Error(t, err)

	_, err = ScrapeSite(context.Background(), Options{TargetURL: "not a url"})
	assert.Error(t, err)
}

func TestScrapeSiteProgressMilestones(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")

	var percentages []int
	opts.Progress = func(p Progress) {
		percentages = append(percentages, p.Percentage)
		assert.Equal(t, pipelineSteps, p.Total)
		assert.NotEmpty(t, p.Message)
	}

	_, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 20, 40, 80, 100}, percentages)
}

func TestScrapeSiteDuplicateContentDetection(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	fetcher := NewFetcher(0)
	opts := Options{
		TargetURL:       server.URL + "/",
		ProcessAllPages: true,
		fetcher:         fetcher,
		renderer:        &sameHTMLRenderer{},
	}

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Pages, 3)
	assert.False(t, result.Pages[0].Render.IsDuplicateContent)
	assert.True(t, result.Pages[1].Render.IsDuplicateContent)
	assert.True(t, result.Pages[2].Render.IsDuplicateContent)
}

// sameHTMLRenderer returns identical markup for every URL.
type sameHTMLRenderer struct{}

func (r *sameHTMLRenderer) Render(url string) (*RenderResult, error) {
	return &RenderResult{HTML: "<html><body><p>Same everywhere</p></body></html>"}, nil
}

func (r *sameHTMLRenderer) Close() {}

func TestScrapeSiteClosesRenderer(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	fetcher := NewFetcher(0)
	renderer := &fetchRenderer{fetcher: fetcher}
	opts := Options{TargetURL: server.URL + "/", fetcher: fetcher, renderer: renderer}

	_, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, renderer.closed)
}

func TestShopImportProjection(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	opts := scrapeOptions(t, server.URL+"/")

	result, err := ScrapeSite(context.Background(), opts)
	require.NoError(t, err)

	imp := result.ShopImport()
	assert.Equal(t, "Blue Divers", imp.Name)
	assert.Equal(t, "+1-555-0100", imp.PhoneNumber)
	assert.Equal(t, "#2563eb", imp.PrimaryColor)
	assert.Equal(t, "https://instagram.com/bluedivers", imp.InstagramURL)
	assert.NotEmpty(t, imp.Images)
	require.Len(t, imp.Pages, 1)
	assert.Equal(t, server.URL+"/", imp.Pages[0].URL)
	assert.NotEmpty(t, imp.Pages[0].Content)
}

func TestBuildSiteMapTree(t *testing.T) {
	nodes := buildSiteMapTree("https://bluedivers.example/", []string{
		"https://bluedivers.example/",
		"https://bluedivers.example/about",
		"https://bluedivers.example/courses",
	})
	require.Len(t, nodes, 1)
	assert.Equal(t, "https://bluedivers.example/", nodes[0].URL)
	assert.Len(t, nodes[0].Children, 2)
}

func TestValidateSiteScrapeRejectsBrokenAggregate(t *testing.T) {
	assert.Error(t, validateSiteScrape(&SiteScrape{}))

	ok := &SiteScrape{
		TargetURL:      "https://bluedivers.example/",
		Colors:         ColorPalette{Palette: []string{}},
		Fonts:          Fonts{Families: []string{}, Sources: []string{}},
		Sitemap:        []SiteMapNode{},
		Pages:          []ScrapedPage{},
		SitemapXMLURLs: []string{},
		Errors:         []string{},
	}
	assert.NoError(t, validateSiteScrape(ok))
}

func TestHostnameOf(t *testing.T) {
	assert.Equal(t, "bluedivers.example", hostnameOf("https://bluedivers.example/path?q=1"))
	assert.Equal(t, "localhost", hostnameOf("http://localhost:8080/"))
}
