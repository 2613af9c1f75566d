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
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ParseSitemapXML extracts page URLs from sitemap XML. Both <urlset> leaf
// sitemaps and <sitemapindex> documents are supported; nested sitemap <loc>
// values from an index are returned as candidate URLs at one level, they are
// not re-fetched recursively.
func ParseSitemapXML(xml string) ([]string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(xml))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}

	var urls []string
	for _, n := range xmlquery.Find(doc, "//url/loc") {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			urls = append(urls, loc)
		}
	}
	for _, n := range xmlquery.Find(doc, "//sitemap/loc") {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// FetchSitemapURLs fetches one sitemap URL and returns the page URLs it
// lists. Fetch and parse failures are reported so the caller can skip the
// sitemap without aborting discovery.
func FetchSitemapURLs(fetcher *Fetcher, sitemapURL string) ([]string, error) {
	body, err := fetcher.FetchText(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}
	return ParseSitemapXML(body)
}

// resolveSitemapLocations returns the sitemap URLs to try for an origin:
// every Sitemap: directive from robots.txt plus the conventional
// {origin}/sitemap.xml when robots did not already list it.
func resolveSitemapLocations(robots *Robots, origin string) []string {
	locations := append([]string{}, robots.SitemapURLs...)
	conventional := strings.TrimSuffix(origin, "/") + "/sitemap.xml"
	listed := false
	for _, loc := range locations {
		if loc == conventional {
			listed = true
			break
		}
	}
	if !listed {
		locations = append(locations, conventional)
	}
	return locations
}
