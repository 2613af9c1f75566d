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
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// backgroundImageRe matches url(...) references inside background and
// background-image declarations.
var backgroundImageRe = regexp.MustCompile(`(?i)background(?:-image)?\s*:\s*[^;}]*?url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// ExtractVisibleText returns all visible text of a rendered page with tags
// removed and whitespace collapsed. Navigation, headers and footers are
// included; the section segmenter is responsible for finer-grained slicing.
func ExtractVisibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ExtractSeoMeta pulls SEO-relevant metadata from rendered HTML: the title,
// description and canonical link, OpenGraph and Twitter Card tags, and the
// @type values of every JSON-LD block on the page.
func ExtractSeoMeta(html string) SeoMeta {
	var seo SeoMeta
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return seo
	}

	seo.Title = strings.TrimSpace(doc.Find("title").First().Text())
	seo.Description = metaContent(doc, "meta[name='description']")
	seo.Canonical, _ = doc.Find("link[rel='canonical']").First().Attr("href")
	seo.Canonical = strings.TrimSpace(seo.Canonical)
	seo.OGTitle = metaContent(doc, "meta[property='og:title']")
	seo.OGDescription = metaContent(doc, "meta[property='og:description']")
	seo.OGImage = metaContent(doc, "meta[property='og:image']")
	seo.OGSiteName = metaContent(doc, "meta[property='og:site_name']")
	seo.TwitterCard = metaContent(doc, "meta[name='twitter:card']")
	seo.TwitterTitle = metaContent(doc, "meta[name='twitter:title']")
	seo.TwitterImage = metaContent(doc, "meta[name='twitter:image']")
	seo.JSONLDTypes = extractJSONLDTypes(html)
	return seo
}

// extractJSONLDTypes lists the @type of every ld+json script on the page,
// in document order, tolerating unparsable blocks.
func extractJSONLDTypes(html string) []string {
	doc, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var types []string
	for _, node := range htmlquery.Find(doc, "//script[@type='application/ld+json']") {
		var parsed any
		if err := json.Unmarshal([]byte(htmlquery.InnerText(node)), &parsed); err != nil {
			continue
		}
		for _, obj := range flattenLD(parsed) {
			if t := ldTypeOf(obj); t != "" {
				types = append(types, t)
			}
		}
	}
	return types
}

// ExtractImages collects image assets from a rendered page: every <img> with
// a src, plus background-image url() references mined from inline style
// attributes and the fetched stylesheet blobs. URLs are resolved against the
// page URL and deduplicated, first occurrence wins.
func ExtractImages(pageURL, html string, cssBlobs []string) []ImageAsset {
	assets := []ImageAsset{}
	seen := make(map[string]bool)
	add := func(rawURL, alt, source string) {
		abs := ResolveURL(pageURL, strings.TrimSpace(rawURL))
		if abs == "" || strings.HasPrefix(abs, "data:") || seen[abs] {
			return
		}
		seen[abs] = true
		assets = append(assets, ImageAsset{URL: abs, Alt: alt, Source: source})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
			src, _ := sel.Attr("src")
			alt, _ := sel.Attr("alt")
			add(src, strings.TrimSpace(alt), "img")
		})
		doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
			style, _ := sel.Attr("style")
			for _, m := range backgroundImageRe.FindAllStringSubmatch(style, -1) {
				add(m[1], "", "css")
			}
		})
	}

	for _, blob := range cssBlobs {
		for _, m := range backgroundImageRe.FindAllStringSubmatch(blob, -1) {
			add(m[1], "", "css")
		}
	}
	return assets
}
