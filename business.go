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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var orgTypeRe = regexp.MustCompile(`(?i)Organization|LocalBusiness`)

// socialDomainPatterns maps a platform to the host substrings that identify
// profile links for it. Scan order over anchors is DOM order; the first match
// per platform wins.
var socialDomainPatterns = []struct {
	platform string
	domains  []string
}{
	{"instagram", []string{"instagram.com"}},
	{"facebook", []string{"facebook.com"}},
	{"twitter", []string{"x.com", "twitter.com"}},
	{"youtube", []string{"youtube.com", "youtu.be"}},
	{"tiktok", []string{"tiktok.com"}},
	{"linkedin", []string{"linkedin.com"}},
	{"whatsapp", []string{"wa.me", "api.whatsapp.com"}},
}

// ExtractBusinessProfile assembles a best-effort business identity record
// from a rendered home page. Each field resolves independently through a
// first-non-empty precedence chain: JSON-LD structured data, then meta tags,
// then heuristic anchor scraping. A page with no recognizable signals still
// yields a profile with websiteUrl set to the origin.
func ExtractBusinessProfile(html, originURL string) *BusinessProfile {
	profile := &BusinessProfile{OpeningHours: []string{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		profile.WebsiteURL = originURL
		return profile
	}

	ld := findOrganizationLD(doc)

	profile.Name = firstNonEmpty(
		ldString(ld, "name"),
		metaContent(doc, "meta[property='og:site_name']"),
		metaContent(doc, "meta[property='og:title']"),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	profile.Description = firstNonEmpty(
		ldString(ld, "description"),
		metaContent(doc, "meta[name='description']"),
		metaContent(doc, "meta[property='og:description']"),
	)
	profile.PhoneNumber = firstNonEmpty(ldString(ld, "telephone"), firstAnchorScheme(doc, "tel:"))
	profile.Email = firstNonEmpty(ldString(ld, "email"), firstAnchorScheme(doc, "mailto:"))
	profile.Address = extractAddress(ld)
	profile.OpeningHours = extractOpeningHours(ld)
	profile.Geo = extractGeo(ld)

	profile.FaviconURL = extractFavicon(doc, originURL)
	profile.LogoURL = firstNonEmpty(resolveLDLogo(ld, originURL), profile.FaviconURL)

	canonical, _ := doc.Find("link[rel='canonical']").First().Attr("href")
	profile.WebsiteURL = firstNonEmpty(ldString(ld, "url"), strings.TrimSpace(canonical), originURL)

	profile.Social = extractSocialLinks(doc)
	return profile
}

// findOrganizationLD parses every <script type="application/ld+json"> blob,
// tolerating per-block parse failures, and returns the first object whose
// @type matches Organization or LocalBusiness. Top-level arrays and @graph
// containers are flattened one level.
func findOrganizationLD(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var parsed any
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err != nil {
			return true
		}
		candidates := flattenLD(parsed)
		for _, obj := range candidates {
			if orgTypeRe.MatchString(ldTypeOf(obj)) {
				found = obj
				return false
			}
		}
		return true
	})
	return found
}

func flattenLD(parsed any) []map[string]any {
	var objs []map[string]any
	switch v := parsed.(type) {
	case map[string]any:
		objs = append(objs, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]any); ok {
					objs = append(objs, obj)
				}
			}
		}
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
	}
	return objs
}

// ldTypeOf renders an object's @type, which may be a string or a string
// array, as a single matchable string.
func ldTypeOf(obj map[string]any) string {
	switch t := obj["@type"].(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func ldString(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// extractAddress prefers a structured PostalAddress, joining its parts in
// street/locality/region/postal/country order, over a plain string address.
func extractAddress(ld map[string]any) string {
	if ld == nil {
		return ""
	}
	switch addr := ld["address"].(type) {
	case string:
		return strings.TrimSpace(addr)
	case map[string]any:
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
			if s, ok := addr[key].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// extractOpeningHours normalizes both accepted shapes: a flat string (or
// string array) of free-form hours, and an openingHoursSpecification array of
// {dayOfWeek, opens, closes} objects rendered as "<day> <open>-<close>".
func extractOpeningHours(ld map[string]any) []string {
	hours := []string{}
	if ld == nil {
		return hours
	}

	switch oh := ld["openingHours"].(type) {
	case string:
		if s := strings.TrimSpace(oh); s != "" {
			hours = append(hours, s)
		}
	case []any:
		for _, item := range oh {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				hours = append(hours, strings.TrimSpace(s))
			}
		}
	}

	if spec, ok := ld["openingHoursSpecification"].([]any); ok {
		for _, item := range spec {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			opens, _ := obj["opens"].(string)
			closes, _ := obj["closes"].(string)
			for _, day := range ldDays(obj["dayOfWeek"]) {
				if opens != "" && closes != "" {
					hours = append(hours, fmt.Sprintf("%s %s-%s", day, opens, closes))
				}
			}
		}
	}
	return hours
}

// ldDays normalizes dayOfWeek values, which may be a string or array and may
// use schema.org URLs ("https://schema.org/Monday").
func ldDays(v any) []string {
	var raw []string
	switch d := v.(type) {
	case string:
		raw = []string{d}
	case []any:
		for _, item := range d {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	days := make([]string, 0, len(raw))
	for _, d := range raw {
		if i := strings.LastIndex(d, "/"); i >= 0 {
			d = d[i+1:]
		}
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return days
}

func extractGeo(ld map[string]any) *GeoPoint {
	if ld == nil {
		return nil
	}
	geo, ok := ld["geo"].(map[string]any)
	if !ok {
		return nil
	}
	lat, okLat := ldNumber(geo["latitude"])
	lng, okLng := ldNumber(geo["longitude"])
	if !okLat || !okLng {
		return nil
	}
	return &GeoPoint{Lat: lat, Lng: lng}
}

func ldNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// resolveLDLogo handles the two JSON-LD logo shapes: a bare URL string and an
// ImageObject with a url property.
func resolveLDLogo(ld map[string]any, originURL string) string {
	if ld == nil {
		return ""
	}
	switch logo := ld["logo"].(type) {
	case string:
		return ResolveURL(originURL, strings.TrimSpace(logo))
	case map[string]any:
		if u, ok := logo["url"].(string); ok {
			return ResolveURL(originURL, strings.TrimSpace(u))
		}
	}
	return ""
}

func extractFavicon(doc *goquery.Document, originURL string) string {
	for _, sel := range []string{"link[rel='icon']", "link[rel='shortcut icon']", "link[rel='apple-touch-icon']"} {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return ResolveURL(originURL, strings.TrimSpace(href))
		}
	}
	return strings.TrimSuffix(originURL, "/") + "/favicon.ico"
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// firstAnchorScheme returns the first anchor target using the given scheme
// ("tel:", "mailto:"), with the scheme prefix and any query stripped.
func firstAnchorScheme(doc *goquery.Document, scheme string) string {
	var value string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(strings.ToLower(href), scheme) {
			return true
		}
		value = href[len(scheme):]
		if i := strings.Index(value, "?"); i >= 0 {
			value = value[:i]
		}
		value = strings.TrimSpace(value)
		return value == ""
	})
	return value
}

// extractSocialLinks scans every anchor in DOM order against the platform
// domain patterns; the first match per platform wins.
func extractSocialLinks(doc *goquery.Document) SocialLinks {
	found := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		lower := strings.ToLower(href)
		for _, p := range socialDomainPatterns {
			if _, ok := found[p.platform]; ok {
				continue
			}
			for _, domain := range p.domains {
				if strings.Contains(lower, domain) {
					found[p.platform] = href
					break
				}
			}
		}
	})
	return SocialLinks{
		Instagram: found["instagram"],
		Facebook:  found["facebook"],
		Twitter:   found["twitter"],
		YouTube:   found["youtube"],
		TikTok:    found["tiktok"],
		LinkedIn:  found["linkedin"],
		WhatsApp:  found["whatsapp"],
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
