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
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// colorLiteralRe matches hex (#RGB/#RGBA/#RRGGBB/#RRGGBBAA), rgb()/rgba()
	// and hsl()/hsla() color literals.
	colorLiteralRe = regexp.MustCompile(`(?i)#(?:[0-9a-f]{8}|[0-9a-f]{6}|[0-9a-f]{3,4})\b|rgba?\([^)]*\)|hsla?\([^)]*\)`)

	fontFamilyRe  = regexp.MustCompile(`(?i)font-family\s*:\s*([^;}"]+(?:"[^"]*"[^;}]*)*)`)
	fontFaceSrcRe = regexp.MustCompile(`(?i)src\s*:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`)
)

// excludedColors are uninformative literals (pure black/white/transparent)
// that never appear in the ranked palette.
var excludedColors = map[string]bool{
	"#fff":                   true,
	"#ffffff":                true,
	"#000":                   true,
	"#000000":                true,
	"rgb(255,255,255)":       true,
	"rgb(0,0,0)":             true,
	"rgba(0,0,0,0)":          true,
	"rgba(255,255,255,0)":    true,
	"rgba(255,255,255,1)":    true,
	"rgba(0,0,0,1)":          true,
	"hsl(0,0%,0%)":           true,
	"hsl(0,0%,100%)":         true,
}

// systemFontNames are generic and platform-default families that carry no
// branding signal.
var systemFontNames = map[string]bool{
	"system-ui":          true,
	"-apple-system":      true,
	"blinkmacsystemfont": true,
	"segoe ui":           true,
	"sans-serif":         true,
	"serif":              true,
	"monospace":          true,
	"cursive":            true,
	"fantasy":            true,
	"ui-sans-serif":      true,
	"ui-serif":           true,
	"ui-monospace":       true,
	"ui-rounded":         true,
	"arial":              true,
	"helvetica":          true,
	"helvetica neue":     true,
	"times new roman":    true,
	"times":              true,
	"inherit":            true,
	"initial":            true,
	"unset":              true,
}

// ScoreColorsFromCSS mines color literals from CSS text blobs and returns
// them ranked by frequency, most frequent first. Matches are lower-cased for
// deduplication; pure black/white/transparent are excluded. The ordering is a
// pure function of the input: ties break on first appearance.
func ScoreColorsFromCSS(cssBlobs []string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, blob := range cssBlobs {
		for _, match := range colorLiteralRe.FindAllString(blob, -1) {
			color := strings.ToLower(strings.ReplaceAll(match, " ", ""))
			if excludedColors[color] {
				continue
			}
			if _, ok := counts[color]; !ok {
				firstSeen[color] = order
				order++
			}
			counts[color]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for color := range counts {
		ranked = append(ranked, color)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})
	return ranked
}

// PickPalette reduces a frequency-ranked color list to the palette slots.
// Primary is always the single most frequent qualifying color; secondary and
// accent are the next distinct colors in rank order. Background is the first
// ranked color light enough to plausibly be a page background.
func PickPalette(ranked []string) ColorPalette {
	p := ColorPalette{Palette: ranked}
	if len(ranked) > 0 {
		p.Primary = ranked[0]
	}
	if len(ranked) > 1 {
		p.Secondary = ranked[1]
	}
	if len(ranked) > 2 {
		p.Accent = ranked[2]
	}
	for _, c := range ranked {
		if lum, ok := hexLuminance(c); ok && lum > 0.85 {
			p.Background = c
			break
		}
	}
	return p
}

// hexLuminance returns the relative luminance of a #rrggbb literal.
func hexLuminance(color string) (float64, bool) {
	if len(color) != 7 || !strings.HasPrefix(color, "#") {
		return 0, false
	}
	r, err1 := strconv.ParseInt(color[1:3], 16, 0)
	g, err2 := strconv.ParseInt(color[3:5], 16, 0)
	b, err3 := strconv.ParseInt(color[5:7], 16, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255, true
}

// IsNonSystemFont reports whether a family name carries branding signal,
// i.e. is not a generic or platform-default font.
func IsNonSystemFont(family string) bool {
	name := strings.ToLower(strings.TrimSpace(family))
	if name == "" {
		return false
	}
	return !systemFontNames[name]
}

// ExtractFonts mines font families from stylesheet text, inline style
// attributes and Google Fonts <link> tags in the rendered HTML. The first
// two surviving families become the heading/body guesses; these are
// positional heuristics based on order of appearance, not measurements of
// what is actually used on headings.
func ExtractFonts(cssBlobs []string, cssURLs []string, html string) Fonts {
	fonts := Fonts{Families: []string{}, Sources: []string{}}
	seenFamily := make(map[string]bool)
	seenSource := make(map[string]bool)

	addFamily := func(raw string) {
		for _, part := range strings.Split(raw, ",") {
			family := strings.Trim(strings.TrimSpace(part), `'"`)
			// Drop Google-Fonts style weight suffixes ("Open Sans:400,700").
			if i := strings.Index(family, ":"); i >= 0 {
				family = family[:i]
			}
			if family == "" || !IsNonSystemFont(family) {
				continue
			}
			if !seenFamily[strings.ToLower(family)] {
				seenFamily[strings.ToLower(family)] = true
				fonts.Families = append(fonts.Families, family)
			}
		}
	}
	addSource := func(src string) {
		if src != "" && !seenSource[src] {
			seenSource[src] = true
			fonts.Sources = append(fonts.Sources, src)
		}
	}

	for i, blob := range cssBlobs {
		matched := false
		for _, m := range fontFamilyRe.FindAllStringSubmatch(blob, -1) {
			addFamily(m[1])
			matched = true
		}
		for _, m := range fontFaceSrcRe.FindAllStringSubmatch(blob, -1) {
			addSource(strings.TrimSpace(m[1]))
			matched = true
		}
		if matched && i < len(cssURLs) {
			addSource(cssURLs[i])
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
			style, _ := sel.Attr("style")
			for _, m := range fontFamilyRe.FindAllStringSubmatch(style, -1) {
				addFamily(m[1])
			}
		})
		doc.Find("link[href*='fonts.googleapis.com']").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addSource(href)
			for _, family := range googleFontFamilies(href) {
				addFamily(family)
			}
		})
	}

	if len(fonts.Families) > 0 {
		fonts.Heading = fonts.Families[0]
	}
	if len(fonts.Families) > 1 {
		fonts.Body = fonts.Families[1]
	} else if len(fonts.Families) == 1 {
		fonts.Body = fonts.Families[0]
	}
	return fonts
}

// googleFontFamilies parses family names out of a Google Fonts CSS URL,
// supporting both the classic family=A|B and the v2 family=A&family=B forms.
func googleFontFamilies(href string) []string {
	i := strings.Index(href, "?")
	if i < 0 {
		return nil
	}
	var families []string
	for _, param := range strings.Split(href[i+1:], "&") {
		if !strings.HasPrefix(param, "family=") {
			continue
		}
		value := strings.TrimPrefix(param, "family=")
		for _, f := range strings.Split(value, "|") {
			f = strings.ReplaceAll(f, "+", " ")
			if j := strings.Index(f, ":"); j >= 0 {
				f = f[:j]
			}
			if f != "" {
				families = append(families, f)
			}
		}
	}
	return families
}
