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
	"golang.org/x/net/html"
)

// galleryImageThreshold is the image count at which a section is treated as
// a gallery regardless of its class names.
const galleryImageThreshold = 6

// classNameSections maps class-name substrings to section types, checked in
// order. Earlier entries win when multiple substrings match.
var classNameSections = []struct {
	substr string
	typ    SectionType
}{
	{"hero", SectionHero},
	{"testimonial", SectionTestimonials},
	{"review", SectionTestimonials},
	{"galler", SectionGallery},
	{"portfolio", SectionGallery},
	{"faq", SectionFAQ},
	{"question", SectionFAQ},
	{"team", SectionTeam},
	{"staff", SectionTeam},
	{"instructor", SectionTeam},
	{"crew", SectionTeam},
	{"course", SectionCourses},
	{"training", SectionCourses},
	{"certification", SectionCourses},
	{"service", SectionServices},
	{"about", SectionAbout},
	{"contact", SectionContact},
	{"map", SectionMap},
	{"location", SectionMap},
	{"cta", SectionCTA},
	{"call-to-action", SectionCTA},
	{"banner", SectionCTA},
}

// headingKeywordSections maps lower-cased heading-text keywords to section
// types, used when class names carry no signal.
var headingKeywordSections = []struct {
	keyword string
	typ     SectionType
}{
	{"testimonial", SectionTestimonials},
	{"review", SectionTestimonials},
	{"what our", SectionTestimonials},
	{"faq", SectionFAQ},
	{"frequently asked", SectionFAQ},
	{"our team", SectionTeam},
	{"meet the", SectionTeam},
	{"course", SectionCourses},
	{"about", SectionAbout},
	{"service", SectionServices},
	{"contact", SectionContact},
	{"find us", SectionMap},
	{"galler", SectionGallery},
}

// InferSections segments a rendered page into semantically-typed regions
// using DOM heuristics: <header>/<nav> become a nav section, the first
// hero-classed or <h1>-bearing element becomes hero, each <section> and each
// top-level <div> child of <main> is classified by class-name substrings and
// content signals, and <footer> closes the list. Unclassifiable regions are
// recorded as unknown, never dropped.
func InferSections(pageURL, htmlContent string) []PageSection {
	sections := []PageSection{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return sections
	}

	consumed := make(map[*html.Node]bool)
	appendSection := func(sel *goquery.Selection, typ SectionType) {
		if sel == nil || sel.Length() == 0 || consumed[sel.Nodes[0]] {
			return
		}
		consumed[sel.Nodes[0]] = true
		sections = append(sections, buildSection(pageURL, sel, typ))
	}

	if nav := doc.Find("header, nav").First(); nav.Length() > 0 {
		appendSection(nav, SectionNav)
	}

	appendSection(findHero(doc), SectionHero)

	doc.Find("section, main > div").Each(func(_ int, sel *goquery.Selection) {
		appendSection(sel, classifySection(sel))
	})

	if footer := doc.Find("footer").First(); footer.Length() > 0 {
		appendSection(footer, SectionFooter)
	}
	return sections
}

// findHero returns the first hero-classed element, else the ancestor section
// or div of the page's first <h1>.
func findHero(doc *goquery.Document) *goquery.Selection {
	if hero := doc.Find("[class*='hero']").First(); hero.Length() > 0 {
		return hero
	}
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return nil
	}
	if container := h1.Closest("section, main > div"); container.Length() > 0 {
		return container
	}
	return h1.Parent()
}

// classifySection applies the fixed-priority heuristic: content signals
// first (gallery image threshold, contact form, testimonial headings), then
// class-name substrings, then heading keywords, ending in text/image/unknown
// as catch-alls.
func classifySection(sel *goquery.Selection) SectionType {
	imageCount := sel.Find("img").Length()
	if imageCount >= galleryImageThreshold {
		return SectionGallery
	}
	if sel.Find("form").Length() > 0 {
		return SectionContact
	}

	heading := strings.ToLower(firstHeading(sel))
	if strings.Contains(heading, "testimonial") || strings.Contains(heading, "review") {
		return SectionTestimonials
	}

	class := strings.ToLower(sel.AttrOr("class", "") + " " + sel.AttrOr("id", ""))
	for _, entry := range classNameSections {
		if strings.Contains(class, entry.substr) {
			return entry.typ
		}
	}
	for _, entry := range headingKeywordSections {
		if heading != "" && strings.Contains(heading, entry.keyword) {
			return entry.typ
		}
	}

	text := strings.TrimSpace(sel.Text())
	if text != "" && (heading != "" || sel.Find("p").Length() > 0) {
		return SectionText
	}
	if imageCount > 0 && text == "" {
		return SectionImage
	}
	return SectionUnknown
}

// buildSection materializes a PageSection from a DOM selection.
func buildSection(pageURL string, sel *goquery.Selection, typ SectionType) PageSection {
	section := PageSection{
		Type:     typ,
		Selector: cssSelectorFor(sel),
		Heading:  firstHeading(sel),
		Images:   []string{},
	}

	text := strings.Join(strings.Fields(sel.Text()), " ")
	if len(text) > 300 {
		text = text[:300]
	}
	section.TextSample = text

	seen := make(map[string]bool)
	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		abs := ResolveURL(pageURL, strings.TrimSpace(src))
		if abs != "" && !strings.HasPrefix(abs, "data:") && !seen[abs] {
			seen[abs] = true
			section.Images = append(section.Images, abs)
		}
	})

	if outer, err := goquery.OuterHtml(sel); err == nil {
		section.HTML = outer
	}
	return section
}

func firstHeading(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Find("h1, h2, h3").First().Text())
}

// cssSelectorFor builds a simple identifying selector: tag#id when an id is
// present, else tag.first-class, else the bare tag name.
func cssSelectorFor(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	tag := goquery.NodeName(sel)
	if id := strings.TrimSpace(sel.AttrOr("id", "")); id != "" {
		return tag + "#" + id
	}
	classes := strings.Fields(sel.AttrOr("class", ""))
	if len(classes) > 0 {
		return tag + "." + classes[0]
	}
	return tag
}
