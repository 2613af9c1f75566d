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

// Package siteingest implements the website-ingestion pipeline of the
// Divetide site builder: given a dive shop's existing website URL it
// discovers pages, renders them with a headless browser, mines structural
// and visual signals (colors, fonts, business identity, SEO metadata),
// segments each page into semantic sections and converts those sections
// into typed, schema-validated content blocks.
package siteingest

import "time"

// ColorPalette holds the reduced color scheme mined from a site's stylesheets.
type ColorPalette struct {
	// Primary is the single most frequent qualifying color.
	Primary string `json:"primary,omitempty"`
	// Secondary is the next distinct color in frequency order.
	Secondary string `json:"secondary,omitempty"`
	// Background is a background candidate, when one can be inferred.
	Background string `json:"background,omitempty"`
	// Accent is the third distinct color in frequency order.
	Accent string `json:"accent,omitempty"`
	// Palette is the full frequency-ranked list of color literals.
	Palette []string `json:"palette"`
}

// Fonts summarizes the font families discovered on a site.
type Fonts struct {
	// Heading is the first non-system family encountered (positional guess).
	Heading string `json:"heading,omitempty"`
	// Body is the second non-system family encountered (positional guess).
	Body string `json:"body,omitempty"`
	// Families lists all non-system families in order of appearance.
	Families []string `json:"families"`
	// Sources lists stylesheet URLs and @font-face src references the
	// families were mined from.
	Sources []string `json:"sources"`
}

// GeoPoint is a latitude/longitude pair from structured business data.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SocialLinks holds the first-seen profile URL per platform.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
}

// BusinessProfile is the best-effort identity record extracted from a
// business's home page. Each field is resolved independently via a
// first-non-empty precedence chain: structured data (JSON-LD) wins over
// meta tags, which win over heuristic anchor scraping.
type BusinessProfile struct {
	Name         string      `json:"name,omitempty"`
	Description  string      `json:"description,omitempty"`
	WebsiteURL   string      `json:"websiteUrl,omitempty"`
	LogoURL      string      `json:"logoUrl,omitempty"`
	FaviconURL   string      `json:"faviconUrl,omitempty"`
	PhoneNumber  string      `json:"phoneNumber,omitempty"`
	Email        string      `json:"email,omitempty"`
	Address      string      `json:"address,omitempty"`
	OpeningHours []string    `json:"openingHours"`
	Geo          *GeoPoint   `json:"geo,omitempty"`
	Social       SocialLinks `json:"social"`
}

// SeoMeta holds SEO-relevant metadata extracted from a rendered page.
type SeoMeta struct {
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	Canonical     string   `json:"canonical,omitempty"`
	OGTitle       string   `json:"ogTitle,omitempty"`
	OGDescription string   `json:"ogDescription,omitempty"`
	OGImage       string   `json:"ogImage,omitempty"`
	OGSiteName    string   `json:"ogSiteName,omitempty"`
	TwitterCard   string   `json:"twitterCard,omitempty"`
	TwitterTitle  string   `json:"twitterTitle,omitempty"`
	TwitterImage  string   `json:"twitterImage,omitempty"`
	// JSONLDTypes lists the @type values of every JSON-LD block on the page.
	JSONLDTypes []string `json:"jsonLdTypes,omitempty"`
}

// ImageAsset is an image discovered on a page, from either an <img> tag or
// a CSS background-image declaration.
type ImageAsset struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
	// Source is "img" or "css".
	Source string `json:"source"`
}

// RenderStats records per-page rendering metadata.
type RenderStats struct {
	// DurationMs is the wall-clock render time in milliseconds.
	DurationMs int64 `json:"durationMs"`
	// CSSCount is the number of stylesheets collected for the page.
	CSSCount int `json:"cssCount"`
	// ContentHash is the xxhash of the normalized rendered HTML, used for
	// duplicate-content detection across pages of one run.
	ContentHash string `json:"contentHash,omitempty"`
	// IsDuplicateContent is true when another page in the same run produced
	// the same content hash.
	IsDuplicateContent bool `json:"isDuplicateContent,omitempty"`
	// ScreenshotPNG is a full-page screenshot as a base64 data URL.
	ScreenshotPNG string `json:"screenshotPng,omitempty"`
}

// SectionType classifies a semantic region of a scraped page.
type SectionType string

// Section types recognized by both the heuristic and LLM segmenters.
// Anything unrecognized maps to SectionUnknown, never dropped.
const (
	SectionNav          SectionType = "nav"
	SectionHero         SectionType = "hero"
	SectionAbout        SectionType = "about"
	SectionServices     SectionType = "services"
	SectionCourses      SectionType = "courses"
	SectionGallery      SectionType = "gallery"
	SectionTestimonials SectionType = "testimonials"
	SectionFAQ          SectionType = "faq"
	SectionTeam         SectionType = "team"
	SectionContact      SectionType = "contact"
	SectionMap          SectionType = "map"
	SectionCTA          SectionType = "cta"
	SectionFooter       SectionType = "footer"
	SectionText         SectionType = "text"
	SectionImage        SectionType = "image"
	SectionUnknown      SectionType = "unknown"
)

// PageSection is a heuristically or AI-identified semantic region of a page,
// prior to classification into a block. Sections are transient: they feed the
// block classifier and the debug snapshots but are not persisted downstream.
type PageSection struct {
	Type       SectionType `json:"type"`
	Selector   string      `json:"selector,omitempty"`
	Heading    string      `json:"heading,omitempty"`
	TextSample string      `json:"textSample,omitempty"`
	Images     []string    `json:"images"`
	// Confidence and Rationale are populated by the LLM segmenter only.
	// Confidence is advisory; nothing branches on its value.
	Confidence float64 `json:"confidence,omitempty"`
	Rationale  string  `json:"rationale,omitempty"`
	// HTML is the raw section markup, carried for the block classifier.
	HTML string `json:"html,omitempty"`
}

// BlockType identifies a typed content block of the site builder.
type BlockType string

// Block types the classifier can emit.
const (
	BlockHero         BlockType = "hero"
	BlockText         BlockType = "text"
	BlockImage        BlockType = "image"
	BlockGallery      BlockType = "gallery"
	BlockTestimonials BlockType = "testimonials"
	BlockTeam         BlockType = "team"
	BlockFAQ          BlockType = "faq"
	BlockContactForm  BlockType = "contact-form"
	BlockCallToAction BlockType = "call-to-action"
	BlockVideo        BlockType = "video"
	BlockMap          BlockType = "map"
	BlockSocialFeed   BlockType = "social-feed"
	BlockDivider      BlockType = "divider"
	BlockTwoColumn    BlockType = "two-column"
	BlockCourses      BlockType = "courses"
	BlockMarineLife   BlockType = "marine-life"
)

// BlockCandidate is a proposed content block produced by the classifier.
// Invariant: Content, when present on a surfaced candidate, has passed
// validation against the block type's schema. Candidates failing validation
// are discarded, never surfaced.
type BlockCandidate struct {
	Type    BlockType `json:"type"`
	Content any       `json:"content,omitempty"`
	// SourceSectionType records which section type the candidate came from.
	SourceSectionType SectionType `json:"sourceSectionType,omitempty"`
	// Confidence is copied from the source section (default 0.8 if absent).
	// Advisory only: carried through, never branched on.
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
}

// PageAI aggregates the LLM-derived output for a page.
type PageAI struct {
	LLMBlocks  []BlockCandidate `json:"llmBlocks"`
	Notes      string           `json:"notes,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// ScrapedPage holds everything extracted from one rendered URL. Instances are
// immutable once produced by scrapePage.
type ScrapedPage struct {
	URL             string           `json:"url"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title,omitempty"`
	HTML            string           `json:"html,omitempty"`
	Text            string           `json:"text,omitempty"`
	Sections        []PageSection    `json:"sections"`
	BlockCandidates []BlockCandidate `json:"blockCandidates"`
	Images          []ImageAsset     `json:"images"`
	SEO             SeoMeta          `json:"seo"`
	Render          *RenderStats     `json:"render,omitempty"`
	AI              *PageAI          `json:"ai,omitempty"`
}

// SiteMapNode is a node of the discovered site structure.
type SiteMapNode struct {
	URL      string        `json:"url"`
	Title    string        `json:"title,omitempty"`
	Children []SiteMapNode `json:"children,omitempty"`
}

// SiteScrape is the root aggregate of one ingestion run. It is created once
// per run, owned exclusively by the orchestrator for the duration of that
// run, and immutable after construction.
type SiteScrape struct {
	TargetURL       string           `json:"targetUrl"`
	CrawledAt       time.Time        `json:"crawledAt"`
	Colors          ColorPalette     `json:"colors"`
	Fonts           Fonts            `json:"fonts"`
	Business        *BusinessProfile `json:"business,omitempty"`
	Sitemap         []SiteMapNode    `json:"sitemap"`
	Pages           []ScrapedPage    `json:"pages"`
	RobotsTxt       string           `json:"robotsTxt,omitempty"`
	SitemapXMLURLs  []string         `json:"sitemapXmlUrls"`
	Errors          []string         `json:"errors"`
	RenderCSSSample []string         `json:"renderCssSample"`
}

// Progress reports a coarse pipeline milestone to the surrounding task queue.
type Progress struct {
	// Percentage is 0-100.
	Percentage int `json:"percentage"`
	// Current and Total count pipeline steps, not pages.
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	// PartialResult carries the in-flight aggregate at later milestones.
	PartialResult *SiteScrape `json:"partialResult,omitempty"`
}

// ProgressFunc receives Progress updates. It is the sole coupling between
// the pipeline and the job/task-queue system that invokes it.
type ProgressFunc func(Progress)

// ShopPage is one page of the derived shop projection.
type ShopPage struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// ShopImport is the derived projection consumed by the shop/page/block
// persistence layer downstream of this pipeline.
type ShopImport struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Address        string     `json:"address"`
	PhoneNumber    string     `json:"phoneNumber"`
	Email          string     `json:"email"`
	FacebookURL    string     `json:"facebookUrl"`
	InstagramURL   string     `json:"instagramUrl"`
	WhatsappURL    string     `json:"whatsappUrl"`
	LogoURL        string     `json:"logoUrl"`
	FaviconURL     string     `json:"faviconUrl"`
	PrimaryColor   string     `json:"primaryColor"`
	SecondaryColor string     `json:"secondaryColor"`
	AccentColor    string     `json:"accentColor"`
	Images         []string   `json:"images"`
	Pages          []ShopPage `json:"pages"`
}

// ShopImport derives the downstream projection from a completed scrape.
func (s *SiteScrape) ShopImport() ShopImport {
	imp := ShopImport{
		PrimaryColor:   s.Colors.Primary,
		SecondaryColor: s.Colors.Secondary,
		AccentColor:    s.Colors.Accent,
		Images:         []string{},
		Pages:          []ShopPage{},
	}
	if b := s.Business; b != nil {
		imp.Name = b.Name
		imp.Description = b.Description
		imp.Address = b.Address
		imp.PhoneNumber = b.PhoneNumber
		imp.Email = b.Email
		imp.FacebookURL = b.Social.Facebook
		imp.InstagramURL = b.Social.Instagram
		imp.WhatsappURL = b.Social.WhatsApp
		imp.LogoURL = b.LogoURL
		imp.FaviconURL = b.FaviconURL
	}
	seen := make(map[string]bool)
	for _, p := range s.Pages {
		for _, img := range p.Images {
			if img.URL != "" && !seen[img.URL] {
				imp.Images = append(imp.Images, img.URL)
				seen[img.URL] = true
			}
		}
		imp.Pages = append(imp.Pages, ShopPage{
			Title:   p.Title,
			URL:     p.URL,
			Content: p.Text,
		})
	}
	return imp
}
