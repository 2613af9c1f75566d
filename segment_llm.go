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
	"strings"

	"go.uber.org/zap"
)

// maxPromptHTML bounds how much page HTML is sent to the LLM.
const maxPromptHTML = 60000

// sectionTypeList is the closed set both segmenters emit, in prompt order.
var sectionTypeList = []SectionType{
	SectionNav, SectionHero, SectionAbout, SectionServices, SectionCourses,
	SectionGallery, SectionTestimonials, SectionFAQ, SectionTeam,
	SectionContact, SectionMap, SectionCTA, SectionFooter, SectionText,
	SectionImage, SectionUnknown,
}

var knownSectionTypes = func() map[SectionType]bool {
	m := make(map[SectionType]bool, len(sectionTypeList))
	for _, t := range sectionTypeList {
		m[t] = true
	}
	return m
}()

type llmSectionResponse struct {
	Sections []struct {
		Type        string   `json:"type"`
		Title       string   `json:"title"`
		ContentText string   `json:"contentText"`
		Images      []string `json:"images"`
		Confidence  float64  `json:"confidence"`
		Rationale   string   `json:"rationale"`
		HTML        string   `json:"html"`
	} `json:"sections"`
}

// SegmentWithLLM asks the LLM to split a rendered page into typed sections.
// Any failure at this boundary, from the call itself to unparsable output,
// degrades to an empty section list: the page is still processed, it just
// yields zero block candidates.
func SegmentWithLLM(ctx context.Context, completer Completer, pageHTML, pageText string, logger *zap.Logger) []PageSection {
	if logger == nil {
		logger = zap.NewNop()
	}

	messages := []ChatMessage{
		{Role: "system", Content: segmentSystemPrompt()},
		{Role: "user", Content: fmt.Sprintf(
			"Segment this web page into sections.\n\nPlain text:\n%s\n\nHTML:\n%s",
			truncate(pageText, 8000), truncate(pageHTML, maxPromptHTML))},
	}

	raw, err := completer.Complete(ctx, messages)
	if err != nil {
		logger.Warn("LLM segmentation failed", zap.Error(err))
		return []PageSection{}
	}

	var parsed llmSectionResponse
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &parsed); err != nil {
		logger.Warn("LLM segmentation returned unparsable JSON", zap.Error(err))
		return []PageSection{}
	}

	sections := make([]PageSection, 0, len(parsed.Sections))
	for _, s := range parsed.Sections {
		typ := SectionType(strings.ToLower(strings.TrimSpace(s.Type)))
		if !knownSectionTypes[typ] {
			// Recorded as-is for debugging; the classifier will not find a
			// target block type for it and skips it.
			logger.Debug("LLM returned unrecognized section type", zap.String("type", s.Type))
		}
		images := s.Images
		if images == nil {
			images = []string{}
		}
		sections = append(sections, PageSection{
			Type:       typ,
			Heading:    s.Title,
			TextSample: s.ContentText,
			Images:     images,
			Confidence: s.Confidence,
			Rationale:  s.Rationale,
			HTML:       s.HTML,
		})
	}
	return sections
}

func segmentSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You analyze dive shop web pages and segment them into semantic sections.\n")
	b.WriteString("Respond with JSON only: {\"sections\": [{\"type\", \"title\", \"contentText\", \"images\", \"confidence\", \"rationale\", \"html\"}]}.\n")
	b.WriteString("confidence is a number between 0 and 1.\n\nValid section types:\n")
	for _, typ := range sectionTypeList {
		b.WriteString("- ")
		b.WriteString(string(typ))
		if block, ok := sectionTypeTargets[typ]; ok {
			b.WriteString(": ")
			b.WriteString(blockDescriptions[block])
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUse \"unknown\" when nothing fits. Every visible region of the page must be covered by some section.")
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
