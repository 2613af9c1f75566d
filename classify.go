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

// defaultBlockConfidence is assigned when the source section carries no
// confidence score.
const defaultBlockConfidence = 0.8

// ConvertSectionToBlock asks the LLM to produce content for the block type a
// section maps to, then validates the result against that type's schema.
// Validation is authoritative and final: a candidate that fails it is
// discarded with no retry and no coercion. Returns nil, never an error, so a
// single bad section cannot abort its siblings.
func ConvertSectionToBlock(ctx context.Context, completer Completer, section PageSection, logger *zap.Logger) *BlockCandidate {
	if logger == nil {
		logger = zap.NewNop()
	}

	target, ok := sectionTypeTargets[section.Type]
	if !ok {
		logger.Debug("no block target for section type", zap.String("sectionType", string(section.Type)))
		return nil
	}
	hint := schemaHint(target)
	if hint == "" {
		logger.Warn("no schema registered for block type", zap.String("blockType", string(target)))
		return nil
	}

	raw, err := completer.Complete(ctx, buildBlockPrompt(section, target, hint))
	if err != nil {
		logger.Warn("block classification failed",
			zap.String("blockType", string(target)), zap.Error(err))
		return nil
	}

	var content any
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &content); err != nil {
		logger.Warn("block classification returned unparsable JSON",
			zap.String("blockType", string(target)), zap.Error(err))
		return nil
	}
	if err := ValidateBlockContent(target, content); err != nil {
		logger.Warn("block content failed schema validation, discarding candidate",
			zap.String("blockType", string(target)), zap.Error(err))
		return nil
	}

	confidence := section.Confidence
	if confidence == 0 {
		confidence = defaultBlockConfidence
	}
	rationale := section.Rationale
	if rationale == "" {
		rationale = fmt.Sprintf("converted %s section into %s block", section.Type, target)
	}
	return &BlockCandidate{
		Type:              target,
		Content:           content,
		SourceSectionType: section.Type,
		Confidence:        confidence,
		Rationale:         rationale,
	}
}

// ClassifySections converts every section of a page into block candidates.
// Failed or unconvertible sections are skipped; the order of surviving
// candidates follows section order.
func ClassifySections(ctx context.Context, completer Completer, sections []PageSection, logger *zap.Logger) []BlockCandidate {
	candidates := []BlockCandidate{}
	for _, section := range sections {
		if candidate := ConvertSectionToBlock(ctx, completer, section, logger); candidate != nil {
			candidates = append(candidates, *candidate)
		}
	}
	return candidates
}

func buildBlockPrompt(section PageSection, target BlockType, hint string) []ChatMessage {
	var user strings.Builder
	fmt.Fprintf(&user, "Produce the content object for a %q block from this page section.\n\n", target)
	fmt.Fprintf(&user, "Block description: %s\n\n", blockDescriptions[target])
	fmt.Fprintf(&user, "Content schema:\n%s\n\n", hint)
	if section.Heading != "" {
		fmt.Fprintf(&user, "Section title: %s\n", section.Heading)
	}
	if section.TextSample != "" {
		fmt.Fprintf(&user, "Section text: %s\n", truncate(section.TextSample, 4000))
	}
	if len(section.Images) > 0 {
		fmt.Fprintf(&user, "Section images: %s\n", strings.Join(section.Images, ", "))
	}
	if section.HTML != "" {
		fmt.Fprintf(&user, "Section HTML:\n%s\n", truncate(section.HTML, 20000))
	}
	user.WriteString("\nRespond with the JSON content object only, no wrapper and no commentary.")

	return []ChatMessage{
		{Role: "system", Content: "You convert web page sections of dive shop sites into structured content blocks. Always answer with a single JSON object conforming to the given schema. Use only information present in the section; do not invent details."},
		{Role: "user", Content: user.String()},
	}
}
