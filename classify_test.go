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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSectionToBlockValidContent(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return `{"title": "Dive the Reef", "ctaText": "Book now"}`, nil
	})
	section := PageSection{Type: SectionHero, Heading: "Dive the Reef"}

	candidate := ConvertSectionToBlock(context.Background(), completer, section, nil)
	require.NotNil(t, candidate)
	assert.Equal(t, BlockHero, candidate.Type)
	assert.Equal(t, SectionHero, candidate.SourceSectionType)
	assert.InDelta(t, defaultBlockConfidence, candidate.Confidence, 0.001)
	assert.NotEmpty(t, candidate.Rationale)

	content, ok := candidate.Content.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Dive the Reef", content["title"])
}

func TestConvertSectionToBlockCarriesSectionConfidence(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return `{"title": "Hi"}`, nil
	})
	section := PageSection{Type: SectionHero, Confidence: 0.42, Rationale: "banner at top"}

	candidate := ConvertSectionToBlock(context.Background(), completer, section, nil)
	require.NotNil(t, candidate)
	assert.InDelta(t, 0.42, candidate.Confidence, 0.001)
	assert.Equal(t, "banner at top", candidate.Rationale)
}

func TestConvertSectionToBlockNoTarget(t *testing.T) {
	called := false
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		called = true
		return "{}", nil
	})

	for _, typ := range []SectionType{SectionNav, SectionFooter, SectionUnknown} {
		candidate := ConvertSectionToBlock(context.Background(), completer, PageSection{Type: typ}, nil)
		assert.Nil(t, candidate, "section type %q must not produce a block", typ)
	}
	assert.False(t, called)
}

func TestConvertSectionToBlockLLMError(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return "", errors.New("timeout")
	})
	candidate := ConvertSectionToBlock(context.Background(), completer, PageSection{Type: SectionHero}, nil)
	assert.Nil(t, candidate)
}

func TestConvertSectionToBlockUnparsableJSON(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return "here is the block you asked for", nil
	})
	candidate := ConvertSectionToBlock(context.Background(), completer, PageSection{Type: SectionHero}, nil)
	assert.Nil(t, candidate)
}

func TestConvertSectionToBlockSchemaValidationDiscards(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return `{"subtitle": "missing the required title"}`, nil
	})
	candidate := ConvertSectionToBlock(context.Background(), completer, PageSection{Type: SectionHero}, nil)
	assert.Nil(t, candidate)
}

func TestClassifySectionsSkipsFailuresKeepsOrder(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, messages []ChatMessage) (string, error) {
		return `{"title": "Something", "body": "Some text."}`, nil
	})
	sections := []PageSection{
		{Type: SectionNav},
		{Type: SectionHero},
		{Type: SectionUnknown},
		{Type: SectionAbout},
	}

	candidates := ClassifySections(context.Background(), completer, sections, nil)
	require.Len(t, candidates, 2)
	assert.Equal(t, BlockHero, candidates[0].Type)
	assert.Equal(t, BlockText, candidates[1].Type)
}

func TestBuildBlockPromptIncludesSchemaAndSection(t *testing.T) {
	section := PageSection{
		Type:       SectionHero,
		Heading:    "Dive the Reef",
		TextSample: "Daily boat trips.",
		Images:     []string{"https://bluedivers.example/img/hero.jpg"},
	}
	messages := buildBlockPrompt(section, BlockHero, schemaHint(BlockHero))
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[1].Content, "title")
	assert.Contains(t, messages[1].Content, "Dive the Reef")
	assert.Contains(t, messages[1].Content, "Daily boat trips.")
	assert.Contains(t, messages[1].Content, "hero.jpg")
}
