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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryBlockTypeHasSchemaAndDescription(t *testing.T) {
	for typ := range blockDescriptions {
		_, ok := BlockSchema(typ)
		assert.True(t, ok, "missing schema for block type %q", typ)
	}
	for typ := range blockSchemas {
		assert.NotEmpty(t, blockDescriptions[typ], "missing description for block type %q", typ)
	}
}

func TestValidateBlockContentAcceptsConformingObject(t *testing.T) {
	content := map[string]any{"title": "Dive the Reef", "ctaText": "Book now"}
	assert.NoError(t, ValidateBlockContent(BlockHero, content))
}

func TestValidateBlockContentRejectsMissingRequired(t *testing.T) {
	assert.Error(t, ValidateBlockContent(BlockHero, map[string]any{"subtitle": "no title"}))
	assert.Error(t, ValidateBlockContent(BlockGallery, map[string]any{"title": "no images"}))
	assert.Error(t, ValidateBlockContent(BlockFAQ, map[string]any{
		"items": []any{map[string]any{"question": "missing answer"}},
	}))
}

func TestValidateBlockContentRejectsWrongTypes(t *testing.T) {
	assert.Error(t, ValidateBlockContent(BlockHero, map[string]any{"title": 42}))
	assert.Error(t, ValidateBlockContent(BlockMap, map[string]any{"lat": "not a number"}))
}

func TestValidateBlockContentUnknownType(t *testing.T) {
	assert.Error(t, ValidateBlockContent(BlockType("nonsense"), map[string]any{}))
}

func TestValidateBlockContentNestedArrays(t *testing.T) {
	content := map[string]any{
		"courses": []any{
			map[string]any{"name": "Open Water", "price": "$450"},
			map[string]any{"name": "Advanced"},
		},
	}
	assert.NoError(t, ValidateBlockContent(BlockCourses, content))
}

func TestSchemaHintListsRequiredFields(t *testing.T) {
	hint := schemaHint(BlockHero)
	require.NotEmpty(t, hint)
	assert.Contains(t, hint, "title")

	assert.Empty(t, schemaHint(BlockType("nonsense")))
}

func TestSectionTargetsHaveSchemas(t *testing.T) {
	for sectionType, blockType := range sectionTypeTargets {
		_, ok := BlockSchema(blockType)
		assert.True(t, ok, "section %q targets block %q with no schema", sectionType, blockType)
	}
}
