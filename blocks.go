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

	"github.com/google/jsonschema-go/jsonschema"
)

// blockDescriptions are the human-readable block definitions fed to the LLM,
// both when segmenting pages and when converting a section into a block.
var blockDescriptions = map[BlockType]string{
	BlockHero:         "A large banner at the top of a page with a headline, optional subtitle, background image and call-to-action button.",
	BlockText:         "A rich-text content area with an optional title and one or more paragraphs.",
	BlockImage:        "A single prominent image with optional alt text and caption.",
	BlockGallery:      "A grid or carousel of multiple images, such as dive photos or shop impressions.",
	BlockTestimonials: "Customer quotes or reviews, each with the quote text and optionally the author's name.",
	BlockTeam:         "Profiles of staff members or instructors with name, role and optional photo.",
	BlockFAQ:          "A list of frequently asked questions, each with a question and its answer.",
	BlockContactForm:  "A contact form or contact details area with email, phone and address.",
	BlockCallToAction: "A short prompt encouraging the visitor to act, with a headline and a button.",
	BlockVideo:        "An embedded video, typically YouTube or Vimeo.",
	BlockMap:          "An embedded map or location description showing where the business is.",
	BlockSocialFeed:   "An embedded social media feed or a prominent link to a social profile.",
	BlockDivider:      "A purely visual separator between content areas.",
	BlockTwoColumn:    "Two side-by-side content columns, usually text next to an image.",
	BlockCourses:      "Diving courses or certifications on offer, each with a name and optionally description, price and level.",
	BlockMarineLife:   "Marine species encountered at the dive sites, each with a name and optional description and image.",
}

// sectionTypeTargets maps a section type to the block type its content is
// converted into. Section types with no entry (nav, footer, unknown) are
// recorded for debugging but never classified into blocks.
var sectionTypeTargets = map[SectionType]BlockType{
	SectionHero:         BlockHero,
	SectionAbout:        BlockText,
	SectionServices:     BlockText,
	SectionCourses:      BlockCourses,
	SectionGallery:      BlockGallery,
	SectionTestimonials: BlockTestimonials,
	SectionFAQ:          BlockFAQ,
	SectionTeam:         BlockTeam,
	SectionContact:      BlockContactForm,
	SectionMap:          BlockMap,
	SectionCTA:          BlockCallToAction,
	SectionText:         BlockText,
	SectionImage:        BlockImage,
}

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func objectSchema(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Required: required, Properties: props}
}

func arrayProp(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

// blockSchemas define the content contract per block type. Validation
// against these schemas is the authoritative gate for every candidate the
// classifier produces.
var blockSchemas = map[BlockType]*jsonschema.Schema{
	BlockHero: objectSchema([]string{"title"}, map[string]*jsonschema.Schema{
		"title":    stringProp("main headline"),
		"subtitle": stringProp("supporting line under the headline"),
		"imageUrl": stringProp("background or hero image URL"),
		"ctaText":  stringProp("call-to-action button label"),
		"ctaUrl":   stringProp("call-to-action target URL"),
	}),
	BlockText: objectSchema([]string{"body"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"body":  stringProp("paragraph text"),
	}),
	BlockImage: objectSchema([]string{"url"}, map[string]*jsonschema.Schema{
		"url":     stringProp("image URL"),
		"alt":     stringProp("alt text"),
		"caption": stringProp("visible caption"),
	}),
	BlockGallery: objectSchema([]string{"images"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional gallery heading"),
		"images": arrayProp(objectSchema([]string{"url"}, map[string]*jsonschema.Schema{
			"url": stringProp("image URL"),
			"alt": stringProp("alt text"),
		})),
	}),
	BlockTestimonials: objectSchema([]string{"testimonials"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"testimonials": arrayProp(objectSchema([]string{"quote"}, map[string]*jsonschema.Schema{
			"quote":  stringProp("the customer's words"),
			"author": stringProp("who said it"),
		})),
	}),
	BlockTeam: objectSchema([]string{"members"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"members": arrayProp(objectSchema([]string{"name"}, map[string]*jsonschema.Schema{
			"name":     stringProp("member name"),
			"role":     stringProp("job title or role"),
			"imageUrl": stringProp("photo URL"),
			"bio":      stringProp("short biography"),
		})),
	}),
	BlockFAQ: objectSchema([]string{"items"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"items": arrayProp(objectSchema([]string{"question", "answer"}, map[string]*jsonschema.Schema{
			"question": stringProp("the question"),
			"answer":   stringProp("the answer"),
		})),
	}),
	BlockContactForm: objectSchema(nil, map[string]*jsonschema.Schema{
		"title":   stringProp("optional heading"),
		"email":   stringProp("contact email"),
		"phone":   stringProp("contact phone number"),
		"address": stringProp("postal address"),
	}),
	BlockCallToAction: objectSchema([]string{"title"}, map[string]*jsonschema.Schema{
		"title":      stringProp("prompt headline"),
		"body":       stringProp("supporting text"),
		"buttonText": stringProp("button label"),
		"buttonUrl":  stringProp("button target URL"),
	}),
	BlockVideo: objectSchema([]string{"url"}, map[string]*jsonschema.Schema{
		"url":      stringProp("video or embed URL"),
		"title":    stringProp("optional title"),
		"provider": {Type: "string", Enum: []any{"youtube", "vimeo", "other"}},
	}),
	BlockMap: objectSchema(nil, map[string]*jsonschema.Schema{
		"address":  stringProp("location address"),
		"lat":      {Type: "number", Description: "latitude"},
		"lng":      {Type: "number", Description: "longitude"},
		"embedUrl": stringProp("map embed URL"),
	}),
	BlockSocialFeed: objectSchema([]string{"profileUrl"}, map[string]*jsonschema.Schema{
		"platform":   {Type: "string", Enum: []any{"instagram", "facebook", "twitter", "youtube", "tiktok", "other"}},
		"profileUrl": stringProp("social profile URL"),
	}),
	BlockDivider: objectSchema(nil, map[string]*jsonschema.Schema{
		"style": {Type: "string", Enum: []any{"line", "space", "wave"}},
	}),
	BlockTwoColumn: objectSchema([]string{"left", "right"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"left":  stringProp("left column content, text or image URL"),
		"right": stringProp("right column content, text or image URL"),
	}),
	BlockCourses: objectSchema([]string{"courses"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"courses": arrayProp(objectSchema([]string{"name"}, map[string]*jsonschema.Schema{
			"name":        stringProp("course name"),
			"description": stringProp("what the course covers"),
			"price":       stringProp("price as displayed"),
			"level":       stringProp("required certification level"),
			"imageUrl":    stringProp("course image URL"),
		})),
	}),
	BlockMarineLife: objectSchema([]string{"species"}, map[string]*jsonschema.Schema{
		"title": stringProp("optional heading"),
		"species": arrayProp(objectSchema([]string{"name"}, map[string]*jsonschema.Schema{
			"name":        stringProp("species name"),
			"description": stringProp("short description"),
			"imageUrl":    stringProp("photo URL"),
		})),
	}),
}

var resolvedBlockSchemas = resolveBlockSchemas()

func resolveBlockSchemas() map[BlockType]*jsonschema.Resolved {
	resolved := make(map[BlockType]*jsonschema.Resolved, len(blockSchemas))
	for typ, schema := range blockSchemas {
		r, err := schema.Resolve(nil)
		if err != nil {
			panic(fmt.Sprintf("invalid schema for block type %q: %v", typ, err))
		}
		resolved[typ] = r
	}
	return resolved
}

// BlockSchema returns the resolved content schema for a block type.
func BlockSchema(typ BlockType) (*jsonschema.Resolved, bool) {
	r, ok := resolvedBlockSchemas[typ]
	return r, ok
}

// ValidateBlockContent checks a parsed content object against the block
// type's schema. An unknown block type is a validation failure.
func ValidateBlockContent(typ BlockType, content any) error {
	resolved, ok := resolvedBlockSchemas[typ]
	if !ok {
		return fmt.Errorf("no schema registered for block type %q", typ)
	}
	return resolved.Validate(content)
}

// schemaHint summarizes a block schema for the LLM prompt: the serialized
// schema itself plus the error produced by validating an empty object, which
// spells out the required field names without a hand-maintained duplicate
// description.
func schemaHint(typ BlockType) string {
	schema, ok := blockSchemas[typ]
	if !ok {
		return ""
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	hint := string(raw)
	if resolved, ok := resolvedBlockSchemas[typ]; ok {
		if probeErr := resolved.Validate(map[string]any{}); probeErr != nil {
			hint += "\nRequired fields: " + probeErr.Error()
		}
	}
	return hint
}
