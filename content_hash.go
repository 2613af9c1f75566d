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
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
)

var (
	htmlCommentRe = regexp.MustCompile(`<!--[\s\S]*?-->`)
	// cacheBusterRe strips version query parameters so asset URLs that only
	// differ by a cache-busting token hash identically.
	cacheBusterRe = regexp.MustCompile(`\?(?:v|ver|t|_)=[a-zA-Z0-9.]+`)
)

// ContentHash computes a stable fingerprint of rendered page HTML, used to
// flag duplicate-content pages within one ingestion run. Scripts, styles and
// comments are stripped and whitespace collapsed first, so two renders of
// the same page with different injected analytics or cache-buster tokens
// produce the same hash. Returns "" for unparsable input.
func ContentHash(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	content, err := doc.Html()
	if err != nil {
		return ""
	}
	content = htmlCommentRe.ReplaceAllString(content, "")
	content = cacheBusterRe.ReplaceAllString(content, "")
	content = strings.Join(strings.Fields(content), " ")
	if content == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
