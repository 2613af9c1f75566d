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

	"github.com/temoto/robotstxt"
)

// Robots wraps a parsed robots.txt file for one origin.
type Robots struct {
	// Raw is the original robots.txt text, empty when none was found.
	Raw string
	// SitemapURLs lists every Sitemap: directive value, in file order.
	SitemapURLs []string

	data *robotstxt.RobotsData
}

// FetchRobots fetches and parses {origin}/robots.txt. A missing or
// unparsable robots.txt yields a permissive Robots value, never an error:
// absence of robots rules means everything is allowed.
func FetchRobots(fetcher *Fetcher, origin string) *Robots {
	raw, err := fetcher.FetchText(strings.TrimSuffix(origin, "/") + "/robots.txt")
	if err != nil {
		return &Robots{}
	}
	return ParseRobots(raw)
}

// ParseRobots parses robots.txt text.
func ParseRobots(raw string) *Robots {
	r := &Robots{Raw: raw}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= len("sitemap:") && strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
			if loc := strings.TrimSpace(line[len("sitemap:"):]); loc != "" {
				r.SitemapURLs = append(r.SitemapURLs, loc)
			}
		}
	}
	data, err := robotstxt.FromString(raw)
	if err == nil {
		r.data = data
	}
	return r
}

// IsAllowed reports whether the pipeline's user agent may fetch the URL.
// Permissive when no robots.txt was available.
func (r *Robots) IsAllowed(url string) bool {
	if r == nil || r.data == nil {
		return true
	}
	return r.data.TestAgent(pathForRobots(url), UserAgent)
}

// pathForRobots strips scheme and host so robotstxt matches on the path.
func pathForRobots(url string) string {
	rest := url
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[i:]
	}
	return "/"
}
