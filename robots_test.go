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

func TestParseRobotsSitemapDirectives(t *testing.T) {
	r := ParseRobots(`User-agent: *
Disallow: /private
Sitemap: https://bluedivers.example/sitemap.xml
sitemap: https://bluedivers.example/sitemap-pages.xml
`)
	require.Len(t, r.SitemapURLs, 2)
	assert.Equal(t, "https://bluedivers.example/sitemap.xml", r.SitemapURLs[0])
	assert.Equal(t, "https://bluedivers.example/sitemap-pages.xml", r.SitemapURLs[1])
}

func TestRobotsDisallow(t *testing.T) {
	r := ParseRobots("User-agent: *\nDisallow: /private\n")
	assert.False(t, r.IsAllowed("https://bluedivers.example/private/page"))
	assert.True(t, r.IsAllowed("https://bluedivers.example/courses"))
}

func TestRobotsPermissiveWhenMissing(t *testing.T) {
	var r *Robots
	assert.True(t, r.IsAllowed("https://bluedivers.example/anything"))
	assert.True(t, (&Robots{}).IsAllowed("https://bluedivers.example/anything"))
}

func TestRobotsUnparsableIsPermissive(t *testing.T) {
	r := ParseRobots("\x00\x01 not robots at all")
	assert.True(t, r.IsAllowed("https://bluedivers.example/page"))
}

func TestFetchRobotsMissingFile(t *testing.T) {
	srv := newNotFoundServer(t)
	defer srv.Close()

	r := FetchRobots(NewFetcher(0), srv.URL)
	assert.Empty(t, r.Raw)
	assert.True(t, r.IsAllowed(srv.URL+"/anything"))
}
