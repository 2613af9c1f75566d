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

func TestParseSitemapURLSet(t *testing.T) {
	urls, err := ParseSitemapXML(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://bluedivers.example/</loc></url>
  <url><loc> https://bluedivers.example/about </loc></url>
</urlset>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://bluedivers.example/", "https://bluedivers.example/about"}, urls)
}

func TestParseSitemapIndexOneLevel(t *testing.T) {
	urls, err := ParseSitemapXML(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://bluedivers.example/sitemap-pages.xml</loc></sitemap>
  <sitemap><loc>https://bluedivers.example/sitemap-posts.xml</loc></sitemap>
</sitemapindex>`)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://bluedivers.example/sitemap-pages.xml",
		"https://bluedivers.example/sitemap-posts.xml",
	}, urls)
}

func TestResolveSitemapLocations(t *testing.T) {
	robots := &Robots{SitemapURLs: []string{"https://bluedivers.example/custom-sitemap.xml"}}
	locs := resolveSitemapLocations(robots, "https://bluedivers.example")
	assert.Equal(t, []string{
		"https://bluedivers.example/custom-sitemap.xml",
		"https://bluedivers.example/sitemap.xml",
	}, locs)

	listed := &Robots{SitemapURLs: []string{"https://bluedivers.example/sitemap.xml"}}
	assert.Equal(t, []string{"https://bluedivers.example/sitemap.xml"},
		resolveSitemapLocations(listed, "https://bluedivers.example"))
}
