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

	"github.com/divetide/siteingest/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const businessTestOrigin = "https://bluedivers.example"

func TestBusinessProfileJSONLDWinsOverOpenGraph(t *testing.T) {
	html := `<html><head>
<title>Some Title</title>
<meta property="og:site_name" content="AcmeCo">
<script type="application/ld+json">{"@type": "Organization", "name": "Acme Corp"}</script>
</head><body></body></html>`
	p := ExtractBusinessProfile(html, businessTestOrigin)
	assert.Equal(t, "Acme Corp", p.Name)
}

func TestBusinessProfileFallsBackThroughChain(t *testing.T) {
	html := `<html><head><meta property="og:site_name" content="AcmeCo"><title>Ignored</title></head><body></body></html>`
	p := ExtractBusinessProfile(html, businessTestOrigin)
	assert.Equal(t, "AcmeCo", p.Name)

	titleOnly := `<html><head><title>Title Co</title></head><body></body></html>`
	p = ExtractBusinessProfile(titleOnly, businessTestOrigin)
	assert.Equal(t, "Title Co", p.Name)
}

func TestBusinessProfileFixturePage(t *testing.T) {
	p := ExtractBusinessProfile(testutil.HomeHTML, businessTestOrigin)

	assert.Equal(t, "Blue Divers", p.Name)
	assert.Equal(t, "+1-555-0100", p.PhoneNumber)
	assert.Equal(t, "dive@bluedivers.example", p.Email)
	assert.Equal(t, "1 Reef Road, Key Largo, FL, 33037", p.Address)
	assert.Equal(t, businessTestOrigin+"/img/logo.png", p.LogoURL)
	assert.Equal(t, businessTestOrigin+"/favicon.png", p.FaviconURL)
	assert.Equal(t, []string{"Monday 08:00-18:00"}, p.OpeningHours)
	require.NotNil(t, p.Geo)
	assert.InDelta(t, 25.08, p.Geo.Lat, 0.001)
	assert.InDelta(t, -80.45, p.Geo.Lng, 0.001)
	assert.Equal(t, "https://instagram.com/bluedivers", p.Social.Instagram)
	assert.Equal(t, "https://facebook.com/bluedivers", p.Social.Facebook)
}

func TestBusinessProfileAnchorFallbacks(t *testing.T) {
	html := `<html><body>
<a href="tel:+49 123 456">call</a>
<a href="mailto:info@shop.example?subject=hi">mail</a>
</body></html>`
	p := ExtractBusinessProfile(html, businessTestOrigin)
	assert.Equal(t, "+49 123 456", p.PhoneNumber)
	assert.Equal(t, "info@shop.example", p.Email)
}

func TestBusinessProfileSocialFirstMatchWins(t *testing.T) {
	html := `<html><body>
<a href="https://instagram.com/first">one</a>
<a href="https://instagram.com/second">two</a>
<a href="https://twitter.com/old">tw</a>
<a href="https://x.com/new">x</a>
</body></html>`
	p := ExtractBusinessProfile(html, businessTestOrigin)
	assert.Equal(t, "https://instagram.com/first", p.Social.Instagram)
	assert.Equal(t, "https://twitter.com/old", p.Social.Twitter)
}

func TestBusinessProfileStringOpeningHoursAndAddress(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
{"@type": "LocalBusiness", "address": "1 Reef Road, Key Largo", "openingHours": ["Mo-Fr 08:00-18:00"]}
</script></head><body></body></html>`
	p := ExtractBusinessProfile(html, businessTestOrigin)
	assert.Equal(t, "1 Reef Road, Key Largo", p.Address)
	assert.Equal(t, []string{"Mo-Fr 08:00-18:00"}, p.OpeningHours)
}

func TestBusinessProfileTolerantToBadJSONLD(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{not json</script>
<script type="application/ld+json">[{"@type": "WebSite"}, {"@type": "LocalBusiness", "name": "Blue Divers"}]</script>
</head><body></body></html>`
	p := ExtractBusinessProfile(html, businessTestOrigin)
	assert.Equal(t, "Blue Divers", p.Name)
}

func TestBusinessProfileWebsiteURLDefaultsToOrigin(t *testing.T) {
	p := ExtractBusinessProfile("<html><body></body></html>", businessTestOrigin)
	assert.Equal(t, businessTestOrigin, p.WebsiteURL)
}
