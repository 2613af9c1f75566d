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

func TestExtractVisibleTextStripsTagsAndScripts(t *testing.T) {
	html := `<html><head><style>.x{color:red}</style><script>var a=1;</script></head>
<body><h1>Dive   the Reef</h1>
<p>Daily trips.</p></body></html>`
	text := ExtractVisibleText(html)
	assert.Equal(t, "Dive the Reef Daily trips.", text)
	assert.NotContains(t, text, "var a")
	assert.NotContains(t, text, "color:red")
}

func TestExtractSeoMetaFixturePage(t *testing.T) {
	seo := ExtractSeoMeta(testutil.HomeHTML)
	assert.Equal(t, "Blue Divers - Dive Center", seo.Title)
	assert.Equal(t, "PADI dive center in the Florida Keys.", seo.Description)
	assert.Equal(t, "https://bluedivers.example/", seo.Canonical)
	assert.Equal(t, "Blue Divers", seo.OGTitle)
	assert.Equal(t, "BlueDiversCo", seo.OGSiteName)
	assert.Equal(t, "/img/og.jpg", seo.OGImage)
	assert.Equal(t, []string{"LocalBusiness"}, seo.JSONLDTypes)
}

func TestExtractImagesFromImgAndCSS(t *testing.T) {
	html := `<html><body>
<img src="/img/reef.jpg" alt="reef">
<img src="/img/reef.jpg" alt="duplicate">
<div style="background-image: url('/img/banner.jpg')"></div>
<img src="data:image/png;base64,AAAA">
</body></html>`
	css := []string{`.hero { background: #000 url(/img/hero-bg.jpg) no-repeat; }`}

	images := ExtractImages("https://bluedivers.example/", html, css)
	require.Len(t, images, 3)

	assert.Equal(t, "https://bluedivers.example/img/reef.jpg", images[0].URL)
	assert.Equal(t, "reef", images[0].Alt)
	assert.Equal(t, "img", images[0].Source)

	assert.Equal(t, "https://bluedivers.example/img/banner.jpg", images[1].URL)
	assert.Equal(t, "css", images[1].Source)

	assert.Equal(t, "https://bluedivers.example/img/hero-bg.jpg", images[2].URL)
	assert.Equal(t, "css", images[2].Source)
}
