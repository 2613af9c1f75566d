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

func TestContentHashIgnoresScriptsAndComments(t *testing.T) {
	a := `<html><body><!-- generated 2024 --><p>Dive with us</p><script>track("` + "abc" + `")</script></body></html>`
	b := `<html><body><p>Dive with us</p><script>track("xyz")</script></body></html>`
	require.NotEmpty(t, ContentHash(a))
	assert.Equal(t, ContentHash(a), ContentHash(b))
}

func TestContentHashIgnoresCacheBusters(t *testing.T) {
	a := `<html><body><img src="/logo.png?v=abc123"></body></html>`
	b := `<html><body><img src="/logo.png?v=def456"></body></html>`
	assert.Equal(t, ContentHash(a), ContentHash(b))
}

func TestContentHashDiffersForDifferentContent(t *testing.T) {
	a := ContentHash(`<html><body><p>About us</p></body></html>`)
	b := ContentHash(`<html><body><p>Our courses</p></body></html>`)
	assert.NotEqual(t, a, b)
}
