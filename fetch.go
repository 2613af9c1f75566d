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
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// UserAgent identifies the ingestion pipeline to target sites.
const UserAgent = "DivetideBot/1.0 (+https://divetide.com/bot)"

// maxFetchBody caps plain-text fetches (robots, sitemaps, stylesheets).
const maxFetchBody = 10 * 1024 * 1024

// Fetcher fetches raw text resources over HTTP with a fixed user agent.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a bounded request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// SetTransport replaces the underlying HTTP transport (used by tests).
func (f *Fetcher) SetTransport(rt http.RoundTripper) {
	f.client.Transport = rt
}

// FetchText GETs a URL and returns the body as a UTF-8 string. Non-2xx
// statuses are errors. Bodies without a valid UTF-8 encoding are run through
// charset detection and decoded before being returned.
func (f *Fetcher) FetchText(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch of %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	return decodeToUTF8(body, resp.Header.Get("Content-Type")), nil
}

// decodeToUTF8 returns body as a UTF-8 string, consulting the Content-Type
// charset parameter first and falling back to statistical detection.
func decodeToUTF8(body []byte, contentType string) string {
	if utf8.Valid(body) {
		return string(body)
	}

	charset := charsetFromContentType(contentType)
	if charset == "" {
		detector := chardet.NewTextDetector()
		if result, err := detector.DetectBest(body); err == nil {
			charset = result.Charset
		}
	}
	if charset != "" {
		if enc, err := htmlindex.Get(charset); err == nil {
			if decoded, _, err := transform.Bytes(enc.NewDecoder(), body); err == nil {
				return string(decoded)
			}
		}
	}
	return string(body)
}

func charsetFromContentType(contentType string) string {
	for _, part := range strings.Split(contentType, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			return strings.Trim(part[len("charset="):], `"' `)
		}
	}
	return ""
}
