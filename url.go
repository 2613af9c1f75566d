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
	"net"
	"strings"

	"github.com/kennygrant/sanitize"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// ErrCrossOrigin is returned when a URL resolves outside the target origin.
var ErrCrossOrigin = fmt.Errorf("URL is outside the target origin")

// ToOrigin returns the scheme://host[:port] origin of a URL.
func ToOrigin(rawURL string) (string, error) {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	origin := u.Scheme() + "://" + u.Hostname()
	if port := u.Port(); port != "" {
		origin += ":" + port
	}
	return origin, nil
}

// NormalizeURL resolves href against base, drops the fragment, and returns
// the absolute URL. ErrCrossOrigin is returned when the result does not share
// base's origin; ingestion never leaves the target site.
func NormalizeURL(base, href string) (string, error) {
	u, err := urlParser.ParseRef(base, href)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q against %q: %w", href, base, err)
	}
	if u.Scheme() != "http" && u.Scheme() != "https" {
		return "", ErrCrossOrigin
	}
	resolved := u.Href(true)

	baseOrigin, err := ToOrigin(base)
	if err != nil {
		return "", err
	}
	resolvedOrigin, err := ToOrigin(resolved)
	if err != nil {
		return "", err
	}
	if baseOrigin != resolvedOrigin {
		return "", ErrCrossOrigin
	}
	return resolved, nil
}

// ResolveURL resolves href against base without the same-origin restriction.
// Used for assets (images, stylesheets) that may live on a CDN.
func ResolveURL(base, href string) string {
	u, err := urlParser.ParseRef(base, href)
	if err != nil {
		return ""
	}
	return u.Href(false)
}

// SlugFromURL derives a page slug from a URL path. The root path becomes
// "home"; everything else is the sanitized last path segment.
func SlugFromURL(rawURL string) string {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return "home"
	}
	path := strings.Trim(u.Pathname(), "/")
	if path == "" {
		return "home"
	}
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if i := strings.LastIndex(last, "."); i > 0 {
		last = last[:i]
	}
	slug := sanitize.BaseName(last)
	if slug == "" {
		return "home"
	}
	return strings.ToLower(slug)
}

// ValidateTargetURL performs basic URL validation and SSRF protection before
// the pipeline fetches or renders anything.
func ValidateTargetURL(rawURL string) error {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme() != "http" && u.Scheme() != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https")
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL must have a host")
	}
	// Loopback is allowed so local fixtures and test servers can be ingested.
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return nil
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname: %w", err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("access to private IP addresses is not allowed")
		}
	}
	return nil
}

// isPrivateIP checks if an IP address is in a private range
func isPrivateIP(ip net.IP) bool {
	privateIPv4Ranges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
	}
	for _, cidr := range privateIPv4Ranges {
		_, ipNet, _ := net.ParseCIDR(cidr)
		if ipNet.Contains(ip) {
			return true
		}
	}
	if ip.To4() == nil {
		if ip.IsLinkLocalUnicast() {
			return true
		}
		if len(ip) == net.IPv6len && (ip[0] == 0xfc || ip[0] == 0xfd) {
			return true
		}
	}
	return false
}
