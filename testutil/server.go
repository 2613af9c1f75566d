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

// Package testutil provides shared test utilities for siteingest tests:
// an HTTP fixture server simulating a small dive shop website.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
)

// Fixture content served by the test server.
var (
	// HomeHTML is the dive shop home page: JSON-LD Organization data, a
	// hero section with an <h1>, a gallery, contact anchors and social
	// profile links.
	HomeHTML = `<!DOCTYPE html>
<html>
<head>
<title>Blue Divers - Dive Center</title>
<meta name="description" content="PADI dive center in the Florida Keys.">
<meta property="og:site_name" content="BlueDiversCo">
<meta property="og:title" content="Blue Divers">
<meta property="og:image" content="/img/og.jpg">
<link rel="canonical" href="https://bluedivers.example/">
<link rel="icon" href="/favicon.png">
<link rel="stylesheet" href="/styles.css">
<script type="application/ld+json">
{
  "@type": "LocalBusiness",
  "name": "Blue Divers",
  "telephone": "+1-555-0100",
  "email": "dive@bluedivers.example",
  "address": {
    "streetAddress": "1 Reef Road",
    "addressLocality": "Key Largo",
    "addressRegion": "FL",
    "postalCode": "33037"
  },
  "geo": {"latitude": 25.08, "longitude": -80.45},
  "openingHoursSpecification": [
    {"dayOfWeek": "Monday", "opens": "08:00", "closes": "18:00"}
  ],
  "logo": "/img/logo.png"
}
</script>
</head>
<body>
<header><nav><a href="/">Home</a> <a href="/about.html">About</a> <a href="/courses.html">Courses</a></nav></header>
<section class="hero">
  <h1>Dive the Reef with Blue Divers</h1>
  <p>Daily boat trips and PADI courses in Key Largo.</p>
  <a class="btn" href="/courses.html">Book a dive</a>
</section>
<section class="about">
  <h2>About us</h2>
  <p>Family-run dive center since 1998.</p>
</section>
<section class="gallery">
  <h2>Gallery</h2>
  <img src="/img/reef1.jpg" alt="reef">
  <img src="/img/reef2.jpg" alt="turtle">
  <img src="/img/reef3.jpg" alt="wreck">
  <img src="/img/reef4.jpg" alt="shark">
  <img src="/img/reef5.jpg" alt="coral">
  <img src="/img/reef6.jpg" alt="rays">
</section>
<section class="contact">
  <h2>Contact</h2>
  <form action="/contact" method="post"><input name="email"><button>Send</button></form>
  <a href="tel:+1-555-0100">Call us</a>
  <a href="mailto:dive@bluedivers.example">Email us</a>
  <a href="https://instagram.com/bluedivers">Instagram</a>
  <a href="https://facebook.com/bluedivers">Facebook</a>
</section>
<footer><p>© Blue Divers</p></footer>
</body>
</html>
`

	// StylesCSS defines one qualifying color plus excluded black/white and
	// a non-system font.
	StylesCSS = `
body { background: #ffffff; color: #000000; font-family: "Open Sans", system-ui, sans-serif; }
.btn { background: #2563eb; }
@font-face { font-family: "Open Sans"; src: url(/fonts/opensans.woff2); }
`

	// RobotsFile advertises the sitemap and disallows one path.
	RobotsFile = `User-agent: *
Disallow: /private
Sitemap: {{ORIGIN}}/sitemap.xml
`

	AboutHTML = `<!DOCTYPE html>
<html><head><title>About - Blue Divers</title></head>
<body><main><div class="about"><h2>About Blue Divers</h2><p>Our story.</p></div></main></body></html>
`

	CoursesHTML = `<!DOCTYPE html>
<html><head><title>Courses - Blue Divers</title></head>
<body><section class="courses"><h2>PADI Courses</h2><p>Open Water, Advanced, Rescue.</p></section></body></html>
`
)

type serverConfig struct {
	sitemap bool
}

// ServerOption adjusts the fixture server's behavior.
type ServerOption func(cfg *serverConfig)

// WithoutSitemap makes sitemap requests 404 and drops the robots Sitemap:
// directive, forcing crawl-fallback discovery.
func WithoutSitemap() ServerOption {
	return func(cfg *serverConfig) {
		cfg.sitemap = false
	}
}

// NewTestServer starts a dive shop fixture server. The sitemap references
// the server's own origin, so discovery works against the ephemeral port.
func NewTestServer(opts ...ServerOption) *httptest.Server {
	cfg := serverConfig{sitemap: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	srv := httptest.NewUnstartedServer(mux)
	srv.Start()
	origin := srv.URL

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, HomeHTML)
	})

	mux.HandleFunc("/about.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, AboutHTML)
	})

	mux.HandleFunc("/courses.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, CoursesHTML)
	})

	mux.HandleFunc("/styles.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		fmt.Fprint(w, StylesCSS)
	})

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		if !cfg.sitemap {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		fmt.Fprint(w, strings.ReplaceAll(RobotsFile, "{{ORIGIN}}", origin))
	})

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		if !cfg.sitemap {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/</loc></url>
  <url><loc>%s/about.html</loc></url>
  <url><loc>%s/courses.html</loc></url>
</urlset>`, origin, origin, origin)
	})

	mux.HandleFunc("/private", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "private")
	})

	return srv
}
