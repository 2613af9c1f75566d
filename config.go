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
	"os"
	"strconv"
	"time"
)

// Config carries the environment-derived pipeline settings. All values are
// optional; zero values select the built-in defaults.
type Config struct {
	// LLMBaseURL is the root of an OpenAI-compatible API. When empty, runs
	// use heuristic segmentation and produce no block candidates.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// MaxPages bounds crawl-fallback discovery.
	MaxPages int
	// FetchTimeout bounds plain HTTP fetches.
	FetchTimeout time.Duration
	// RenderTimeout bounds one headless navigation.
	RenderTimeout time.Duration
	// DebugDir receives per-run debug snapshots when set.
	DebugDir string
	// ProcessAllPages renders every discovered URL instead of only the
	// home page.
	ProcessAllPages bool
}

// ConfigFromEnv reads the SITEINGEST_* environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		LLMBaseURL: os.Getenv("SITEINGEST_LLM_BASE_URL"),
		LLMAPIKey:  os.Getenv("SITEINGEST_LLM_API_KEY"),
		LLMModel:   os.Getenv("SITEINGEST_LLM_MODEL"),
		DebugDir:   os.Getenv("SITEINGEST_DEBUG_DIR"),
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if v, err := strconv.Atoi(os.Getenv("SITEINGEST_MAX_PAGES")); err == nil && v > 0 {
		cfg.MaxPages = v
	}
	if v, err := strconv.Atoi(os.Getenv("SITEINGEST_FETCH_TIMEOUT_SEC")); err == nil && v > 0 {
		cfg.FetchTimeout = time.Duration(v) * time.Second
	}
	if v, err := strconv.Atoi(os.Getenv("SITEINGEST_RENDER_TIMEOUT_SEC")); err == nil && v > 0 {
		cfg.RenderTimeout = time.Duration(v) * time.Second
	}
	if v, err := strconv.ParseBool(os.Getenv("SITEINGEST_PROCESS_ALL_PAGES")); err == nil {
		cfg.ProcessAllPages = v
	}
	return cfg
}

// Completer builds the LLM client, or nil when no endpoint is configured.
func (c Config) Completer() Completer {
	if c.LLMBaseURL == "" {
		return nil
	}
	return NewLLMClient(c.LLMBaseURL, c.LLMAPIKey, c.LLMModel)
}

// Options assembles ScrapeSite options for a target URL.
func (c Config) Options(targetURL string) Options {
	return Options{
		TargetURL:       targetURL,
		MaxPages:        c.MaxPages,
		Completer:       c.Completer(),
		FetchTimeout:    c.FetchTimeout,
		RenderTimeout:   c.RenderTimeout,
		DebugDir:        c.DebugDir,
		ProcessAllPages: c.ProcessAllPages,
	}
}
