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

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/divetide/siteingest"
	"github.com/divetide/siteingest/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers all MCP tools with the server.
func (s *MCPServer) registerTools() {
	s.registerIngestSiteTool()
	s.registerGetRunTool()
	s.registerListRunsTool()
}

// IngestSiteArgs defines the input schema for the ingest_site tool.
type IngestSiteArgs struct {
	URL string `json:"url"`
	// MaxPages bounds crawl-fallback discovery. Optional.
	MaxPages int `json:"maxPages,omitempty"`
	// ProcessAllPages renders every discovered URL instead of only the
	// home page. Optional.
	ProcessAllPages bool `json:"processAllPages,omitempty"`
}

// IngestSiteResult defines the output schema for the ingest_site tool.
type IngestSiteResult struct {
	Success    bool   `json:"success"`
	RunID      uint   `json:"runId,omitempty"`
	PageCount  int    `json:"pageCount,omitempty"`
	BlockCount int    `json:"blockCount,omitempty"`
	Message    string `json:"message"`
	// Import is the downstream shop projection of the scrape.
	Import *siteingest.ShopImport `json:"import,omitempty"`
}

func (s *MCPServer) registerIngestSiteTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_site",
		Description: "Runs the website-ingestion pipeline against a business website URL and returns the extracted shop data",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args IngestSiteArgs) (*mcp.CallToolResult, any, error) {
		s.logger.Printf("Tool called: ingest_site for URL: %s", args.URL)

		run, err := s.store.CreateRun(args.URL)
		if err != nil {
			return nil, IngestSiteResult{Success: false, Message: fmt.Sprintf("Failed to record run: %v", err)}, nil
		}

		opts := s.config.Options(args.URL)
		if args.MaxPages > 0 {
			opts.MaxPages = args.MaxPages
		}
		if args.ProcessAllPages {
			opts.ProcessAllPages = true
		}

		result, err := siteingest.ScrapeSite(ctx, opts)
		if err != nil {
			_ = s.store.FailRun(run.ID, err.Error())
			return nil, IngestSiteResult{
				Success: false,
				RunID:   run.ID,
				Message: fmt.Sprintf("Ingestion failed: %v", err),
			}, nil
		}

		blockCount := 0
		for _, p := range result.Pages {
			blockCount += len(p.BlockCandidates)
		}
		raw, err := json.Marshal(result)
		if err != nil {
			_ = s.store.FailRun(run.ID, err.Error())
			return nil, IngestSiteResult{Success: false, RunID: run.ID, Message: fmt.Sprintf("Failed to encode result: %v", err)}, nil
		}
		if err := s.store.CompleteRun(run.ID, string(raw), len(result.Pages), blockCount); err != nil {
			s.logger.Printf("failed to persist run %d: %v", run.ID, err)
		}

		imp := result.ShopImport()
		return nil, IngestSiteResult{
			Success:    true,
			RunID:      run.ID,
			PageCount:  len(result.Pages),
			BlockCount: blockCount,
			Message:    fmt.Sprintf("Ingested %s: %d pages, %d block candidates", args.URL, len(result.Pages), blockCount),
			Import:     &imp,
		}, nil
	})
}

// GetRunArgs defines the input schema for the get_run tool.
type GetRunArgs struct {
	RunID uint `json:"runId"`
	// IncludeResult returns the full SiteScrape JSON for completed runs.
	IncludeResult bool `json:"includeResult,omitempty"`
}

// GetRunResult defines the output schema for the get_run tool.
type GetRunResult struct {
	Success bool                `json:"success"`
	Run     *store.IngestionRun `json:"run,omitempty"`
	Result  json.RawMessage     `json:"result,omitempty"`
	Message string              `json:"message"`
}

func (s *MCPServer) registerGetRunTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_run",
		Description: "Retrieves one ingestion run by ID, optionally with the full scrape result",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetRunArgs) (*mcp.CallToolResult, any, error) {
		run, err := s.store.GetRun(args.RunID)
		if err != nil {
			return nil, GetRunResult{Success: false, Message: fmt.Sprintf("Run not found: %v", err)}, nil
		}
		out := GetRunResult{Success: true, Run: run, Message: fmt.Sprintf("Run %d is %s", run.ID, run.Status)}
		if args.IncludeResult && run.Result != "" {
			out.Result = json.RawMessage(run.Result)
		}
		return nil, out, nil
	})
}

// ListRunsArgs defines the input schema for the list_runs tool.
type ListRunsArgs struct {
	Limit int `json:"limit,omitempty"`
}

// ListRunsResult defines the output schema for the list_runs tool.
type ListRunsResult struct {
	Success bool                 `json:"success"`
	Runs    []store.IngestionRun `json:"runs"`
	Message string               `json:"message"`
}

func (s *MCPServer) registerListRunsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "Lists ingestion runs, newest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListRunsArgs) (*mcp.CallToolResult, any, error) {
		runs, err := s.store.ListRuns(args.Limit)
		if err != nil {
			return nil, ListRunsResult{Success: false, Runs: []store.IngestionRun{}, Message: fmt.Sprintf("Failed to list runs: %v", err)}, nil
		}
		return nil, ListRunsResult{
			Success: true,
			Runs:    runs,
			Message: fmt.Sprintf("%d runs", len(runs)),
		}, nil
	})
}
