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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/divetide/siteingest"
	"github.com/divetide/siteingest/internal/store"
	"go.uber.org/zap"
)

// ingestFlags holds all the flags for the ingest command.
type ingestFlags struct {
	maxPages int
	allPages bool
	debugDir string
	timeout  int
	noStore  bool
	quiet    bool
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)

	var flags ingestFlags
	fs.IntVar(&flags.maxPages, "max-pages", 0, "Maximum pages for crawl-fallback discovery (0 = default)")
	fs.BoolVar(&flags.allPages, "all-pages", false, "Render and classify every discovered page, not only the home page")
	fs.StringVar(&flags.debugDir, "debug-dir", "", "Directory for per-run debug JSON snapshots")
	fs.IntVar(&flags.timeout, "timeout", 300, "Overall run timeout in seconds")
	fs.BoolVar(&flags.noStore, "no-store", false, "Skip recording the run in the local database")
	fs.BoolVar(&flags.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&flags.quiet, "q", false, "Suppress progress output (shorthand)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("target URL required: siteingest ingest <url> [flags]")
	}
	targetURL := fs.Arg(0)

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flags.timeout)*time.Second)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	opts := siteingest.ConfigFromEnv().Options(targetURL)
	opts.Logger = logger
	if flags.maxPages > 0 {
		opts.MaxPages = flags.maxPages
	}
	if flags.allPages {
		opts.ProcessAllPages = true
	}
	if flags.debugDir != "" {
		opts.DebugDir = flags.debugDir
	}
	if !flags.quiet {
		opts.Progress = func(p siteingest.Progress) {
			fmt.Printf("[%3d%%] %s\n", p.Percentage, p.Message)
		}
	}

	var st *store.Store
	var run *store.IngestionRun
	if !flags.noStore {
		st, err = store.NewStore()
		if err != nil {
			return fmt.Errorf("failed to open run store: %v", err)
		}
		run, err = st.CreateRun(targetURL)
		if err != nil {
			return fmt.Errorf("failed to record run: %v", err)
		}
	}

	result, err := siteingest.ScrapeSite(ctx, opts)
	if err != nil {
		if run != nil {
			_ = st.FailRun(run.ID, err.Error())
		}
		return fmt.Errorf("ingestion failed: %v", err)
	}

	blockCount := 0
	for _, p := range result.Pages {
		blockCount += len(p.BlockCandidates)
	}

	if run != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %v", err)
		}
		if err := st.CompleteRun(run.ID, string(raw), len(result.Pages), blockCount); err != nil {
			return fmt.Errorf("failed to persist run: %v", err)
		}
	}

	imp := result.ShopImport()
	fmt.Printf("\nIngested %s\n", targetURL)
	fmt.Printf("  Business:   %s\n", imp.Name)
	fmt.Printf("  Pages:      %d\n", len(result.Pages))
	fmt.Printf("  Blocks:     %d\n", blockCount)
	fmt.Printf("  Colors:     primary=%s secondary=%s accent=%s\n",
		imp.PrimaryColor, imp.SecondaryColor, imp.AccentColor)
	fmt.Printf("  Images:     %d\n", len(imp.Images))
	if len(result.Errors) > 0 {
		fmt.Printf("  Warnings:   %d (recorded in the run result)\n", len(result.Errors))
	}
	if run != nil {
		fmt.Printf("  Run ID:     %d\n", run.ID)
	}
	return nil
}
