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
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/divetide/siteingest"
	"github.com/divetide/siteingest/internal/store"
)

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	runID := fs.Uint("run-id", 0, "Run to export (required)")
	output := fs.String("o", "", "Output file (default: stdout)")
	asImport := fs.Bool("import", false, "Export the downstream shop projection instead of the full scrape")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == 0 {
		return fmt.Errorf("--run-id is required")
	}

	st, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %v", err)
	}
	run, err := st.GetRun(uint(*runID))
	if err != nil {
		return err
	}
	if run.Status != store.RunStatusCompleted || run.Result == "" {
		return fmt.Errorf("run %d has no result (status: %s)", run.ID, run.Status)
	}

	payload := []byte(run.Result)
	if *asImport {
		var scrape siteingest.SiteScrape
		if err := json.Unmarshal(payload, &scrape); err != nil {
			return fmt.Errorf("failed to decode stored result: %v", err)
		}
		payload, err = json.MarshalIndent(scrape.ShopImport(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode shop projection: %v", err)
		}
	} else {
		var pretty json.RawMessage = payload
		payload, err = json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %v", err)
		}
	}

	if *output == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(*output, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %v", *output, err)
	}
	fmt.Printf("Exported run %d to %s\n", run.ID, *output)
	return nil
}
