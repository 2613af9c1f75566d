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
	"flag"
	"fmt"

	"github.com/divetide/siteingest/internal/store"
)

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of runs to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %v", err)
	}

	runs, err := st.ListRuns(*limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No ingestion runs recorded.")
		return nil
	}

	fmt.Printf("%-5s %-10s %-7s %-7s %-20s %s\n", "ID", "STATUS", "PAGES", "BLOCKS", "STARTED", "TARGET")
	for _, run := range runs {
		fmt.Printf("%-5d %-10s %-7d %-7d %-20s %s\n",
			run.ID, run.Status, run.PageCount, run.BlockCount,
			run.CreatedAt.Format("2006-01-02 15:04:05"), run.TargetURL)
	}
	return nil
}
