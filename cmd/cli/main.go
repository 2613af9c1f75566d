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

// siteingest CLI
//
// Command-line interface for the Divetide website-ingestion pipeline.
// Runs ingestions, inspects run history and exports results.
//
// Usage:
//
//	siteingest <command> [flags]
//
// Commands:
//
//	ingest    Run the ingestion pipeline against a website URL
//	list      List past ingestion runs
//	export    Export a run's result to JSON
//	mcp       Serve the pipeline over the Model Context Protocol
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/divetide/siteingest/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "ingest":
		if err := runIngest(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "list":
		if err := runList(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := runExport(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("siteingest CLI %s\n", version.CurrentVersion)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`siteingest CLI - website ingestion for the Divetide site builder

Usage:
  siteingest <command> [flags]

Commands:
  ingest    Run the ingestion pipeline against a website URL
  list      List past ingestion runs
  export    Export a run's result to JSON
  mcp       Serve the pipeline over the Model Context Protocol
  version   Show version information
  help      Show this help message

Examples:
  # Ingest a dive shop website
  siteingest ingest https://bluedivers.example

  # Ingest and render every discovered page
  siteingest ingest https://bluedivers.example --all-pages

  # List recent runs
  siteingest list --limit 10

  # Export a completed run
  siteingest export --run-id 3 -o ./bluedivers.json

  # Serve MCP over stdio
  siteingest mcp

Use "siteingest <command> --help" for more information about a command.`)
}
