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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/divetide/siteingest/internal/mcp"
)

func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	httpAddr := fs.String("http", "", "Serve MCP over HTTP on this address instead of stdio (e.g. :8191)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	server, err := mcp.NewMCPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to start MCP server: %v", err)
	}
	defer server.Close()

	if *httpAddr != "" {
		httpServer, err := server.RunHTTP(*httpAddr)
		if err != nil {
			return err
		}
		<-ctx.Done()
		return httpServer.Shutdown(context.Background())
	}
	return server.RunStdio(ctx)
}
