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

// Package mcp exposes the ingestion pipeline over the Model Context
// Protocol, so agents can trigger runs and inspect run history.
package mcp

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/divetide/siteingest"
	"github.com/divetide/siteingest/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "siteingest"
	ServerVersion = "1.0.0"
)

// MCPServer wraps the ingestion pipeline and run store behind MCP tools.
type MCPServer struct {
	server *mcp.Server
	store  *store.Store
	config siteingest.Config
	logger *log.Logger
}

// NewMCPServer creates a new MCP server instance backed by the default
// run store and the SITEINGEST_* environment configuration.
func NewMCPServer(ctx context.Context) (*MCPServer, error) {
	logger := log.New(os.Stderr, "[siteingest MCP] ", log.LstdFlags)

	st, err := store.NewStore()
	if err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	s := &MCPServer{
		server: mcpServer,
		store:  st,
		config: siteingest.ConfigFromEnv(),
		logger: logger,
	}
	s.registerTools()

	logger.Printf("MCP server initialized")
	return s, nil
}

// GetServer returns the internal MCP server instance.
func (s *MCPServer) GetServer() *mcp.Server {
	return s.server
}

// RunHTTP starts the MCP server with the streamable HTTP transport.
func (s *MCPServer) RunHTTP(addr string) (*http.Server, error) {
	s.logger.Printf("Starting MCP HTTP server on %s...", addr)

	handler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return s.server
		},
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()
	return httpServer, nil
}

// RunStdio serves MCP over stdin/stdout until the context is cancelled.
func (s *MCPServer) RunStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close performs cleanup.
func (s *MCPServer) Close() error {
	s.logger.Printf("Shutting down MCP server...")
	return nil
}
