// Command formfill-mcp is an MCP (Model Context Protocol) server that
// exposes form overlay generation to AI assistants over stdio.
//
// # Installation
//
//	go install github.com/lvillar/formfill/cmd/formfill-mcp@latest
//
// # Configuration
//
//	{
//	  "mcpServers": {
//	    "formfill": {
//	      "command": "formfill-mcp"
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - generate_pdf: Overlay a payload onto a base PDF
//   - validate_payload: Check a payload against a field schema
//   - locate_anchors: Find signature anchors in a generated PDF
//   - list_form_fields: Derive a field schema from an AcroForm
//   - page_info: Page sizes, metadata and signatures
//
// # Available Resources
//
//   - pdf://pages?path=... : Page information
//   - pdf://form-fields?path=... : Form fields as a field schema
//   - pdf://anchors?path=... : Signature anchors
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/mcp"
)

func main() {
	var level slog.Level
	flag.TextVar(&level, "log-level", slog.LevelWarn, "log level written to stderr")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer()
	server.SetLogger(logger)

	mcp.RegisterDefaultTools(server, formfill.WithLogger(logger))
	mcp.RegisterDefaultResources(server)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "formfill-mcp: %v\n", err)
		os.Exit(1)
	}
}
