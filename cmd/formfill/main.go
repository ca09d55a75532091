// Command formfill renders a payload onto a base PDF.
//
// Usage:
//
//	formfill [flags] REQUEST
//
// REQUEST is a JSON request body, or @path naming a JSON or YAML file:
//
//	fileUrl: https://example.com/lease.pdf
//	fieldSchema:
//	  - id: tenant
//	    key: tenant.name
//	    type: TEXT
//	    pageIndex: 0
//	    rect: {x: 72, y: 140, w: 220, h: 18}
//	payload:
//	  tenant: {name: Grace Hopper}
//	options: {flatten: true}
//
// The document is written to -o, or to standard output.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/formfill"
)

var errUsage = errors.New("usage: formfill [flags] REQUEST")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("formfill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		level    slog.Level
		out      = fs.String("o", "", "write the document to this file")
		validate = fs.Bool("validate", false, "reject payloads that break validation rules")
		font     = fs.String("font", "", "TrueType font file registered under its base name")
	)
	fs.TextVar(&level, "log-level", slog.LevelWarn, "log level written to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, errUsage)
		return 2
	}

	req, err := parseRequest(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "formfill: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	opts := []formfill.Option{formfill.WithLogger(logger)}
	if *validate {
		opts = append(opts, formfill.WithValidation())
	}
	if *font != "" {
		ttf, err := os.ReadFile(*font)
		if err != nil {
			fmt.Fprintf(stderr, "formfill: %v\n", err)
			return 2
		}
		opts = append(opts, formfill.WithFont(fontName(*font), ttf))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	doc, err := formfill.Generate(ctx, req, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "formfill: %v\n", err)
		return 1
	}

	if *out != "" {
		err = os.WriteFile(*out, doc, 0o644)
	} else {
		_, err = stdout.Write(doc)
	}
	if err != nil {
		fmt.Fprintf(stderr, "formfill: %v\n", err)
		return 1
	}
	return 0
}

// parseRequest decodes a request given inline as JSON or as @file.
func parseRequest(arg string) (formfill.Request, error) {
	var req formfill.Request
	path, ok := strings.CutPrefix(arg, "@")
	if !ok {
		if err := json.Unmarshal([]byte(arg), &req); err != nil {
			return req, fmt.Errorf("decoding request: %w", err)
		}
		return req, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	// YAML is a superset of JSON; the decoded tree is re-encoded so the
	// request's JSON field names apply to both.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return req, fmt.Errorf("decoding %s: %w", path, err)
	}
	if node.Kind == 0 {
		return req, fmt.Errorf("decoding %s: empty request", path)
	}
	keepTimestamps(&node)
	var tree any
	if err := node.Decode(&tree); err != nil {
		return req, fmt.Errorf("decoding %s: %w", path, err)
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return req, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decoding %s: %w", path, err)
	}
	return req, nil
}

// keepTimestamps retags plain timestamp scalars as strings so dates reach
// the payload as written.
func keepTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!timestamp" && n.Style&yaml.TaggedStyle == 0 {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		keepTimestamps(c)
	}
}

// fontName derives a family name from a font file path.
func fontName(path string) string {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
