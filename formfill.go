// Package formfill overlays form data onto existing PDF documents.
//
// A field schema places typed fields at exact rectangles on the pages of a
// base document; a JSON payload supplies their values. Generate loads the
// base document, renders every field in schema order and returns the
// finished PDF, optionally base64 encoded:
//
//	out, err := formfill.Generate(ctx, formfill.Request{
//	    FileURL:     "https://example.com/contract.pdf",
//	    FieldSchema: fields,
//	    Payload:     map[string]any{"customer": map[string]any{"name": "Ada"}},
//	})
//
// Fields whose value is absent, whose page does not exist or whose type is
// unknown are skipped without error.
package formfill

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/lvillar/formfill/backend"
	"github.com/lvillar/formfill/render"
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/source"
)

// Request is a complete generation request.
type Request struct {
	FileURL     string               `json:"fileUrl"`
	FieldSchema []schema.Field       `json:"fieldSchema"`
	Payload     any                  `json:"payload"`
	Options     schema.RenderOptions `json:"options,omitzero"`
}

// Generate fetches the base document of req and renders it.
func Generate(ctx context.Context, req Request, opts ...Option) ([]byte, error) {
	if req.FileURL == "" {
		return nil, newOpError("load", ErrInvalidRequest, errors.New("fileUrl is required"))
	}
	if err := req.Options.Check(); err != nil {
		return nil, newOpError("load", ErrInvalidRequest, err)
	}
	cfg := newConfig(opts)
	loader := source.Loader{Client: cfg.client}
	base, err := loader.Load(ctx, req.FileURL)
	if err != nil {
		return nil, newOpError("load", ErrLoad, err)
	}
	cfg.logger.Debug("base document loaded", "url", req.FileURL, "bytes", len(base))
	return generate(base, req.FieldSchema, req.Payload, req.Options, cfg)
}

// Render renders fields with payload over base. The result is the raw PDF,
// or its base64 text when opts.Output is base64.
func Render(ctx context.Context, base []byte, fields []schema.Field, payload any, opts schema.RenderOptions, options ...Option) ([]byte, error) {
	if err := opts.Check(); err != nil {
		return nil, newOpError("render", ErrInvalidRequest, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, newOpError("render", nil, err)
	}
	return generate(base, fields, payload, opts, newConfig(options))
}

func generate(base []byte, fields []schema.Field, payload any, opts schema.RenderOptions, cfg *config) ([]byte, error) {
	if cfg.validate {
		if err := schema.Validate(fields, payload); err != nil {
			return nil, newOpError("validate", ErrValidation, err)
		}
	}

	doc, err := backend.Open(base, cfg.backend...)
	if err != nil {
		return nil, newOpError("open", ErrLoad, err)
	}
	doc.Draw(render.Plan(doc.Pages(), fields, payload, doc.Env()))
	// Base pages are re-created from their content streams, so existing
	// widgets never survive; their values are kept as static content.
	if !opts.Flatten {
		cfg.logger.Debug("output is always flattened")
	}
	doc.Flatten()

	out, err := doc.Bytes()
	if err != nil {
		return nil, newOpError("write", nil, err)
	}
	cfg.logger.Debug("document rendered", "fields", len(fields), "pages", len(doc.Pages()), "bytes", len(out))

	if opts.Output == schema.OutputBase64 {
		enc := make([]byte, base64.StdEncoding.EncodedLen(len(out)))
		base64.StdEncoding.Encode(enc, out)
		return enc, nil
	}
	return out, nil
}
