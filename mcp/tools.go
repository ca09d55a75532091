package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/anchor"
	"github.com/lvillar/formfill/form"
	"github.com/lvillar/formfill/reader"
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/source"
)

// RegisterDefaultTools adds the built-in tools to the server. opts apply
// to every generate_pdf call.
func RegisterDefaultTools(s *Server, opts ...formfill.Option) {
	s.AddTool(generatePDFTool(opts))
	s.AddTool(validatePayloadTool())
	s.AddTool(locateAnchorsTool())
	s.AddTool(listFormFieldsTool())
	s.AddTool(pageInfoTool())
}

var locationProperty = map[string]any{
	"type":        "string",
	"description": "Path, file:// or http(s) URL of the PDF",
}

func generatePDFTool(opts []formfill.Option) Tool {
	return Tool{
		Name:        "generate_pdf",
		Description: "Overlay a JSON payload onto a base PDF using a field schema. Each field places a typed value (TEXT, CHECKBOX, DATE, SIGNATURE_ANCHOR, IMAGE, BARCODE, ...) at a rectangle given in points from the top-left corner of a page. Returns the PDF as base64, or writes it to outputPath.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"fileUrl": locationProperty,
				"fieldSchema": map[string]any{
					"type":        "array",
					"description": "Fields: {id, key, type, pageIndex, rect: {x, y, w, h}, style, validation}",
				},
				"payload": map[string]any{
					"type":        "object",
					"description": "Values looked up by each field's dotted key",
				},
				"options": map[string]any{
					"type":        "object",
					"description": "{flatten: bool}. The output is always static: values of existing form fields are drawn as page content either way.",
				},
				"validate": map[string]any{
					"type":        "boolean",
					"description": "Reject payloads that break the schema's validation rules",
				},
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the PDF. If omitted, returns base64.",
				},
			},
			"required": []string{"fileUrl", "fieldSchema", "payload"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			return handleGeneratePDF(ctx, args, opts)
		},
	}
}

func handleGeneratePDF(ctx context.Context, args map[string]any, opts []formfill.Option) (ToolResult, error) {
	var req formfill.Request
	if err := decodeArgs(args, &req); err != nil {
		return ToolResult{}, err
	}
	req.Options.Output = schema.OutputBuffer
	if v, _ := args["validate"].(bool); v {
		opts = append(opts[:len(opts):len(opts)], formfill.WithValidation())
	}

	out, err := formfill.Generate(ctx, req, opts...)
	var verr *schema.ValidationErrors
	if errors.As(err, &verr) {
		return jsonResult(verr, true)
	}
	if err != nil {
		return ToolResult{}, err
	}

	if outputPath, _ := args["outputPath"].(string); outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult(fmt.Sprintf("PDF generated successfully: %s (%d bytes)", outputPath, len(out))), nil
	}
	return ToolResult{
		Content: []ContentBlock{
			{Type: "text", Text: fmt.Sprintf("PDF generated successfully (%d bytes).", len(out))},
			{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(out)},
		},
	}, nil
}

func validatePayloadTool() Tool {
	return Tool{
		Name:        "validate_payload",
		Description: "Check a payload against the validation rules (required, regex, maxLen) of a field schema without generating a document. Fields whose type the renderer does not know are listed under unknownTypes; they render nothing.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"fieldSchema": map[string]any{"type": "array"},
				"payload":     map[string]any{"type": "object"},
			},
			"required": []string{"fieldSchema", "payload"},
		},
		Handler: handleValidatePayload,
	}
}

func handleValidatePayload(_ context.Context, args map[string]any) (ToolResult, error) {
	var req struct {
		FieldSchema []schema.Field `json:"fieldSchema"`
		Payload     any            `json:"payload"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return ToolResult{}, err
	}
	report := map[string]any{
		"violations":   []schema.Violation{},
		"unknownTypes": unknownTypes(req.FieldSchema),
	}
	err := schema.Validate(req.FieldSchema, req.Payload)
	var verr *schema.ValidationErrors
	if errors.As(err, &verr) {
		report["violations"] = verr.Violations
	} else if err != nil {
		return ToolResult{}, err
	}
	return jsonResult(report, false)
}

// unknownTypes maps the id of every field with an unrecognized type to
// that type.
func unknownTypes(fields []schema.Field) map[string]schema.FieldType {
	out := make(map[string]schema.FieldType)
	for _, f := range fields {
		if !f.Type.Known() {
			out[f.ID] = f.Type
		}
	}
	return out
}

func locateAnchorsTool() Tool {
	return Tool{
		Name:        "locate_anchors",
		Description: "Find the invisible signature anchor markers (\\s{fieldId}\\) in a generated PDF and report their page and position.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": locationProperty,
				"data": map[string]any{
					"type":        "string",
					"description": "The PDF as base64, instead of path",
				},
			},
		},
		Handler: handleLocateAnchors,
	}
}

func handleLocateAnchors(ctx context.Context, args map[string]any) (ToolResult, error) {
	data, err := pdfArgument(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	anchors, err := anchor.Locate(data)
	if err != nil {
		return ToolResult{}, err
	}
	if anchors == nil {
		anchors = []anchor.Anchor{}
	}
	return jsonResult(map[string]any{"anchors": anchors}, false)
}

func listFormFieldsTool() Tool {
	return Tool{
		Name:        "list_form_fields",
		Description: "Read the AcroForm of a PDF and return its widgets as a field schema ready for generate_pdf.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": locationProperty,
			},
			"required": []string{"path"},
		},
		Handler: handleListFormFields,
	}
}

func handleListFormFields(ctx context.Context, args map[string]any) (ToolResult, error) {
	doc, err := openDocument(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	return jsonResult(formFieldsInfo(doc), false)
}

func pageInfoTool() Tool {
	return Tool{
		Name:        "page_info",
		Description: "Get the page count, page sizes in points, metadata and any digital signatures of a PDF. Field rectangles are placed within these sizes.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": locationProperty,
			},
			"required": []string{"path"},
		},
		Handler: handlePageInfo,
	}
}

func handlePageInfo(ctx context.Context, args map[string]any) (ToolResult, error) {
	data, err := pdfArgument(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	doc, err := reader.Parse(data)
	if err != nil {
		return ToolResult{}, fmt.Errorf("opening PDF: %w", err)
	}
	info := pagesInfo(doc)
	info["version"] = doc.Version
	info["metadata"] = doc.Metadata()
	if sigs := anchor.Signatures(data); len(sigs) > 0 {
		info["signatures"] = sigs
	}
	return jsonResult(info, false)
}

func pagesInfo(doc *reader.Document) map[string]any {
	pages := make([]map[string]any, 0, doc.NumPages())
	for n, page := range doc.Pages() {
		w, h := page.Size()
		pages = append(pages, map[string]any{
			"page":      n,
			"pageIndex": n - 1,
			"width":     w,
			"height":    h,
			"rotate":    page.Rotate,
		})
	}
	return map[string]any{
		"numPages": doc.NumPages(),
		"pages":    pages,
	}
}

func formFieldsInfo(doc *reader.Document) map[string]any {
	fields := form.Fields(doc)
	if fields == nil {
		fields = []schema.Field{}
	}
	return map[string]any{
		"fieldCount":  len(fields),
		"fieldSchema": fields,
	}
}

// pdfArgument loads the PDF named by the path argument, or decodes the
// data argument.
func pdfArgument(ctx context.Context, args map[string]any) ([]byte, error) {
	if data, _ := args["data"].(string); data != "" {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decoding 'data': %w", err)
		}
		return b, nil
	}
	path, _ := args["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("missing 'path' argument")
	}
	return loadPDF(ctx, path)
}

func openDocument(ctx context.Context, args map[string]any) (*reader.Document, error) {
	data, err := pdfArgument(ctx, args)
	if err != nil {
		return nil, err
	}
	doc, err := reader.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return doc, nil
}

func loadPDF(ctx context.Context, location string) ([]byte, error) {
	var l source.Loader
	return l.Load(ctx, location)
}

// decodeArgs converts tool arguments into v through JSON.
func decodeArgs(args map[string]any, v any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func textResult(text string) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

func jsonResult(v any, isError bool) (ToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	r := textResult(string(b))
	r.IsError = isError
	return r, nil
}
