package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/lvillar/formfill/anchor"
	"github.com/lvillar/formfill/reader"
)

// RegisterDefaultResources adds the built-in PDF resources to the server.
// Resources use the pdf:// scheme with the document location as the path
// query parameter, e.g. pdf://pages?path=/path/to/file.pdf.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "pdf://pages",
		Name:        "PDF Page Info",
		Description: "Page count and page sizes in points. Pass the file path as a query parameter: pdf://pages?path=/path/to/file.pdf",
		MIMEType:    "application/json",
		Handler:     handlePagesResource,
	})

	s.AddResource(Resource{
		URI:         "pdf://form-fields",
		Name:        "PDF Form Fields",
		Description: "AcroForm widgets of a PDF as a field schema. Pass the file path as a query parameter: pdf://form-fields?path=/path/to/file.pdf",
		MIMEType:    "application/json",
		Handler:     handleFormFieldsResource,
	})

	s.AddResource(Resource{
		URI:         "pdf://anchors",
		Name:        "PDF Signature Anchors",
		Description: "Signature anchor markers of a generated PDF. Pass the file path as a query parameter: pdf://anchors?path=/path/to/file.pdf",
		MIMEType:    "application/json",
		Handler:     handleAnchorsResource,
	})
}

// resourceKey strips the query from a resource URI.
func resourceKey(uri string) string {
	key, _, _ := strings.Cut(uri, "?")
	return key
}

func pathFromURI(uri string) (string, error) {
	_, query, _ := strings.Cut(uri, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("parsing URI query: %w", err)
	}
	path := values.Get("path")
	if path == "" {
		return "", fmt.Errorf("missing 'path' parameter in URI")
	}
	return path, nil
}

func handlePagesResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	doc, err := resourceDocument(ctx, uri)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, pagesInfo(doc))
}

func handleFormFieldsResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	doc, err := resourceDocument(ctx, uri)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, formFieldsInfo(doc))
}

func handleAnchorsResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	doc, err := resourceDocument(ctx, uri)
	if err != nil {
		return nil, err
	}
	anchors, err := anchor.LocateIn(doc)
	if err != nil {
		return nil, err
	}
	if anchors == nil {
		anchors = []anchor.Anchor{}
	}
	return jsonContent(uri, map[string]any{"anchors": anchors})
}

func resourceDocument(ctx context.Context, uri string) (*reader.Document, error) {
	path, err := pathFromURI(uri)
	if err != nil {
		return nil, err
	}
	return openDocument(ctx, map[string]any{"path": path})
}

func jsonContent(uri string, v any) ([]ResourceContent, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(b),
	}}, nil
}
