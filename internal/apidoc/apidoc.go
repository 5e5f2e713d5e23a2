// Package apidoc embeds, validates and serves the service's OpenAPI document.
package apidoc

import (
	_ "embed"
	"fmt"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specData []byte

// Document is the parsed, validated OpenAPI description of this service.
type Document struct {
	doc  *openapi3.T
	json []byte
}

// Load parses and validates the embedded document. It runs once at startup;
// a validation failure means the binary was built with a broken document and
// is a startup error.
func Load() (*Document, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(specData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("OpenAPI document validation failed: %w", err)
	}

	buf, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize OpenAPI document: %w", err)
	}

	return &Document{doc: doc, json: buf}, nil
}

// Version returns the document's info.version.
func (d *Document) Version() string {
	if d.doc.Info == nil {
		return ""
	}
	return d.doc.Info.Version
}

// Handler serves the document as JSON.
func (d *Document) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(d.json)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(d.json)
	})
}
