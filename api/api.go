// Package api embeds the OpenAPI description of the FormState HTTP API.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Spec is the raw OpenAPI document served at /openapi.yaml.
//
//go:embed openapi.yaml
var Spec []byte

var load = sync.OnceValues(func() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
})

// Document returns the parsed and validated OpenAPI document.
// The document is shared and must not be modified.
func Document() (*openapi3.T, error) {
	return load()
}
