// Package schema validates language model replies against JSON schemas.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalid is returned when a document does not satisfy its schema.
var ErrInvalid = errors.New("document does not match schema")

// maxReportedErrors bounds the error detail returned to callers.
const maxReportedErrors = 3

// Validator compiles schemas once and caches them by source text.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks doc against the JSON schema in schemaJSON.
func (v *Validator) Validate(schemaJSON string, doc []byte) error {
	compiled, err := v.compile(schemaJSON)
	if err != nil {
		return fmt.Errorf("invalid schema definition; %w", err)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w; %v", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w; %s", ErrInvalid, summarize(errs))
}

func (v *Validator) compile(schemaJSON string) (*gojsonschema.Schema, error) {
	if cached, ok := v.cache.Load(schemaJSON); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, err
	}

	v.cache.Store(schemaJSON, compiled)
	return compiled, nil
}

func summarize(errs []string) string {
	if len(errs) <= maxReportedErrors {
		return strings.Join(errs, "; ")
	}
	return fmt.Sprintf("%s ... and %d more", strings.Join(errs[:maxReportedErrors], "; "), len(errs)-maxReportedErrors)
}
