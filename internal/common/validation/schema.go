// Package validation checks inbound flat JSON order events against a JSON
// schema before they reach field extraction.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sms-notifier/internal/common/errors"
)

const orderEventSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"to": {"type": "string", "minLength": 1},
		"phoneNumber": {"type": "string", "minLength": 1},
		"message": {"type": "string", "minLength": 1},
		"banner": {"type": "string", "minLength": 1},
		"orderNumber": {"type": "string"},
		"createdAt": {"type": "string"},
		"action": {"type": "string"}
	},
	"required": ["message", "banner"],
	"anyOf": [
		{"required": ["to"]},
		{"required": ["phoneNumber"]}
	]
}`

// Validator validates raw JSON order events.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the order event schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(orderEventSchema))
	if err != nil {
		return nil, err
	}
	return &Validator{schema: schema}, nil
}

// Validate checks the raw event payload. A schema violation is returned as a
// non-retryable SCHEMA_VALIDATION_FAILED error listing every failed check.
func (v *Validator) Validate(raw []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.NewInvalidDocumentError(err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return errors.NewSchemaValidationError(strings.Join(details, "; "))
}
