package dataslayer

import (
	"bytes"
	"strings"
	"sync"

	"pulse/model/model"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const payloadSchemaURL = "https://pulse.local/schemas/dataslayer_payload.json"

// api_key is checked before the schema so that a missing key is an
// authentication failure and not a validation one.
const payloadSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["metric_type", "data"],
	"properties": {
		"source": {"type": ["string", "null"]},
		"metric_type": {
			"type": "string",
			"minLength": 1,
			"not": {"const": "aggregated"}
		},
		"data": {"type": "object"},
		"date_range_start": {"$ref": "#/$defs/optionalDate"},
		"date_range_end": {"$ref": "#/$defs/optionalDate"},
		"api_key": {"type": "string"}
	},
	"$defs": {
		"optionalDate": {
			"anyOf": [
				{"type": "null"},
				{"type": "string", "maxLength": 0},
				{"type": "string", "format": "date"}
			]
		}
	}
}`

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func getPayloadSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
		if err != nil {
			compiledSchemaErr = errors.Wrap(err, "failed to decode payload schema")
			return
		}

		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat()
		if err := compiler.AddResource(payloadSchemaURL, doc); err != nil {
			compiledSchemaErr = errors.Wrap(err, "failed to add payload schema")
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(payloadSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidatePayload validates the raw body against the webhook payload schema.
func ValidatePayload(body []byte) error {
	schema, err := getPayloadSchema()
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return model.NewValidationError("Invalid JSON payload", err.Error())
	}

	if err := schema.Validate(instance); err != nil {
		return model.NewValidationError("Invalid payload", err.Error())
	}
	return nil
}
