package assets

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const blockstateSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["model", "face"],
	"properties": {
		"model": {"$ref": "#/$defs/variant"},
		"variants": {
			"type": "object",
			"additionalProperties": {"$ref": "#/$defs/variant"}
		},
		"face": {"type": "string", "minLength": 1},
		"overrides": {
			"type": "object",
			"propertyNames": {"enum": ["down", "up", "north", "south", "west", "east"]},
			"additionalProperties": {"type": "string", "minLength": 1}
		},
		"ignore_states": {"type": "boolean"}
	},
	"additionalProperties": false,
	"$defs": {
		"variant": {
			"type": "object",
			"required": ["model"],
			"properties": {
				"model": {"type": "string", "minLength": 1},
				"x": {"enum": [0, 90, 180, 270]},
				"y": {"enum": [0, 90, 180, 270]},
				"uvlock": {"type": "boolean"}
			},
			"additionalProperties": false
		}
	}
}`

const faceSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["textures"],
	"properties": {
		"textures": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["textures"],
				"properties": {
					"type": {"type": "string"},
					"layer": {"enum": ["", "solid", "cutout_mipped", "cutout", "translucent"]},
					"textures": {
						"type": "array",
						"minItems": 1,
						"items": {"type": "string", "minLength": 1}
					}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

var (
	blockstateDoc = jsonschema.MustCompileString("blockstate.schema.json", blockstateSchema)
	faceDoc       = jsonschema.MustCompileString("face.schema.json", faceSchema)
)

// decodeValidated validates data against schema, then decodes it into v.
func decodeValidated(path string, data []byte, schema *jsonschema.Schema, v any) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}
