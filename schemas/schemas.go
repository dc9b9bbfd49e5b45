// Package schemas embeds the JSON Schemas used to validate ocracle files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the schema for ocracle.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
