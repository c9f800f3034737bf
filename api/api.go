// Package api embeds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPI is the raw OpenAPI 3 document served by cmd/api.
//
//go:embed openapi.yaml
var OpenAPI []byte
