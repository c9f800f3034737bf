package handler

import "net/http"

// OpenAPIDocument serves a static OpenAPI document.
//
// GET /openapi.yaml
func OpenAPIDocument(doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(doc)
	}
}
