package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAPIDocument(t *testing.T) {
	doc := []byte("openapi: 3.0.3\n")

	rec := httptest.NewRecorder()
	OpenAPIDocument(doc)(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	if rec.Body.String() != string(doc) {
		t.Errorf("body = %q", rec.Body.String())
	}
}
