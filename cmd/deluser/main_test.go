package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/userdesk/userdesk/internal/client"
)

func TestPrompt(t *testing.T) {
	var (
		mu        sync.Mutex
		submitted []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		submitted = append(submitted, body.Username)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if body.Username == "alice" {
			_, _ = io.WriteString(w, `{"message":"User deleted successfully"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"User not found"}`)
	}))
	defer srv.Close()

	var notices []string
	form, err := client.NewDeleteUserForm(client.Config{
		Endpoint: srv.URL + "/auth/delete/user",
		Doer:     srv.Client(),
		Notifier: client.NotifierFunc(func(msg string) { notices = append(notices, msg) }),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewDeleteUserForm() error = %v", err)
	}

	var out bytes.Buffer
	in := strings.NewReader("alice\n\nmallory\r\n")
	if err := prompt(context.Background(), form, in, &out); err != nil {
		t.Fatalf("prompt() error = %v", err)
	}

	if strings.Join(submitted, ",") != "alice,mallory" {
		t.Errorf("submitted = %v", submitted)
	}
	if len(notices) != 2 || notices[0] != "User deleted successfully" || notices[1] != "Error: User not found" {
		t.Errorf("notices = %v", notices)
	}
	if !strings.Contains(out.String(), "Please fill in the username.") {
		t.Errorf("empty line not rejected: %q", out.String())
	}
}
