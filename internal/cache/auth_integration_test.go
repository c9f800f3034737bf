//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/userdesk/userdesk/internal/model"
	"github.com/userdesk/userdesk/internal/testutil"
)

func TestIntegrationCache_InvalidateUserAuthContexts(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	owner := &model.AuthContext{KeyID: "k1", KeyPrefix: "abc123", UserID: "u1", Username: "alice", Scopes: []string{model.ScopeWrite}}
	other := &model.AuthContext{KeyID: "k2", KeyPrefix: "def456", UserID: "u2", Username: "bob", Scopes: []string{model.ScopeRead}}

	if err := c.SetAuthContext(ctx, "hash-1", owner); err != nil {
		t.Fatalf("SetAuthContext failed: %v", err)
	}
	if err := c.SetAuthContext(ctx, "hash-2", other); err != nil {
		t.Fatalf("SetAuthContext failed: %v", err)
	}

	got, err := c.GetAuthContext(ctx, "hash-1")
	if err != nil || got == nil {
		t.Fatalf("GetAuthContext = %v, %v; want hit", got, err)
	}
	if got.Username != "alice" {
		t.Errorf("username = %q, want alice", got.Username)
	}

	if err := c.InvalidateUserAuthContexts(ctx, "u1"); err != nil {
		t.Fatalf("InvalidateUserAuthContexts failed: %v", err)
	}

	if got, _ := c.GetAuthContext(ctx, "hash-1"); got != nil {
		t.Error("auth context of invalidated user should be gone")
	}
	if got, _ := c.GetAuthContext(ctx, "hash-2"); got == nil {
		t.Error("auth context of another user should survive")
	}

	// Invalidating a user with nothing cached is not an error.
	if err := c.InvalidateUserAuthContexts(ctx, "nobody"); err != nil {
		t.Errorf("InvalidateUserAuthContexts(nobody) = %v", err)
	}
}
