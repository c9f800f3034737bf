package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/userdesk/userdesk/internal/auth"
	"github.com/userdesk/userdesk/internal/model"
	"github.com/userdesk/userdesk/internal/repository"
)

type output struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	KeyID       string   `json:"key_id"`
	Key         string   `json:"key"`
	KeyPrefix   string   `json:"key_prefix"`
	Scopes      []string `json:"scopes"`
	SeededUsers []string `json:"seeded_users,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "operator", "Username that owns the API key")
		name        = flag.String("name", "bootstrap", "API key name")
		scopesInput = flag.String("scopes", "write", "Comma-separated scopes (read,write,admin)")
		env         = flag.String("env", auth.EnvLive, "Key environment: live or test")
		seedUsers   = flag.String("seed-users", "", "Comma-separated usernames to create for deletion")
		migrate     = flag.Bool("migrate", false, "Apply migrations before bootstrapping")
		revoke      = flag.String("revoke", "", "Revoke the API key with this ID and exit")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := repository.Migrate(ctx, *databaseURL); err != nil {
			fail("migrate:", err)
		}
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fail("connect database:", err)
	}
	defer repo.Close()

	if *revoke != "" {
		if err := repo.RevokeAPIKey(ctx, *revoke); err != nil {
			fail("revoke api key:", err)
		}
		fmt.Println("revoked", *revoke)
		return
	}

	scopes, err := parseScopes(*scopesInput)
	if err != nil {
		fail(err)
	}

	owner, err := repo.GetOrCreateUser(ctx, &model.User{
		ID:       ulid.Make().String(),
		Username: *username,
	})
	if err != nil {
		fail("ensure user:", err)
	}

	seeded, err := seed(ctx, repo, splitList(*seedUsers))
	if err != nil {
		fail(err)
	}

	generated, err := auth.GenerateAPIKey(*env)
	if err != nil {
		fail("generate api key:", err)
	}

	apiKey := &model.APIKey{
		ID:        ulid.Make().String(),
		UserID:    owner.ID,
		KeyHash:   generated.Hash,
		KeyPrefix: generated.Prefix,
		Scopes:    scopes,
		Name:      *name,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateAPIKey(ctx, apiKey); err != nil {
		fail("create api key:", err)
	}

	out := output{
		UserID:      owner.ID,
		Username:    owner.Username,
		KeyID:       apiKey.ID,
		Key:         generated.Plaintext,
		KeyPrefix:   apiKey.KeyPrefix,
		Scopes:      scopes,
		SeededUsers: seeded,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

// seed creates each username that does not exist yet and returns the ones
// that now exist.
func seed(ctx context.Context, repo *repository.Repository, usernames []string) ([]string, error) {
	seeded := make([]string, 0, len(usernames))
	for _, u := range usernames {
		user, err := repo.GetOrCreateUser(ctx, &model.User{ID: ulid.Make().String(), Username: u})
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", u, err)
		}
		seeded = append(seeded, user.Username)
	}
	return seeded, nil
}

func parseScopes(input string) ([]string, error) {
	scopes := splitList(input)
	for _, scope := range scopes {
		if !isValidScope(scope) {
			return nil, fmt.Errorf("invalid scope: %s", scope)
		}
	}
	if len(scopes) == 0 {
		scopes = []string{model.ScopeWrite}
	}
	return scopes, nil
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidScope(scope string) bool {
	for _, allowed := range model.ValidScopes {
		if scope == allowed {
			return true
		}
	}
	return false
}

func fail(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
