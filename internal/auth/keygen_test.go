package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env        string
		wantPrefix string
	}{
		{EnvLive, "ud_live_"},
		{EnvTest, "ud_test_"},
		{"", "ud_live_"},
		{"staging", "ud_live_"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			key, err := GenerateAPIKey(tt.env)
			if err != nil {
				t.Fatalf("GenerateAPIKey failed: %v", err)
			}
			if !strings.HasPrefix(key.Plaintext, tt.wantPrefix) {
				t.Errorf("key %q should start with %q", key.Plaintext, tt.wantPrefix)
			}
			if len(key.Prefix) != KeyPrefixLen {
				t.Errorf("Prefix should be %d chars, got: %d", KeyPrefixLen, len(key.Prefix))
			}

			parsed, err := ParseAPIKey(key.Plaintext)
			if err != nil {
				t.Fatalf("generated key should parse: %v", err)
			}
			if parsed.Prefix != key.Prefix {
				t.Errorf("parsed prefix = %q, want %q", parsed.Prefix, key.Prefix)
			}

			match, err := VerifyKey(key.Plaintext, key.Hash)
			if err != nil || !match {
				t.Errorf("generated hash should verify: match=%v err=%v", match, err)
			}
		})
	}
}

func TestParseAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		key        string
		wantEnv    string
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "valid live key",
			key:        "ud_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantEnv:    "live",
			wantPrefix: "abc123",
		},
		{
			name:       "valid test key",
			key:        "ud_test_def456_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantEnv:    "test",
			wantPrefix: "def456",
		},
		{
			name:    "foreign prefix",
			key:     "pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidKeyFormat,
		},
		{
			name:    "unknown env",
			key:     "ud_prod_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidKeyFormat,
		},
		{
			name:    "short secret",
			key:     "ud_live_abc123_4f8d2e1b",
			wantErr: ErrInvalidKeyFormat,
		},
		{
			name:    "uppercase hex",
			key:     "ud_live_ABC123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidKeyFormat,
		},
		{
			name:    "empty string",
			key:     "",
			wantErr: ErrInvalidKeyFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseAPIKey(tt.key)
			if err != tt.wantErr {
				t.Fatalf("ParseAPIKey(%q) error = %v, want %v", tt.key, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if parsed.Env != tt.wantEnv {
				t.Errorf("Env = %q, want %q", parsed.Env, tt.wantEnv)
			}
			if parsed.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %q, want %q", parsed.Prefix, tt.wantPrefix)
			}
		})
	}
}
