package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/userdesk/userdesk/internal/auth"
	"github.com/userdesk/userdesk/internal/metrics"
	"github.com/userdesk/userdesk/internal/model"
)

// DefaultMinAuthDuration is the minimum time spent on authentication so that
// failures and successes are indistinguishable by latency.
const DefaultMinAuthDuration = 200 * time.Millisecond

// Auth failure reasons, used for logging and metrics.
const (
	reasonMissingKey    = "missing_key"
	reasonInvalidFormat = "invalid_format"
	reasonInvalidKey    = "invalid_key"
	reasonStoreError    = "store_error"
)

// KeyLookup finds active API keys by their lookup prefix.
type KeyLookup interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// AuthCache stores verified auth contexts keyed by a fingerprint of the key.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Keys    KeyLookup
	Cache   AuthCache // optional
	Metrics metrics.Recorder

	// MinDuration pads every authentication attempt to at least this long.
	// Zero disables padding.
	MinDuration time.Duration
}

// Auth returns a middleware that authenticates API requests.
// It extracts the API key from the Authorization header,
// verifies it, and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			authCtx, reason := authenticate(r, cfg)

			// Padding covers the auth step only, not the downstream handler.
			if cfg.MinDuration > 0 {
				pad(r.Context(), start, cfg.MinDuration)
			}

			if authCtx == nil {
				cfg.Metrics.IncAuthFailure(reason)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate resolves the request's API key to an auth context. On failure
// it returns nil and the reason.
func authenticate(r *http.Request, cfg AuthConfig) (*model.AuthContext, string) {
	ctx := r.Context()

	key := extractAPIKey(r)
	if key == "" {
		return nil, reasonMissingKey
	}

	parsed, err := auth.ParseAPIKey(key)
	if err != nil {
		return nil, reasonInvalidFormat
	}

	cacheKey := auth.CacheKey(key)
	if cfg.Cache != nil {
		cached, err := cfg.Cache.GetAuthContext(ctx, cacheKey)
		if err != nil {
			cfg.Logger.Warn("auth cache read failed",
				slog.String("error", err.Error()),
				slog.String("request_id", GetRequestID(ctx)),
			)
		}
		if cached != nil {
			cfg.Metrics.IncAuthCacheHit()
			logAuthSuccess(cfg.Logger, r, cached, true)
			return cached, ""
		}
		cfg.Metrics.IncAuthCacheMiss()
	}

	keys, err := cfg.Keys.GetAPIKeysByPrefix(ctx, parsed.Prefix)
	if err != nil {
		cfg.Logger.Error("database error during auth",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(ctx)),
		)
		return nil, reasonStoreError
	}

	// Several keys may share a prefix; verify each candidate.
	var matched *model.APIKey
	for _, k := range keys {
		ok, err := auth.VerifyKey(key, k.KeyHash)
		if err != nil {
			continue
		}
		if ok {
			matched = k
			break
		}
	}
	if matched == nil || matched.IsRevoked() {
		return nil, reasonInvalidKey
	}

	authCtx := &model.AuthContext{
		KeyID:     matched.ID,
		KeyPrefix: matched.KeyPrefix,
		UserID:    matched.UserID,
		Username:  matched.Username,
		Scopes:    matched.Scopes,
	}

	if cfg.Cache != nil {
		if err := cfg.Cache.SetAuthContext(ctx, cacheKey, authCtx); err != nil {
			cfg.Logger.Warn("auth cache write failed",
				slog.String("error", err.Error()),
				slog.String("request_id", GetRequestID(ctx)),
			)
		}
	}

	// last_used_at is best effort and must outlive the request.
	bg := context.WithoutCancel(ctx)
	go func() {
		_ = cfg.Keys.UpdateAPIKeyLastUsed(bg, matched.ID)
	}()

	logAuthSuccess(cfg.Logger, r, authCtx, false)
	return authCtx, ""
}

func logAuthSuccess(logger *slog.Logger, r *http.Request, authCtx *model.AuthContext, cacheHit bool) {
	logger.Info("authentication successful",
		slog.String("key_id", authCtx.KeyID),
		slog.String("key_prefix", authCtx.KeyPrefix),
		slog.String("user_id", authCtx.UserID),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Bool("cache_hit", cacheHit),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func pad(ctx context.Context, start time.Time, floor time.Duration) {
	remaining := floor - time.Since(start)
	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// extractAPIKey extracts the API key from the request.
// Supports both "Authorization: Bearer <key>" and "X-API-Key: <key>" headers.
func extractAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing API key"}}`))
}
