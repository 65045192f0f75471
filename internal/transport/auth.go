package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/pkg/logging"
)

// KeyResolver maps a raw API key to the member that owns it. Unknown keys
// return repository.ErrNotFound.
type KeyResolver interface {
	ResolveMember(ctx context.Context, rawKey string) (string, error)
}

// RequireAPIKey rejects requests that do not carry a known API key as a
// bearer token. The MCP layer binds the member to each tool call itself, so
// this gate only keeps anonymous clients from opening sessions.
func RequireAPIKey(keys KeyResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logging.OrDiscard(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := bearerToken(r)
			if !ok {
				challengeAuth(w, `Bearer realm="roundup"`, "api key required")
				return
			}

			memberID, err := keys.ResolveMember(r.Context(), key)
			switch {
			case errors.Is(err, repository.ErrNotFound) || (err == nil && memberID == ""):
				logger.Debug("rejected api key", "path", r.URL.Path)
				challengeAuth(w, `Bearer realm="roundup", error="invalid_token"`, "unknown api key")
				return
			case err != nil:
				logger.Error("api key lookup failed", "error", err)
				http.Error(w, "api key lookup failed", http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credentials of an Authorization header using the
// Bearer scheme. The scheme name is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func challengeAuth(w http.ResponseWriter, header, msg string) {
	w.Header().Set("WWW-Authenticate", header)
	http.Error(w, msg, http.StatusUnauthorized)
}
