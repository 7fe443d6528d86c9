package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/auth"
)

// ParticipantHeader carries the caller identity when JWT auth is disabled.
const ParticipantHeader = "X-Participant-ID"

// IdentityMiddleware resolves the caller identity and stores it with
// domain.WithIdentity. Requests without credentials pass through anonymously;
// handlers that act on behalf of a caller reject them.
type IdentityMiddleware struct {
	jwtManager *auth.JWTManager
}

// NewIdentityMiddleware creates an IdentityMiddleware. With a nil manager the
// identity is taken from the X-Participant-ID header.
func NewIdentityMiddleware(jwtManager *auth.JWTManager) *IdentityMiddleware {
	return &IdentityMiddleware{jwtManager: jwtManager}
}

// Wrap wraps an http.Handler with identity resolution.
func (m *IdentityMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, status, msg := m.resolve(r)
		if status != 0 {
			writeJSONError(w, status, msg, "unauthenticated")
			return
		}

		if identity != "" {
			r = r.WithContext(domain.WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *IdentityMiddleware) resolve(r *http.Request) (string, int, string) {
	if m.jwtManager == nil {
		identity := r.Header.Get(ParticipantHeader)
		if identity == "" {
			return "", 0, ""
		}
		if err := domain.ValidateIdentity(identity); err != nil {
			return "", http.StatusUnauthorized, err.Error()
		}
		return identity, 0, ""
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", 0, ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", http.StatusUnauthorized, "invalid authorization header format"
	}

	claims, err := m.jwtManager.Verify(parts[1])
	if err != nil {
		return "", http.StatusUnauthorized, "invalid or expired token"
	}

	return claims.Identity(), 0, ""
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
