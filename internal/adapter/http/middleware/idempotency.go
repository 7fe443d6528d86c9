package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	redisrepo "github.com/iho/energyledger/internal/adapter/repository/redis"
	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks responses served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyMiddleware replays the first response of a keyed POST.
// Keys are scoped by caller, method and path. 5xx responses release the key
// so the client may retry.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = scopedKey(r, key)

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed", "internal")
			return
		}

		if exists {
			m.replay(w, cached)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		// a panicking handler must not leave the pending marker behind;
		// recovery happens further out
		defer func() {
			if p := recover(); p != nil {
				m.release(r, key)
				panic(p)
			}
		}()

		next.ServeHTTP(recorder, r)

		if recorder.statusCode >= http.StatusInternalServerError {
			m.release(r, key)
			return
		}

		// the request context may already be cancelled
		ctx := context.WithoutCancel(r.Context())

		stored, err := json.Marshal(storedResponse{
			Status:      recorder.statusCode,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(ctx, key, stored, m.ttl)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) release(r *http.Request, key string) {
	if err := m.store.Release(context.WithoutCancel(r.Context()), key); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
	}
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, cached []byte) {
	if string(cached) == redisrepo.PendingMarker {
		writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress", "idempotency_in_progress")
		return
	}

	var resp storedResponse
	if err := json.Unmarshal(cached, &resp); err != nil {
		m.logger.Error().Err(err).Msg("corrupt idempotency record")
		writeJSONError(w, http.StatusInternalServerError, "idempotency check failed", "internal")
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func scopedKey(r *http.Request, key string) string {
	identity, _ := domain.IdentityFromContext(r.Context())
	return strings.Join([]string{identity, r.Method, r.URL.Path, key}, "|")
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
