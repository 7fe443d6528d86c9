package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	redisrepo "github.com/iho/energyledger/internal/adapter/repository/redis"
	"github.com/iho/energyledger/internal/domain"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	releaseFn     func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, key)
	}
	return nil
}

func newRedisIdempotency(t *testing.T) *IdempotencyMiddleware {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewIdempotencyMiddleware(redisrepo.NewIdempotencyStore(client), time.Hour, zerolog.Nop())
}

func keyedPost(identity, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trades", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req.WithContext(domain.WithIdentity(req.Context(), identity))
}

func TestIdempotencyMiddleware_FailsClosedOnStoreErrors(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, keyedPost("Y", "key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnServerError(t *testing.T) {
	var updated, released bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
		releaseFn: func(ctx context.Context, key string) error {
			released = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})).ServeHTTP(rr, keyedPost("Y", "key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if !released {
		t.Fatalf("expected key to be released after a server error")
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	mw := newRedisIdempotency(t)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"trade_id":"t1"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, keyedPost("Y", "k1"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, keyedPost("Y", "k1"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != `{"trade_id":"t1"}` {
		t.Fatalf("unexpected replay body %q", second.Body.String())
	}
	if second.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatal("expected replay header")
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected stored content type, got %q", second.Header().Get("Content-Type"))
	}
}

func TestIdempotencyMiddleware_ReplaysDomainRejections(t *testing.T) {
	mw := newRedisIdempotency(t)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusPaymentRequired)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, keyedPost("Y", "k2"))
		if rr.Code != http.StatusPaymentRequired {
			t.Fatalf("attempt %d: expected 402, got %d", i, rr.Code)
		}
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_ScopesKeysByCaller(t *testing.T) {
	mw := newRedisIdempotency(t)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), keyedPost("alice", "shared"))
	handler.ServeHTTP(httptest.NewRecorder(), keyedPost("bob", "shared"))

	if calls != 2 {
		t.Fatalf("expected keys of different callers not to collide, handler ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_InFlightConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(redisrepo.PendingMarker), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run while the key is pending")
	})).ServeHTTP(rr, keyedPost("Y", "busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_IgnoresUnkeyedAndReads(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store must not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, 0, zerolog.Nop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	get := httptest.NewRequest(http.MethodGet, "/api/v1/trades", nil)
	get.Header.Set(IdempotencyKeyHeader, "k")
	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), get)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/trades", nil)
	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), post)
}

func TestIdempotencyMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	mw := newRedisIdempotency(t)

	var calls int
	handler := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			panic("settlement blew up")
		}
		w.WriteHeader(http.StatusCreated)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, keyedPost("Y", "key-panic"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected recovered 500, got %d", rr.Code)
	}

	// the retry runs instead of hitting the pending marker
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, keyedPost("Y", "key-panic"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected retry to run the handler, got %d: %s", rr.Code, rr.Body.String())
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, got %d", calls)
	}
}

func TestIdempotencyMiddleware_PanicPropagatesAfterRelease(t *testing.T) {
	var released bool
	store := &fakeIdempotencyStore{
		releaseFn: func(ctx context.Context, key string) error {
			released = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	defer func() {
		if p := recover(); p != "boom" {
			t.Fatalf("expected original panic to propagate, got %v", p)
		}
		if !released {
			t.Fatalf("expected key to be released before the panic propagates")
		}
	}()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(httptest.NewRecorder(), keyedPost("Y", "key-boom"))
}
