package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestStore(t *testing.T, cfg IdempotencyConfig) *IdempotencyStore {
	t.Helper()
	store := NewIdempotencyStore(cfg)
	t.Cleanup(store.Stop)
	return store
}

// countingHandler counts invocations and writes a fixed response
type countingHandler struct {
	calls  atomic.Int64
	status int
	body   string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls.Add(1)
	status := h.status
	if status == 0 {
		status = http.StatusCreated
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(h.body))
}

func postWithKey(path, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

// ============================================================================
// Replay Tests
// ============================================================================

func TestIdempotency_DuplicatePost_Replays(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{body: `{"data":{"id":"post:1"}}`}
	wrapped := Idempotency(store)(handler)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, postWithKey("/v1/posts", "key-1", `{"title":"A"}`))

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, postWithKey("/v1/posts", "key-1", `{"title":"A"}`))

	if got := handler.calls.Load(); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
	if second.Code != first.Code || second.Body.String() != first.Body.String() {
		t.Errorf("replay mismatch: %d %q vs %d %q", second.Code, second.Body.String(), first.Code, first.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("expected X-Idempotency-Replayed on the replay")
	}
	if first.Header().Get("X-Idempotency-Replayed") == "true" {
		t.Error("first response must not be marked as a replay")
	}
}

func TestIdempotency_ErrorResponsesReplayToo(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{status: http.StatusConflict, body: `{"title":"Conflict"}`}
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/users", "key-409", `{"username":"dup"}`))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, postWithKey("/v1/users", "key-409", `{"username":"dup"}`))

	if handler.calls.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", handler.calls.Load())
	}
	if rr.Code != http.StatusConflict {
		t.Errorf("expected replayed 409, got %d", rr.Code)
	}
}

// ============================================================================
// Scope Tests
// ============================================================================

func TestIdempotency_OnlyMutationsAreCached(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{status: http.StatusOK}
	wrapped := Idempotency(store)(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
		req.Header.Set("Idempotency-Key", "key-get")
		wrapped.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := handler.calls.Load(); got != 2 {
		t.Errorf("GET requests should never be cached, handler ran %d times", got)
	}
}

func TestIdempotency_NoKey_PassesThrough(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	for i := 0; i < 2; i++ {
		wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "", `{"title":"A"}`))
	}

	if got := handler.calls.Load(); got != 2 {
		t.Errorf("keyless requests must not be cached, handler ran %d times", got)
	}
}

func TestIdempotency_DifferentBodySameKey_IsNotAReplay(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "key-1", `{"title":"A"}`))
	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "key-1", `{"title":"B"}`))

	if got := handler.calls.Load(); got != 2 {
		t.Errorf("a changed body is a new request, handler ran %d times", got)
	}
}

func TestIdempotency_DifferentPathSameKey_IsNotAReplay(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "key-1", `{}`))
	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/categories", "key-1", `{}`))

	if got := handler.calls.Load(); got != 2 {
		t.Errorf("a different path is a new request, handler ran %d times", got)
	}
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	for _, userID := range []string{"user:ana", "user:ben"} {
		req := postWithKey("/v1/posts", "shared-key", `{"title":"A"}`)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
		wrapped.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := handler.calls.Load(); got != 2 {
		t.Errorf("two users sharing a key must not share a cache entry, handler ran %d times", got)
	}
}

func TestIdempotency_HandlerSeesRequestBody(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, 64)
		n, _ := r.Body.Read(b)
		seen = string(b[:n])
		w.WriteHeader(http.StatusCreated)
	})
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "key-1", `{"title":"A"}`))

	if seen != `{"title":"A"}` {
		t.Errorf("handler read %q, body was consumed by the middleware", seen)
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestIdempotency_ConcurrentDuplicates_RunOnce(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("once"))
	})
	var calls atomic.Int64
	counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler.ServeHTTP(w, r)
	})
	wrapped := Idempotency(store)(counted)

	var wg sync.WaitGroup
	results := make([]*httptest.ResponseRecorder, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := httptest.NewRecorder()
			wrapped.ServeHTTP(rr, postWithKey("/v1/posts", "race-key", `{"title":"A"}`))
			results[i] = rr
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("handler ran %d times under concurrent duplicates, want 1", got)
	}
	for i, rr := range results {
		if rr.Code != http.StatusCreated || rr.Body.String() != "once" {
			t.Errorf("request %d got %d %q", i, rr.Code, rr.Body.String())
		}
	}
}

// ============================================================================
// Expiry Tests
// ============================================================================

func TestIdempotency_ExpiredEntry_ProcessesAgain(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{TTL: 10 * time.Millisecond, Cleanup: time.Hour})
	handler := &countingHandler{}
	wrapped := Idempotency(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "key-1", `{}`))
	time.Sleep(20 * time.Millisecond)
	wrapped.ServeHTTP(httptest.NewRecorder(), postWithKey("/v1/posts", "key-1", `{}`))

	if got := handler.calls.Load(); got != 2 {
		t.Errorf("expired entry should not replay, handler ran %d times", got)
	}
}

func TestDropExpired_RemovesOnlyStaleEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{Cleanup: time.Hour})

	store.mu.Lock()
	store.entries["stale"] = &cachedResponse{expiresAt: time.Now().Add(-time.Minute)}
	store.entries["fresh"] = &cachedResponse{expiresAt: time.Now().Add(time.Minute)}
	store.entries["pending"] = &cachedResponse{expiresAt: time.Now().Add(-time.Minute), inFlight: true}
	store.mu.Unlock()

	store.dropExpired()

	store.mu.RLock()
	defer store.mu.RUnlock()
	if _, ok := store.entries["stale"]; ok {
		t.Error("stale entry should be swept")
	}
	if _, ok := store.entries["fresh"]; !ok {
		t.Error("fresh entry should survive the sweep")
	}
	if _, ok := store.entries["pending"]; !ok {
		t.Error("in-flight entries must never be swept")
	}
}

// ============================================================================
// Defaults
// ============================================================================

func TestNewIdempotencyStore_AppliesDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, IdempotencyConfig{})

	if store.ttl != 24*time.Hour {
		t.Errorf("default TTL = %v, want 24h", store.ttl)
	}
}
