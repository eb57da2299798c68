package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore caches mutation responses keyed by Idempotency-Key
// so a retried POST or PATCH replays the original outcome instead of
// running twice
type IdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]*cachedResponse
	ttl     time.Duration
	stopCh  chan struct{}
}

type cachedResponse struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long replays stay available (default 24h)
	Cleanup time.Duration // Expired entry sweep interval (default 1h)
}

// NewIdempotencyStore creates a store and starts its background sweep.
// Call Stop when done.
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries: make(map[string]*cachedResponse),
		ttl:     cfg.TTL,
		stopCh:  make(chan struct{}),
	}

	go store.sweepLoop(cfg.Cleanup)

	return store
}

// Stop shuts down the sweep goroutine
func (s *IdempotencyStore) Stop() {
	close(s.stopCh)
}

func (s *IdempotencyStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.dropExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *IdempotencyStore) dropExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if entry.expiresAt.Before(now) && !entry.inFlight {
			delete(s.entries, key)
		}
	}
}

// cacheKey fingerprints the caller, the supplied key, and the request
// itself. Reusing a key with a different body or path is a different
// request, not a replay.
func cacheKey(userID, idemKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte(idemKey))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// captureWriter tees the response into a buffer for caching
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func writeCached(w http.ResponseWriter, entry *cachedResponse) {
	for k, vals := range entry.headers {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency replays cached responses for POST and PATCH requests
// carrying an Idempotency-Key header. A concurrent duplicate blocks
// until the first request finishes, then replays its response.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := r.Header.Get("Idempotency-Key")
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				userID = r.RemoteAddr
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := cacheKey(userID, idemKey, r.Method, r.URL.Path, body)

			store.mu.Lock()
			entry, exists := store.entries[key]

			if exists {
				if entry.inFlight {
					store.mu.Unlock()
					<-entry.done

					store.mu.RLock()
					entry = store.entries[key]
					store.mu.RUnlock()

					if entry != nil && !entry.inFlight {
						writeCached(w, entry)
						return
					}
				} else if entry.expiresAt.After(time.Now()) {
					store.mu.Unlock()
					writeCached(w, entry)
					return
				}
			}

			// First time through; mark in flight so duplicates wait
			entry = &cachedResponse{
				inFlight: true,
				done:     make(chan struct{}),
			}
			store.entries[key] = entry
			store.mu.Unlock()

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			store.mu.Lock()
			entry.status = cw.status
			entry.headers = cw.Header().Clone()
			entry.body = cw.body.Bytes()
			entry.expiresAt = time.Now().Add(store.ttl)
			entry.inFlight = false
			close(entry.done)
			store.mu.Unlock()
		})
	}
}
