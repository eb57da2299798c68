package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TokenStore removes tokens past their expiry
type TokenStore interface {
	DeleteExpiredTokens(ctx context.Context) error
}

// TokenCleanup periodically removes expired refresh tokens and
// recovery tokens. Consumed recovery tokens are kept until expiry so
// reuse attempts can be answered distinctly from unknown tokens.
type TokenCleanup struct {
	refreshTokens  TokenStore
	recoveryTokens TokenStore
	interval       time.Duration
	stopCh         chan struct{}
	wg             sync.WaitGroup
	running        bool
	mu             sync.Mutex
}

// NewTokenCleanup creates a new token cleanup job
func NewTokenCleanup(refreshTokens, recoveryTokens TokenStore, interval time.Duration) *TokenCleanup {
	if interval == 0 {
		interval = 1 * time.Hour
	}
	return &TokenCleanup{
		refreshTokens:  refreshTokens,
		recoveryTokens: recoveryTokens,
		interval:       interval,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the cleanup job
func (j *TokenCleanup) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	slog.Info("token cleanup started", slog.Duration("interval", j.interval))
}

// Stop gracefully stops the cleanup job
func (j *TokenCleanup) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	slog.Info("token cleanup stopped")
}

// run is the main loop
func (j *TokenCleanup) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopCh:
			return
		}
	}
}

func (j *TokenCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := j.RunOnce(ctx); err != nil {
		slog.Error("token cleanup failed", slog.String("error", err.Error()))
	}
}

// RunOnce runs the cleanup once, for manual trigger or testing
func (j *TokenCleanup) RunOnce(ctx context.Context) error {
	if err := j.refreshTokens.DeleteExpiredTokens(ctx); err != nil {
		return err
	}
	return j.recoveryTokens.DeleteExpiredTokens(ctx)
}

// IsRunning returns whether the job is running
func (j *TokenCleanup) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
