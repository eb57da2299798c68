package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubTokenStore struct {
	calls int
	err   error
}

func (s *stubTokenStore) DeleteExpiredTokens(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestTokenCleanup_RunOnce(t *testing.T) {
	refresh := &stubTokenStore{}
	recovery := &stubTokenStore{}
	job := NewTokenCleanup(refresh, recovery, time.Hour)

	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if refresh.calls != 1 {
		t.Errorf("expected 1 refresh store call, got %d", refresh.calls)
	}
	if recovery.calls != 1 {
		t.Errorf("expected 1 recovery store call, got %d", recovery.calls)
	}
}

func TestTokenCleanup_RunOnce_RefreshErrorStopsRun(t *testing.T) {
	refresh := &stubTokenStore{err: errors.New("db down")}
	recovery := &stubTokenStore{}
	job := NewTokenCleanup(refresh, recovery, time.Hour)

	if err := job.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from failing store")
	}
	if recovery.calls != 0 {
		t.Errorf("expected recovery store untouched after refresh failure, got %d calls", recovery.calls)
	}
}

func TestTokenCleanup_StartStop(t *testing.T) {
	job := NewTokenCleanup(&stubTokenStore{}, &stubTokenStore{}, time.Hour)

	job.Start()
	if !job.IsRunning() {
		t.Error("expected job to be running after Start")
	}

	// Second Start is a no-op
	job.Start()

	job.Stop()
	if job.IsRunning() {
		t.Error("expected job to be stopped after Stop")
	}
}

func TestTokenCleanup_DefaultInterval(t *testing.T) {
	job := NewTokenCleanup(&stubTokenStore{}, &stubTokenStore{}, 0)
	if job.interval != time.Hour {
		t.Errorf("expected default interval of 1h, got %v", job.interval)
	}
}
