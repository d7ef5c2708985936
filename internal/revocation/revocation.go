// Package revocation records token ids that must no longer be accepted.
package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Store interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PruneRevoked(ctx context.Context, before time.Time) (int64, error)
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time)}
}

func (m *Memory) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[jti]; !ok {
		m.entries[jti] = expiresAt
	}
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[jti]
	return ok, nil
}

func (m *Memory) PruneRevoked(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for jti, exp := range m.entries {
		if exp.Before(before) {
			delete(m.entries, jti)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Pruner drops entries whose tokens have expired on their own.
type Pruner struct {
	Store    Store
	Interval time.Duration
	Log      *slog.Logger
	Now      func() time.Time
}

func (p *Pruner) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	l := p.Log
	if l == nil {
		l = slog.Default()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Store.PruneRevoked(ctx, now())
			if err != nil {
				l.Error("revocation_prune_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("revocation_pruned", "removed", n)
			}
		}
	}
}
