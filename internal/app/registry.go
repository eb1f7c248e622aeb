package app

import (
	"context"
	"fmt"
	"sync"

	"pharmacy-ledger/internal/gateway"
)

// Registry hands out one Service per identity, loading the session from
// its gateway namespace on first use. Sessions live for the process
// lifetime; cross-device edits are not coordinated (last writer to
// persist wins).
type Registry struct {
	mu       sync.Mutex
	factory  gateway.Factory
	sessions map[string]*Service
}

func NewRegistry(factory gateway.Factory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*Service),
	}
}

// ForUser returns the identity's session, creating and loading it on
// first call.
func (r *Registry) ForUser(ctx context.Context, userID string) (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.sessions[userID]; ok {
		return svc, nil
	}

	svc := NewService(r.factory(userID))
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("session for %q: %w", userID, err)
	}
	r.sessions[userID] = svc
	return svc, nil
}
