package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driving"
	"github.com/custodia-labs/pollbridge/internal/logger"
)

// Ensure TriggerDispatcher implements the interface.
var _ driving.Dispatcher = (*TriggerDispatcher)(nil)

// TriggerDispatcher is a registry of named trigger handlers. Handlers
// are registered once at startup; dispatch resolves by map lookup.
type TriggerDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]driving.TriggerFunc
}

// NewTriggerDispatcher creates an empty dispatcher.
func NewTriggerDispatcher() *TriggerDispatcher {
	return &TriggerDispatcher{
		handlers: make(map[string]driving.TriggerFunc),
	}
}

// Register binds a trigger identifier to its handler.
func (d *TriggerDispatcher) Register(name string, fn driving.TriggerFunc) error {
	if name == "" || fn == nil {
		return domain.ErrInvalidInput
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[name]; ok {
		return fmt.Errorf("trigger %q: %w", name, domain.ErrAlreadyExists)
	}
	d.handlers[name] = fn
	return nil
}

// Dispatch invokes the named handler, stamping the invocation with an
// id for correlation. State and learning mode pass through untouched.
func (d *TriggerDispatcher) Dispatch(
	ctx context.Context,
	name string,
	inv domain.TriggerInvocation,
) (*domain.TriggerResult, error) {
	d.mu.RLock()
	fn, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("trigger %q: %w", name, domain.ErrNotFound)
	}

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	logger.Debug("dispatch %s invocation=%s learning=%t", name, inv.ID, inv.LearningMode)
	return fn(ctx, inv)
}

// Names lists the registered trigger identifiers, sorted.
func (d *TriggerDispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
