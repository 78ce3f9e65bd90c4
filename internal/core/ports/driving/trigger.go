package driving

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// TriggerFunc handles one trigger invocation. Implementations perform
// their remote calls sequentially and return; there is no in-process
// concurrency and no shared mutable state between invocations.
type TriggerFunc func(ctx context.Context, inv domain.TriggerInvocation) (*domain.TriggerResult, error)

// Dispatcher routes inbound invocations to named trigger handlers.
// Handlers are registered once at startup; dispatch is a map lookup,
// never runtime name resolution.
type Dispatcher interface {
	// Register binds a trigger identifier to its handler. Returns
	// domain.ErrAlreadyExists on a duplicate name.
	Register(name string, fn TriggerFunc) error

	// Dispatch invokes the named handler. Returns domain.ErrNotFound
	// for an unregistered name.
	Dispatch(ctx context.Context, name string, inv domain.TriggerInvocation) (*domain.TriggerResult, error)

	// Names lists the registered trigger identifiers, sorted.
	Names() []string
}
