package domain

// PollMode selects the change-detection behaviour of one invocation.
type PollMode int

const (
	// ModeIncremental diffs the current fetch against the previous
	// snapshot. With no previous snapshot it degrades to ModeBootstrap.
	ModeIncremental PollMode = iota

	// ModeBootstrap establishes a baseline without firing events. The
	// first real activation has nothing to diff against and must not
	// flood the host with "new" events for pre-existing data.
	ModeBootstrap

	// ModeLearning samples one representative entity so a human can
	// preview the trigger's output shape. It never reads or writes
	// persisted state.
	ModeLearning
)

// TriggerInvocation is what the host hands a trigger handler.
type TriggerInvocation struct {
	// ID identifies this invocation for logging and correlation.
	ID string

	// Params carries the trigger's configuration (base, table, watch
	// column and so on), as provided by the host.
	Params map[string]string

	// State is the previous invocation's snapshot, nil on first run.
	State Snapshot

	// LearningMode requests a sample instead of a real poll.
	LearningMode bool
}

// Mode derives the poll mode from the invocation.
func (inv TriggerInvocation) Mode() PollMode {
	if inv.LearningMode {
		return ModeLearning
	}
	if inv.State == nil {
		return ModeBootstrap
	}
	return ModeIncremental
}

// TriggerResult is what a trigger handler returns to the host.
type TriggerResult struct {
	// Events are the entities to emit downstream, in fetch order.
	Events []Entity

	// State is the snapshot the host must persist for the next
	// invocation. Nil after a learning invocation.
	State Snapshot
}
