// Package event defines the change notifications emitted by the
// container tree and workspace logic. Consumers (the IPC layer, the
// bar) subscribe through a Sink; the core never blocks on emission.
package event

// Change identifies what happened to a workspace. The literal values
// are part of the IPC contract.
type Change string

const (
	ChangeInit   Change = "init"   // workspace was created
	ChangeEmpty  Change = "empty"  // empty workspace was pruned
	ChangeFocus  Change = "focus"  // a workspace switch completed
	ChangeUrgent Change = "urgent" // aggregate urgency flag flipped
)

// WorkspaceEvent is a single workspace-level transition. Events carry
// no ordering guarantee beyond emission order.
type WorkspaceEvent struct {
	Change Change `json:"change"`
	Name   string `json:"name,omitempty"`
}

// Sink receives workspace events. Implementations must not call back
// into the tree; the core holds no locks but is non-reentrant.
type Sink interface {
	WorkspaceChanged(ev WorkspaceEvent)
}

// Discard is a Sink that drops every event.
type Discard struct{}

func (Discard) WorkspaceChanged(WorkspaceEvent) {}

// Bus fans events out to zero or more sinks in subscription order.
// It implements Sink itself so it can be passed wherever one sink is
// expected.
type Bus struct {
	sinks []Sink
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds a sink. Not safe to call concurrently with emission;
// the core is single-threaded by design.
func (b *Bus) Subscribe(s Sink) {
	b.sinks = append(b.sinks, s)
}

// WorkspaceChanged delivers ev to every subscribed sink.
func (b *Bus) WorkspaceChanged(ev WorkspaceEvent) {
	for _, s := range b.sinks {
		s.WorkspaceChanged(ev)
	}
}

// Recorder is a Sink that remembers every event it sees, for tests
// and debugging.
type Recorder struct {
	Events []WorkspaceEvent
}

func (r *Recorder) WorkspaceChanged(ev WorkspaceEvent) {
	r.Events = append(r.Events, ev)
}

// Reset clears the recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
