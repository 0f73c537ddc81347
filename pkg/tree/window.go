package tree

// DockKind reports whether a client asked to be managed as a dock.
type DockKind int

const (
	DockNone DockKind = iota
	DockTop
	DockBottom
)

// Window holds what the core needs to know about a client window.
// The transport layer owns the protocol-level state; this is only the
// bookkeeping the tree carries around.
type Window struct {
	// ID is the client window on the X server.
	ID uint32

	// Leader is the logical parent for tool windows and similar
	// floating children, zero if unset.
	Leader uint32

	Class    string
	Instance string
	Name     string

	Dock DockKind
}
