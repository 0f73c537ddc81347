// Package xserver defines the abstract boundary to the windowing
// transport. Implementations (xcb, the in-memory recorder) perform
// the actual protocol work behind this interface, so the tree core
// never talks wire format and tests run without a display.
package xserver

import "github.com/chazu/sapling/pkg/tree"

// Backend is the set of requests the core issues to the transport
// layer. All methods are synchronous from the core's point of view;
// implementations may batch.
type Backend interface {
	// CreateFrame allocates the frame window wrapping con's client
	// and records its id in con.Frame.
	CreateFrame(con *tree.Con) error

	// DestroyFrame releases con's frame window.
	DestroyFrame(con *tree.Con) error

	// ReparentClient moves the client window w into con's frame.
	// Used when windows are managed, unmanaged, or migrated by
	// sticky-group reassignment.
	ReparentClient(w *tree.Window, con *tree.Con) error

	// ReleaseClient hands the client window back to the root window,
	// used when its container is closed without killing the client.
	ReleaseClient(w *tree.Window) error

	// WarpPointer moves the pointer to the middle of r, used when a
	// focus change lands on a different output.
	WarpPointer(r tree.Rect) error

	// SetName labels con's frame for debugging tools.
	SetName(con *tree.Con, name string) error

	// Redecorate marks con as needing its decoration redrawn.
	Redecorate(con *tree.Con) error
}
