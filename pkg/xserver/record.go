package xserver

import (
	"fmt"

	"github.com/chazu/sapling/pkg/tree"
)

// Call is one recorded backend request.
type Call struct {
	Op     string
	Con    *tree.Con
	Window *tree.Window
	Rect   tree.Rect
	Name   string
}

// Recorder is an in-memory Backend that remembers every request.
// Tests assert against the recorded calls; nothing touches a display.
type Recorder struct {
	Calls []Call

	nextFrame uint32
}

var _ Backend = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{nextFrame: 1}
}

func (r *Recorder) CreateFrame(con *tree.Con) error {
	con.Frame = r.nextFrame
	r.nextFrame++
	r.Calls = append(r.Calls, Call{Op: "create-frame", Con: con})
	return nil
}

func (r *Recorder) DestroyFrame(con *tree.Con) error {
	r.Calls = append(r.Calls, Call{Op: "destroy-frame", Con: con})
	con.Frame = 0
	return nil
}

func (r *Recorder) ReparentClient(w *tree.Window, con *tree.Con) error {
	r.Calls = append(r.Calls, Call{Op: "reparent", Window: w, Con: con})
	return nil
}

func (r *Recorder) ReleaseClient(w *tree.Window) error {
	r.Calls = append(r.Calls, Call{Op: "release", Window: w})
	return nil
}

func (r *Recorder) WarpPointer(rect tree.Rect) error {
	r.Calls = append(r.Calls, Call{Op: "warp", Rect: rect})
	return nil
}

func (r *Recorder) SetName(con *tree.Con, name string) error {
	r.Calls = append(r.Calls, Call{Op: "set-name", Con: con, Name: name})
	return nil
}

func (r *Recorder) Redecorate(con *tree.Con) error {
	r.Calls = append(r.Calls, Call{Op: "redecorate", Con: con})
	return nil
}

// Ops returns just the operation names, in order, for compact test
// assertions.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// String renders the recorded calls one per line.
func (r *Recorder) String() string {
	out := ""
	for _, c := range r.Calls {
		out += fmt.Sprintf("%s\n", c.Op)
	}
	return out
}
