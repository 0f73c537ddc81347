// Package xcb implements the xserver.Backend interface against a
// real X server using the XCB protocol bindings.
package xcb

import (
	"fmt"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/chazu/sapling/pkg/tree"
	"github.com/chazu/sapling/pkg/xserver"
)

// Backend talks to one X server connection.
type Backend struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
	log    *slog.Logger
	redraw map[uint32]bool // frames needing redecoration, drained by the renderer
}

var _ xserver.Backend = (*Backend)(nil)

// Connect opens a connection to the display named in $DISPLAY.
func Connect(log *slog.Logger) (*Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("xcb: connecting: %w", err)
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	return &Backend{
		conn:   conn,
		screen: screen,
		root:   screen.Root,
		log:    log,
		redraw: make(map[uint32]bool),
	}, nil
}

// Close shuts the connection down.
func (b *Backend) Close() {
	b.conn.Close()
}

// Root returns the root window of the connected screen.
func (b *Backend) Root() xproto.Window { return b.root }

// Conn exposes the raw connection for the event loop.
func (b *Backend) Conn() *xgb.Conn { return b.conn }

// Screen returns the setup information of the default screen.
func (b *Backend) Screen() *xproto.ScreenInfo { return b.screen }

func (b *Backend) CreateFrame(con *tree.Con) error {
	wid, err := xproto.NewWindowId(b.conn)
	if err != nil {
		return fmt.Errorf("xcb: allocating frame id: %w", err)
	}

	r := con.Rect
	mask := uint32(xproto.CwOverrideRedirect | xproto.CwEventMask)
	values := []uint32{
		1, // override redirect: the WM manages this window itself
		xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskEnterWindow |
			xproto.EventMaskButtonPress |
			xproto.EventMaskExposure,
	}
	err = xproto.CreateWindowChecked(b.conn, b.screen.RootDepth,
		wid, b.root,
		int16(r.X), int16(r.Y), uint16(max(r.Width, 1)), uint16(max(r.Height, 1)),
		0, xproto.WindowClassInputOutput, b.screen.RootVisual,
		mask, values).Check()
	if err != nil {
		return fmt.Errorf("xcb: creating frame for con %s: %w", con.ID, err)
	}

	con.Frame = uint32(wid)
	b.log.Debug("created frame", "con", con.ID, "frame", con.Frame)
	return nil
}

func (b *Backend) DestroyFrame(con *tree.Con) error {
	if con.Frame == 0 {
		return nil
	}
	err := xproto.DestroyWindowChecked(b.conn, xproto.Window(con.Frame)).Check()
	delete(b.redraw, con.Frame)
	con.Frame = 0
	if err != nil {
		return fmt.Errorf("xcb: destroying frame: %w", err)
	}
	return nil
}

func (b *Backend) ReparentClient(w *tree.Window, con *tree.Con) error {
	if con.Frame == 0 {
		return fmt.Errorf("xcb: reparent into con %s without a frame", con.ID)
	}
	err := xproto.ReparentWindowChecked(b.conn,
		xproto.Window(w.ID), xproto.Window(con.Frame), 0, 0).Check()
	if err != nil {
		// The client may already be gone; reparent errors during
		// teardown races are expected and logged only.
		b.log.Debug("reparent failed", "window", w.ID, "err", err)
		return nil
	}
	return nil
}

func (b *Backend) ReleaseClient(w *tree.Window) error {
	err := xproto.ReparentWindowChecked(b.conn,
		xproto.Window(w.ID), b.root, 0, 0).Check()
	if err != nil {
		b.log.Debug("release failed, client likely destroyed", "window", w.ID, "err", err)
	}
	return nil
}

func (b *Backend) WarpPointer(r tree.Rect) error {
	err := xproto.WarpPointerChecked(b.conn, 0, b.root,
		0, 0, 0, 0,
		int16(r.X)+int16(r.Width/2), int16(r.Y)+int16(r.Height/2)).Check()
	if err != nil {
		return fmt.Errorf("xcb: warping pointer: %w", err)
	}
	return nil
}

func (b *Backend) SetName(con *tree.Con, name string) error {
	if con.Frame == 0 {
		return nil
	}
	err := xproto.ChangePropertyChecked(b.conn, xproto.PropModeReplace,
		xproto.Window(con.Frame), xproto.AtomWmName, xproto.AtomString,
		8, uint32(len(name)), []byte(name)).Check()
	if err != nil {
		return fmt.Errorf("xcb: setting frame name: %w", err)
	}
	return nil
}

func (b *Backend) Redecorate(con *tree.Con) error {
	if con.Frame != 0 {
		b.redraw[con.Frame] = true
	}
	return nil
}

// DrainRedecorations returns and clears the set of frames marked for
// redecoration since the last call.
func (b *Backend) DrainRedecorations() []uint32 {
	frames := make([]uint32, 0, len(b.redraw))
	for f := range b.redraw {
		frames = append(frames, f)
	}
	b.redraw = make(map[uint32]bool)
	return frames
}
