package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/jezek/xgb/xproto"

	"github.com/chazu/sapling/pkg/config"
	"github.com/chazu/sapling/pkg/event"
	"github.com/chazu/sapling/pkg/output"
	"github.com/chazu/sapling/pkg/tree"
	"github.com/chazu/sapling/pkg/workspace"
	"github.com/chazu/sapling/pkg/xserver"
	"github.com/chazu/sapling/pkg/xserver/xcb"
)

// App ties the pieces of a session together: the container tree, the
// workspace manager, the output registry and the transport backend.
// All window-management commands go through its methods.
type App struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger

	events  *event.Bus
	x       xserver.Backend
	tree    *tree.Tree
	mgr     *workspace.Manager
	outputs *output.Registry

	// windows maps client window ids to their containers.
	windows map[uint32]*tree.Con
}

// NewApp builds a session around the given backend. Tests pass an
// xserver.Recorder; the real entry point passes the xcb backend.
func NewApp(cfg *config.Config, configPath string, x xserver.Backend, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	events := event.NewBus()
	t := tree.New(events)
	mgr := workspace.NewManager(t, cfg, x, log)
	outputs := output.NewRegistry(t, mgr, cfg, x, log)

	a := &App{
		cfg:        cfg,
		configPath: configPath,
		log:        log,
		events:     events,
		x:          x,
		tree:       t,
		mgr:        mgr,
		outputs:    outputs,
		windows:    make(map[uint32]*tree.Con),
	}
	t.ReleaseWindow = func(w *tree.Window) {
		delete(a.windows, w.ID)
		if err := x.ReleaseClient(w); err != nil {
			log.Debug("releasing client", "window", w.ID, "err", err)
		}
	}
	return a
}

// Tree exposes the container tree for inspection and validation.
func (a *App) Tree() *tree.Tree { return a.tree }

// Workspaces exposes the workspace manager.
func (a *App) Workspaces() *workspace.Manager { return a.mgr }

// Outputs exposes the output registry.
func (a *App) Outputs() *output.Registry { return a.outputs }

// Events exposes the event bus workspace events are published on.
func (a *App) Events() *event.Bus { return a.events }

// Manage starts managing a client window: docks land on their
// output's dock area, everything else attaches next to the focused
// container on the focused workspace.
func (a *App) Manage(w *tree.Window) (*tree.Con, error) {
	if _, ok := a.windows[w.ID]; ok {
		return nil, fmt.Errorf("window %d is already managed", w.ID)
	}

	var target *tree.Con
	if w.Dock != tree.DockNone {
		target = a.dockareaFor(w.Dock)
	} else {
		target = a.tree.Focused
		if target.Workspace() == nil {
			return nil, fmt.Errorf("no workspace focused")
		}
		// New windows open beside a focused window, not inside it.
		if target.Kind == tree.KindCon && target.Window != nil {
			target = target.Parent()
		}
	}

	con := tree.NewCon(tree.KindCon, w.Name)
	con.Window = w
	con.Attach(target, false)
	con.Parent().FixPercent()
	a.windows[w.ID] = con

	if err := a.x.CreateFrame(con); err != nil {
		return nil, fmt.Errorf("framing window %d: %w", w.ID, err)
	}
	if err := a.x.ReparentClient(w, con); err != nil {
		return nil, fmt.Errorf("reparenting window %d: %w", w.ID, err)
	}
	con.Mapped = true

	if w.Dock == tree.DockNone {
		a.tree.Focus(con)
	}
	a.log.Info("managing window", "id", w.ID, "class", w.Class, "name", w.Name)
	return con, nil
}

// Unmanage stops managing the client window with the given id,
// closing its container. Unknown ids are ignored; clients disappear
// on their own schedule.
func (a *App) Unmanage(id uint32) {
	con, ok := a.windows[id]
	if !ok {
		return
	}
	a.log.Info("unmanaging window", "id", id)
	a.tree.Close(con)
	a.tree.Flatten(a.tree.Root)
}

// SetUrgent flags or clears urgency on the container of a client
// window and folds it into its workspace.
func (a *App) SetUrgent(id uint32, urgent bool) {
	con, ok := a.windows[id]
	if !ok {
		return
	}
	con.Urgent = urgent
	a.mgr.UpdateUrgentFlag(con.Workspace())
}

// ShowWorkspace switches to the named workspace, creating it on
// demand.
func (a *App) ShowWorkspace(name string) { a.mgr.ShowByName(name) }

// NextWorkspace switches to the workspace after the current one.
func (a *App) NextWorkspace() { a.mgr.Show(a.mgr.Next()) }

// PrevWorkspace switches to the workspace before the current one.
func (a *App) PrevWorkspace() { a.mgr.Show(a.mgr.Prev()) }

// NextWorkspaceOnOutput switches forward without leaving the output.
func (a *App) NextWorkspaceOnOutput() { a.mgr.Show(a.mgr.NextOnOutput()) }

// PrevWorkspaceOnOutput switches backward without leaving the output.
func (a *App) PrevWorkspaceOnOutput() { a.mgr.Show(a.mgr.PrevOnOutput()) }

// BackAndForth toggles between the two most recent workspaces.
func (a *App) BackAndForth() { a.mgr.BackAndForth() }

// MoveFocusedToWorkspace moves the focused container to the named
// workspace, creating it on demand.
func (a *App) MoveFocusedToWorkspace(name string) {
	ws, _ := a.mgr.Get(name)
	a.mgr.MoveToWorkspace(a.tree.Focused, ws)
	a.tree.Flatten(a.tree.Root)
}

// SplitFocused wraps the focused container in a new split of the
// given orientation.
func (a *App) SplitFocused(o tree.Orientation) {
	a.tree.Split(a.tree.Focused, o)
}

// FocusParent moves focus one level up.
func (a *App) FocusParent() { a.tree.FocusParent() }

// FocusChild moves focus one level down along the focus order.
func (a *App) FocusChild() { a.tree.FocusChild() }

// ReloadConfig re-reads the configuration file. A broken file keeps
// the running configuration.
func (a *App) ReloadConfig() error {
	if a.configPath == "" {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	*a.cfg = *cfg
	a.log.Info("configuration reloaded", "path", a.configPath)
	return nil
}

// dockareaFor finds the dock area of the focused output matching the
// dock kind: top docks on the first dock area, bottom docks on the
// last.
func (a *App) dockareaFor(kind tree.DockKind) *tree.Con {
	out := a.tree.Focused.Output()
	var areas []*tree.Con
	for _, c := range out.Children() {
		if c.Kind == tree.KindDockarea {
			areas = append(areas, c)
		}
	}
	if len(areas) == 0 {
		return a.tree.Focused
	}
	if kind == tree.DockBottom {
		return areas[len(areas)-1]
	}
	return areas[0]
}

// Run connects the session to the display and processes X events and
// configuration changes until ctx is done. Only the real xcb backend
// can run; tests drive App methods directly.
func (a *App) Run(ctx context.Context) error {
	backend, ok := a.x.(*xcb.Backend)
	if !ok {
		return fmt.Errorf("cannot run without a display connection")
	}

	screen := backend.Screen()
	a.outputs.Add("default", tree.Rect{
		Width:  uint32(screen.WidthInPixels),
		Height: uint32(screen.HeightInPixels),
	})
	first := a.outputs.Outputs()[0]
	a.tree.Focus(first.FullscreenBelow(tree.FullscreenOutput).DescendFocused())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching config: %w", err)
	}
	defer watcher.Close()
	if a.configPath != "" {
		if err := watcher.Add(a.configPath); err != nil {
			a.log.Warn("cannot watch config file", "path", a.configPath, "err", err)
		}
	}

	xevents := make(chan interface{})
	go func() {
		defer close(xevents)
		for {
			ev, err := backend.Conn().WaitForEvent()
			if ev == nil && err == nil {
				return
			}
			if err != nil {
				a.log.Debug("x event error", "err", err)
				continue
			}
			select {
			case xevents <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case we, ok := <-watcher.Events:
			if !ok {
				continue
			}
			if we.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := a.ReloadConfig(); err != nil {
					a.log.Error("config reload failed", "err", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if ok && err != nil {
				a.log.Warn("config watcher", "err", err)
			}
		case ev, ok := <-xevents:
			if !ok {
				return fmt.Errorf("display connection closed")
			}
			a.handleXEvent(ev)
		}
	}
}

// handleXEvent dispatches the handful of protocol events the core
// reacts to.
func (a *App) handleXEvent(ev interface{}) {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		w := &tree.Window{ID: uint32(e.Window)}
		if _, err := a.Manage(w); err != nil {
			a.log.Warn("map request", "window", w.ID, "err", err)
		}
	case xproto.DestroyNotifyEvent:
		a.Unmanage(uint32(e.Window))
	case xproto.UnmapNotifyEvent:
		a.Unmanage(uint32(e.Window))
	default:
		a.log.Debug("ignoring x event", "event", fmt.Sprintf("%T", ev))
	}
}
