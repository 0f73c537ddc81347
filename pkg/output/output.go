// Package output manages the per-output scaffolding of the container
// tree: one output container per display, each wrapping a top dock
// area, the workspace content container and a bottom dock area.
// Outputs appear and disappear at runtime; their workspaces survive
// by migrating to a remaining output.
package output

import (
	"log/slog"

	"github.com/chazu/sapling/pkg/config"
	"github.com/chazu/sapling/pkg/tree"
	"github.com/chazu/sapling/pkg/workspace"
	"github.com/chazu/sapling/pkg/xserver"
)

// Registry tracks the real outputs attached to the tree root, in
// registration order.
type Registry struct {
	tree *tree.Tree
	mgr  *workspace.Manager
	cfg  *config.Config
	x    xserver.Backend
	log  *slog.Logger
}

// NewRegistry wires a registry over the same tree and manager the
// rest of the session uses.
func NewRegistry(t *tree.Tree, mgr *workspace.Manager, cfg *config.Config, x xserver.Backend, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{tree: t, mgr: mgr, cfg: cfg, x: x, log: log}
}

// Outputs returns the real outputs in registration order.
func (r *Registry) Outputs() []*tree.Con {
	var out []*tree.Con
	for _, c := range r.tree.Root.Children() {
		if c.Kind == tree.KindOutput && !c.IsInternal() {
			out = append(out, c)
		}
	}
	return out
}

// ByName returns the output with the given name, or nil. Internal
// outputs are found too so the scratch output stays addressable.
func (r *Registry) ByName(name string) *tree.Con {
	for _, c := range r.tree.Root.Children() {
		if c.Kind == tree.KindOutput && c.Name == name {
			return c
		}
	}
	return nil
}

// ByPosition returns the output whose rectangle contains the point
// (x, y), or nil when the point falls outside every output.
func (r *Registry) ByPosition(x, y int) *tree.Con {
	for _, c := range r.Outputs() {
		rc := c.Rect
		if x >= int(rc.X) && x < int(rc.X)+int(rc.Width) &&
			y >= int(rc.Y) && y < int(rc.Y)+int(rc.Height) {
			return c
		}
	}
	return nil
}

// Add registers a new output: builds its dock and content
// scaffolding, pulls in workspaces assigned to it and makes sure at
// least one workspace exists and is visible on it. Adding an already
// known name just updates the rectangle.
func (r *Registry) Add(name string, rect tree.Rect) *tree.Con {
	if existing := r.ByName(name); existing != nil {
		existing.Rect = rect
		r.log.Debug("output rect updated", "name", name)
		return existing
	}

	r.log.Info("adding output", "name", name)

	output := tree.NewCon(tree.KindOutput, name)
	output.Layout = tree.LayoutOutput
	output.Rect = rect
	output.Attach(r.tree.Root, false)

	topdock := tree.NewCon(tree.KindDockarea, "topdock")
	topdock.Layout = tree.LayoutDockarea
	topdock.Attach(output, false)

	content := tree.NewCon(tree.KindContent, "content")
	content.Layout = tree.LayoutSplitH
	content.Attach(output, false)

	bottomdock := tree.NewCon(tree.KindDockarea, "bottomdock")
	bottomdock.Layout = tree.LayoutDockarea
	bottomdock.Attach(output, false)

	if err := r.x.SetName(output, "[sapling con] output "+name); err != nil {
		r.log.Warn("naming output frame", "output", name, "err", err)
	}

	r.claimAssigned(output)

	if len(content.Children()) == 0 {
		r.mgr.EnsureOnOutput(output)
	}
	if output.FullscreenBelow(tree.FullscreenOutput) == nil {
		content.Children()[0].FullscreenMode = tree.FullscreenOutput
	}
	return output
}

// Remove unregisters an output. Its workspaces migrate to the first
// remaining real output; focus moves off the dying output first. The
// last real output cannot be removed.
func (r *Registry) Remove(name string) bool {
	output := r.ByName(name)
	if output == nil || output.IsInternal() {
		return false
	}

	var target *tree.Con
	for _, other := range r.Outputs() {
		if other != output {
			target = other
			break
		}
	}
	if target == nil {
		r.log.Error("refusing to remove the last output", "name", name)
		return false
	}

	r.log.Info("removing output", "name", name, "target", target.Name)

	focusWasHere := outputOf(r.tree.Focused) == output

	content := output.Content()
	targetContent := target.Content()
	for _, ws := range append([]*tree.Con(nil), content.Children()...) {
		ws.FullscreenMode = tree.FullscreenNone
		ws.Detach()
		ws.Attach(targetContent, false)
		r.log.Debug("migrated workspace", "workspace", ws.Name, "output", target.Name)
	}

	if focusWasHere {
		visible := target.FullscreenBelow(tree.FullscreenOutput)
		if visible == nil {
			visible = targetContent.Children()[0]
			visible.FullscreenMode = tree.FullscreenOutput
		}
		r.tree.Focus(visible.DescendFocused())
	}

	output.Detach()
	return true
}

// NextInDirection returns the neighboring output whose center lies in
// the given direction from the focused output, or nil. Positive dx
// means right, positive dy means down; only one axis may be set.
func (r *Registry) NextInDirection(from *tree.Con, dx, dy int) *tree.Con {
	var best *tree.Con
	fx, fy := center(from.Rect)
	for _, other := range r.Outputs() {
		if other == from {
			continue
		}
		ox, oy := center(other.Rect)
		switch {
		case dx > 0 && ox <= fx, dx < 0 && ox >= fx,
			dy > 0 && oy <= fy, dy < 0 && oy >= fy:
			continue
		}
		if best == nil || closer(fx, fy, other.Rect, best.Rect) {
			best = other
		}
	}
	return best
}

// claimAssigned moves workspaces pinned to this output by the
// assignment table over from wherever they were created.
func (r *Registry) claimAssigned(output *tree.Con) {
	content := output.Content()
	for _, other := range r.Outputs() {
		if other == output {
			continue
		}
		otherContent := other.Content()
		for _, ws := range append([]*tree.Con(nil), otherContent.Children()...) {
			if r.cfg.OutputFor(ws.Name) != output.Name {
				continue
			}
			r.log.Info("claiming assigned workspace", "workspace", ws.Name, "output", output.Name)
			wasVisible := ws.FullscreenMode == tree.FullscreenOutput
			ws.FullscreenMode = tree.FullscreenNone
			ws.Detach()
			ws.Attach(content, false)
			if wasVisible {
				// The donor output needs a visible workspace again.
				if len(otherContent.Children()) == 0 {
					r.mgr.EnsureOnOutput(other)
				} else {
					otherContent.Children()[0].FullscreenMode = tree.FullscreenOutput
				}
			}
		}
	}
}

func outputOf(c *tree.Con) *tree.Con {
	for ; c != nil; c = c.Parent() {
		if c.Kind == tree.KindOutput {
			return c
		}
	}
	return nil
}

func center(r tree.Rect) (int64, int64) {
	return int64(r.X) + int64(r.Width)/2, int64(r.Y) + int64(r.Height)/2
}

func closer(fx, fy int64, a, b tree.Rect) bool {
	ax, ay := center(a)
	bx, by := center(b)
	da := (ax-fx)*(ax-fx) + (ay-fy)*(ay-fy)
	db := (bx-fx)*(bx-fx) + (by-fy)*(by-fy)
	return da < db
}
