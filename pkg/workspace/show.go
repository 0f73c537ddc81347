package workspace

import (
	"github.com/chazu/sapling/pkg/event"
	"github.com/chazu/sapling/pkg/tree"
)

// Show makes ws the visible workspace on its output and moves focus
// into it. Showing the already-focused workspace is a no-op and emits
// nothing. A completed switch records the previous workspace for
// back-and-forth, reassigns sticky windows, prunes the old workspace
// when it ended up empty and invisible, warps the pointer when focus
// crossed outputs, and emits a focus event.
func (m *Manager) Show(ws *tree.Con) {
	if ws == nil {
		return
	}
	if ws.IsInternal() {
		m.log.Debug("refusing to show internal workspace", "name", ws.Name)
		return
	}

	// Demote whatever is visible on the target output, remembering it
	// so it can be pruned below. Other outputs keep their visible
	// workspace.
	var old *tree.Con
	for _, sibling := range ws.Parent().Children() {
		if sibling.FullscreenMode == tree.FullscreenOutput {
			old = sibling
		}
		sibling.FullscreenMode = tree.FullscreenNone
	}
	ws.FullscreenMode = tree.FullscreenOutput

	current := m.tree.Focused.Workspace()
	if ws == current {
		m.log.Debug("not switching, already there", "name", ws.Name)
		return
	}

	if current != nil {
		m.previous = current.Name
	}

	m.reassignSticky(ws)

	m.log.Info("showing workspace", "name", ws.Name)
	next := ws.DescendFocused()
	oldOutput := outputOf(m.tree.Focused)

	m.tree.Focus(next)

	// The workspace we switched away from dies when nothing is left
	// on it and no output still shows it.
	if old != nil && old.NumChildren() == 0 &&
		len(old.FloatingChildren()) == 0 && !m.tree.IsVisible(old) {
		m.log.Debug("closing old workspace, it is empty", "name", old.Name)
		name := old.Name
		m.tree.Close(old)
		m.tree.Events().WorkspaceChanged(event.WorkspaceEvent{Change: event.ChangeEmpty, Name: name})
	}

	if newOutput := outputOf(m.tree.Focused); oldOutput != nil && newOutput != oldOutput {
		if err := m.x.WarpPointer(ws.Rect); err != nil {
			m.log.Warn("warping pointer", "err", err)
		}
	}

	m.tree.Events().WorkspaceChanged(event.WorkspaceEvent{Change: event.ChangeFocus, Name: ws.Name})
}

// ShowByName switches to the named workspace, creating it first if it
// does not exist yet.
func (m *Manager) ShowByName(name string) {
	ws, _ := m.Get(name)
	m.Show(ws)
}

// BackAndForth switches to the previously focused workspace. Does
// nothing before the first completed switch.
func (m *Manager) BackAndForth() {
	if m.previous == "" {
		m.log.Info("no previous workspace, not switching")
		return
	}
	m.ShowByName(m.previous)
}

// outputOf walks up to the output holding c, or nil when c sits above
// the output level.
func outputOf(c *tree.Con) *tree.Con {
	for ; c != nil; c = c.Parent() {
		if c.Kind == tree.KindOutput {
			return c
		}
	}
	return nil
}
