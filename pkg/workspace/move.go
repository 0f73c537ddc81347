package workspace

import "github.com/chazu/sapling/pkg/tree"

// MoveToWorkspace moves con onto the target workspace, attaching it
// next to the target's focused container. When the move crosses
// outputs and the target is visible there, the target is shown first
// so focus follows the moved container; otherwise focus stays on the
// source workspace.
func (m *Manager) MoveToWorkspace(con, target *tree.Con) {
	if con.Kind == tree.KindWorkspace {
		m.log.Error("cannot move a workspace")
		return
	}
	if target.Kind != tree.KindWorkspace {
		m.log.Error("move target is not a workspace", "kind", target.Kind.String())
		return
	}
	if con.Workspace() == target {
		return
	}

	// A floating window moves together with its wrapper.
	if con.IsFloating() {
		con = con.Parent()
	}

	sourceOutput := con.Output()
	targetOutput := target.Output()

	// Where focus should land on the source workspace once con is
	// gone, resolved while con is still attached.
	focusNext := m.tree.NextFocused(con)

	// Attach next to whatever is focused on the target: beside a
	// focused leaf, directly onto an empty workspace, and never
	// inside the floating layer.
	next := target.DescendFocused()
	orig := next
	if next.Kind != tree.KindWorkspace {
		next = next.Parent()
	}
	if fc := orig.InsideFloating(); fc != nil {
		next = fc.Parent()
	}
	if con.Kind == tree.KindFloating {
		next = next.Workspace()
	}

	crossOutput := sourceOutput != targetOutput
	if crossOutput && m.tree.IsVisible(target) {
		m.Show(target)
		if err := m.x.WarpPointer(con.Rect); err != nil {
			m.log.Warn("warping pointer", "err", err)
		}
	}

	parent := con.Parent()
	con.Detach()
	con.Attach(next, false)
	parent.FixPercent()
	con.Percent = 0
	con.Parent().FixPercent()

	m.log.Info("moved container to workspace",
		"con", con.Name, "workspace", target.Name)

	if crossOutput && m.tree.IsVisible(target) {
		m.tree.Focus(con.DescendFocused())
	} else if focusNext != nil {
		if ws := focusNext.Workspace(); ws != nil {
			m.Show(ws)
		}
		m.tree.Focus(focusNext.DescendFocused())
	}

	m.tree.CloseIfEmpty(parent)
}
