package workspace

import "github.com/chazu/sapling/pkg/tree"

// reassignSticky walks the workspace about to be shown and, for every
// placeholder container carrying a sticky group, steals the client
// window from a donor container of the same group elsewhere on the
// output. The donor keeps its geometry but goes unmapped; the
// placeholder becomes the mapped holder of the window.
func (m *Manager) reassignSticky(con *tree.Con) {
	for _, child := range con.Children() {
		if child.StickyGroup == "" {
			m.reassignSticky(child)
			continue
		}

		src := findSticky(child.Output(), child.StickyGroup, child)
		if src == nil {
			m.reassignSticky(child)
			continue
		}

		child.Window = src.Window
		child.Mapped = true
		src.Window = nil
		src.Mapped = false

		if err := m.x.ReparentClient(child.Window, child); err != nil {
			m.log.Warn("reparenting sticky window", "group", child.StickyGroup, "err", err)
		}
		m.log.Debug("reassigned sticky window", "group", child.StickyGroup)
	}
	for _, child := range con.FloatingChildren() {
		m.reassignSticky(child)
	}
}

// findSticky returns the first container below con, in structural
// then floating order, that carries the sticky group and still holds
// a window. exclude is the placeholder being filled.
func findSticky(con *tree.Con, group string, exclude *tree.Con) *tree.Con {
	for _, child := range con.Children() {
		if child != exclude && child.StickyGroup == group && child.Window != nil {
			return child
		}
		if found := findSticky(child, group, exclude); found != nil {
			return found
		}
	}
	for _, child := range con.FloatingChildren() {
		if child != exclude && child.StickyGroup == group && child.Window != nil {
			return child
		}
		if found := findSticky(child, group, exclude); found != nil {
			return found
		}
	}
	return nil
}
