package workspace

import "github.com/chazu/sapling/pkg/tree"

// Navigation walks workspaces in num order with named workspaces
// sorting after all numbered ones. Each direction is a cascade: stay
// in the current class (numbered or named) first, fall through to the
// opposite class, and finally wrap around to the global extreme.
// Because workspaces live in per-output lists there is no single
// ordered list to walk; the numbered stages scan every output and
// keep the best match.

// Next returns the workspace after the currently focused one, or nil
// when focus is not on a workspace.
func (m *Manager) Next() *tree.Con {
	current := m.tree.Focused.Workspace()
	if current == nil {
		return nil
	}
	var next *tree.Con

	if current.Num == tree.UnnumberedWorkspace {
		// Named: the next structural sibling is by construction named
		// too.
		if next = siblingAfter(current); next != nil {
			return next
		}
		foundCurrent := false
		for _, output := range m.outputs() {
			for _, child := range workspacesOf(output) {
				if child == current {
					foundCurrent = true
				} else if child.Num == tree.UnnumberedWorkspace && foundCurrent {
					return child
				}
			}
		}
	} else {
		// Numbered: smallest number strictly above the current one,
		// across all outputs.
		for _, output := range m.outputs() {
			for _, child := range workspacesOf(output) {
				if child.Num == tree.UnnumberedWorkspace {
					break
				}
				if current.Num < child.Num && (next == nil || child.Num < next.Num) {
					next = child
				}
			}
		}
	}

	// Cross over into the named workspaces.
	if next == nil {
		foundCurrent := false
		for _, output := range m.outputs() {
			for _, child := range workspacesOf(output) {
				if child == current {
					foundCurrent = true
				} else if child.Num == tree.UnnumberedWorkspace &&
					(current.Num != tree.UnnumberedWorkspace || foundCurrent) {
					return child
				}
			}
		}
	}

	// Wrap around to the first workspace.
	if next == nil {
		for _, output := range m.outputs() {
			for _, child := range workspacesOf(output) {
				if next == nil || (child.Num != tree.UnnumberedWorkspace && child.Num < next.Num) {
					next = child
				}
			}
		}
	}
	return next
}

// Prev returns the workspace before the currently focused one, or nil
// when focus is not on a workspace.
func (m *Manager) Prev() *tree.Con {
	current := m.tree.Focused.Workspace()
	if current == nil {
		return nil
	}
	var prev *tree.Con

	if current.Num == tree.UnnumberedWorkspace {
		if prev = siblingBefore(current); prev != nil && prev.Num != tree.UnnumberedWorkspace {
			prev = nil
		}
		if prev == nil {
			foundCurrent := false
			for _, output := range reversed(m.outputs()) {
				for _, child := range reversed(workspacesOf(output)) {
					if child == current {
						foundCurrent = true
					} else if child.Num == tree.UnnumberedWorkspace && foundCurrent {
						return child
					}
				}
			}
		}
	} else {
		// Largest number strictly below the current one.
		for _, output := range reversed(m.outputs()) {
			for _, child := range reversed(workspacesOf(output)) {
				if child.Num == tree.UnnumberedWorkspace {
					continue
				}
				if current.Num > child.Num && (prev == nil || child.Num > prev.Num) {
					prev = child
				}
			}
		}
	}

	if prev == nil {
		foundCurrent := false
		for _, output := range reversed(m.outputs()) {
			for _, child := range reversed(workspacesOf(output)) {
				if child == current {
					foundCurrent = true
				} else if child.Num == tree.UnnumberedWorkspace &&
					(current.Num != tree.UnnumberedWorkspace || foundCurrent) {
					return child
				}
			}
		}
	}

	// Wrap around to the last workspace, numbered ones winning over
	// named ones.
	if prev == nil {
		for _, output := range reversed(m.outputs()) {
			for _, child := range reversed(workspacesOf(output)) {
				if prev == nil || child.Num > prev.Num {
					prev = child
				}
			}
		}
	}
	return prev
}

// NextOnOutput behaves like Next but never leaves the focused output.
func (m *Manager) NextOnOutput() *tree.Con {
	current := m.tree.Focused.Workspace()
	if current == nil {
		return nil
	}
	output := m.tree.Focused.Output()
	var next *tree.Con

	if current.Num == tree.UnnumberedWorkspace {
		next = siblingAfter(current)
	} else {
		for _, child := range workspacesOf(output) {
			if child.Num == tree.UnnumberedWorkspace {
				break
			}
			if current.Num < child.Num && (next == nil || child.Num < next.Num) {
				next = child
			}
		}
	}

	if next == nil {
		foundCurrent := false
		for _, child := range workspacesOf(output) {
			if child == current {
				foundCurrent = true
			} else if child.Num == tree.UnnumberedWorkspace &&
				(current.Num != tree.UnnumberedWorkspace || foundCurrent) {
				return child
			}
		}
	}

	if next == nil {
		for _, child := range workspacesOf(output) {
			if next == nil || (child.Num != tree.UnnumberedWorkspace && child.Num < next.Num) {
				next = child
			}
		}
	}
	return next
}

// PrevOnOutput behaves like Prev but never leaves the focused output.
func (m *Manager) PrevOnOutput() *tree.Con {
	current := m.tree.Focused.Workspace()
	if current == nil {
		return nil
	}
	output := m.tree.Focused.Output()
	var prev *tree.Con

	if current.Num == tree.UnnumberedWorkspace {
		if prev = siblingBefore(current); prev != nil && prev.Num != tree.UnnumberedWorkspace {
			prev = nil
		}
	} else {
		for _, child := range reversed(workspacesOf(output)) {
			if child.Num == tree.UnnumberedWorkspace {
				continue
			}
			if current.Num > child.Num && (prev == nil || child.Num > prev.Num) {
				prev = child
			}
		}
	}

	if prev == nil {
		foundCurrent := false
		for _, child := range reversed(workspacesOf(output)) {
			if child == current {
				foundCurrent = true
			} else if child.Num == tree.UnnumberedWorkspace &&
				(current.Num != tree.UnnumberedWorkspace || foundCurrent) {
				return child
			}
		}
	}

	if prev == nil {
		for _, child := range reversed(workspacesOf(output)) {
			if prev == nil || child.Num > prev.Num {
				prev = child
			}
		}
	}
	return prev
}

// outputs returns the real outputs in registration order, skipping
// internal scaffolding.
func (m *Manager) outputs() []*tree.Con {
	var out []*tree.Con
	for _, c := range m.tree.Root.Children() {
		if c.Kind == tree.KindOutput && !c.IsInternal() {
			out = append(out, c)
		}
	}
	return out
}

func workspacesOf(output *tree.Con) []*tree.Con {
	var out []*tree.Con
	for _, c := range output.Content().Children() {
		if c.Kind == tree.KindWorkspace {
			out = append(out, c)
		}
	}
	return out
}

func siblingAfter(ws *tree.Con) *tree.Con {
	siblings := ws.Parent().Children()
	for i, s := range siblings {
		if s == ws && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}

func siblingBefore(ws *tree.Con) *tree.Con {
	siblings := ws.Parent().Children()
	for i, s := range siblings {
		if s == ws && i > 0 {
			return siblings[i-1]
		}
	}
	return nil
}

func reversed(list []*tree.Con) []*tree.Con {
	out := make([]*tree.Con, len(list))
	for i, c := range list {
		out[len(list)-1-i] = c
	}
	return out
}
