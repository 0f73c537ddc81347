package tree

import (
	"github.com/chazu/sapling/pkg/event"
)

// PseudoOutputName is the internal output hosting output-independent
// workspaces such as the scratch workspace.
const PseudoOutputName = "__sapling"

// ScratchWorkspaceName holds scratchpad windows. It is internal and
// never the target of a workspace switch.
const ScratchWorkspaceName = "__sapling_scratch"

// Tree is one container tree plus its session state: the currently
// focused container and the hooks the structural operations need.
// Modeling this as an explicit object (instead of package globals)
// lets tests run independent trees side by side.
type Tree struct {
	Root    *Con
	Focused *Con

	// ReleaseWindow is called for every client window owned by a
	// container that Close tears down, so the transport layer can
	// un-reparent it. Optional.
	ReleaseWindow func(*Window)

	events event.Sink
}

// New creates a tree with its root and the internal pseudo-output
// carrying the scratch workspace. Real outputs attach next to the
// pseudo-output as they are registered.
func New(events event.Sink) *Tree {
	if events == nil {
		events = event.Discard{}
	}

	root := NewCon(KindRoot, "root")
	root.Layout = LayoutSplitH

	t := &Tree{Root: root, Focused: root, events: events}

	pseudo := NewCon(KindOutput, PseudoOutputName)
	pseudo.Layout = LayoutOutput
	pseudo.Rect = Rect{Width: 1280, Height: 1024}
	pseudo.Attach(root, false)

	content := NewCon(KindContent, "content")
	content.Layout = LayoutSplitH
	content.Attach(pseudo, false)

	scratch := NewCon(KindWorkspace, ScratchWorkspaceName)
	scratch.Layout = LayoutSplitH
	scratch.Attach(content, false)
	scratch.FullscreenMode = FullscreenOutput

	root.FixPercent()
	return t
}

// Events returns the sink tree operations emit to.
func (t *Tree) Events() event.Sink { return t.events }

// Focus sets input focus to c: the container moves to the front of
// every ancestor's focus order so DescendFocused finds it again, and
// a pending urgency flag on it is cleared.
func (t *Tree) Focus(c *Con) {
	if c == nil {
		panic("tree: focus of nil container")
	}

	for cur := c; cur.parent != nil; cur = cur.parent {
		removeCon(&cur.parent.focusList, cur)
		cur.parent.focusList = append([]*Con{cur}, cur.parent.focusList...)
	}

	t.Focused = c
	if c.Urgent {
		c.Urgent = false
		t.UpdateUrgentFlag(c.Workspace())
	}
}

// FocusParent moves focus one level up, stopping at workspace level.
// Returns whether focus changed.
func (t *Tree) FocusParent() bool {
	parent := t.Focused.parent
	if t.Focused.Kind == KindWorkspace ||
		parent == nil ||
		(parent.Kind != KindCon && parent.Kind != KindWorkspace) {
		return false
	}
	t.Focus(parent)
	return true
}

// FocusChild moves focus one step down the focus order. Returns
// whether focus changed.
func (t *Tree) FocusChild() bool {
	if len(t.Focused.focusList) == 0 {
		return false
	}
	t.Focus(t.Focused.focusList[0])
	return true
}

// IsVisible reports whether ws is the workspace currently shown on
// its output. With several outputs there are several visible
// workspaces at once.
func (t *Tree) IsVisible(ws *Con) bool {
	var output *Con
	for cur := ws; cur != nil; cur = cur.parent {
		if cur.Kind == KindOutput {
			output = cur
			break
		}
	}
	if output == nil {
		return false
	}
	return output.FullscreenBelow(FullscreenOutput) == ws
}

// UpdateUrgentFlag recomputes the workspace urgency flag as the OR of
// every descendant's flag, over both structural and floating
// children, and emits an urgent event when the aggregate changed.
// Recomputed from scratch on every call.
func (t *Tree) UpdateUrgentFlag(ws *Con) {
	if ws == nil {
		return
	}
	old := ws.Urgent
	ws.Urgent = urgentBelow(ws)
	if old != ws.Urgent {
		t.events.WorkspaceChanged(event.WorkspaceEvent{Change: event.ChangeUrgent, Name: ws.Name})
	}
}

func urgentBelow(c *Con) bool {
	for _, child := range c.children {
		if child.Urgent || urgentBelow(child) {
			return true
		}
	}
	for _, child := range c.floating {
		if child.Urgent || urgentBelow(child) {
			return true
		}
	}
	return false
}

// Close tears down c and everything below it, releases any client
// windows through the ReleaseWindow hook, restores focus and prunes
// parents that became empty. Empty invisible workspaces pruned on the
// way up emit an empty event.
func (t *Tree) Close(c *Con) {
	t.close(c, false, false)
}

// close mirrors the recursive teardown: dontKillParent suppresses the
// empty-parent pruning while tearing down a subtree, forceSetFocus is
// set when closing the floating container wrapping the focused
// window.
func (t *Tree) close(c *Con, dontKillParent, forceSetFocus bool) {
	wasMapped := c.Mapped || mappedBelow(c)

	next := t.NextFocused(c)

	for _, child := range append([]*Con(nil), c.children...) {
		t.close(child, true, false)
	}

	if c.Window != nil {
		if t.ReleaseWindow != nil {
			t.ReleaseWindow(c.Window)
		}
		c.Window = nil
	}

	parent := c.parent
	ws := c.Workspace()
	wasFocused := c == t.Focused
	c.Detach()
	if c.Kind != KindFloating {
		// Closing a tiling child changes how much space the siblings
		// get.
		parent.FixPercent()
	}

	if c.IsFloating() {
		// The window itself was floating; its wrapper container dies
		// with it.
		t.close(parent, false, wasFocused)
		if wasFocused {
			next = ws.DescendFocused()
			dontKillParent = true
		} else {
			next = nil
		}
	}

	if next == nil {
		return
	}

	if wasMapped || wasFocused {
		if !dontKillParent || wasFocused {
			if next.Kind == KindDockarea {
				// Dock clients cannot hold focus; fall back to the
				// workspace content of their output.
				t.Focus(next.parent.Content().DescendFocused())
			} else if forceSetFocus || wasFocused {
				t.Focus(next)
			}
		}
	}

	if !dontKillParent {
		t.onRemoveChild(parent)
	}
}

// CloseIfEmpty applies the lost-a-child pruning rules to c. Callers
// that detach containers themselves (moving between workspaces) use
// it to clean up the source parent.
func (t *Tree) CloseIfEmpty(c *Con) {
	t.onRemoveChild(c)
}

// onRemoveChild prunes containers that lost their last child: split
// containers close immediately, workspaces only once they are both
// empty and invisible. Scaffolding (root, outputs, content, dock
// areas) is never pruned.
func (t *Tree) onRemoveChild(c *Con) {
	switch c.Kind {
	case KindRoot, KindOutput, KindContent, KindDockarea:
		return
	case KindWorkspace:
		if c.NumChildren() == 0 && len(c.floating) == 0 && !t.IsVisible(c) {
			name := c.Name
			t.close(c, false, false)
			t.events.WorkspaceChanged(event.WorkspaceEvent{Change: event.ChangeEmpty, Name: name})
		}
		return
	}

	if c.NumChildren() == 0 && len(c.floating) == 0 {
		t.close(c, false, false)
	}
}

// NextFocused returns the container that should receive focus once c
// goes away, following the focus order of the surviving siblings.
func (t *Tree) NextFocused(c *Con) *Con {
	if c.Kind == KindFloating {
		ws := c.Workspace()
		// Prefer the neighboring floating container, descended to an
		// actual window.
		if sibling := floatingNeighbor(c); sibling != nil {
			return sibling.DescendFocused()
		}
		// No other floating children: descend the workspace focus
		// order, skipping the container being closed.
		next := ws
		for next != nil && len(next.focusList) > 0 {
			cand := next.focusList[0]
			if cand == c {
				if len(next.focusList) > 1 {
					cand = next.focusList[1]
				} else {
					cand = nil
				}
			}
			next = cand
		}
		if next == nil {
			return ws
		}
		return next
	}

	if c.parent.Kind == KindDockarea {
		return c.parent.parent.Content().DescendFocused()
	}

	var next *Con
	first := c.parent.focusList[0]
	if first != c {
		// c is not focused within its parent, so the parent's focus
		// front survives untouched.
		next = first
	} else {
		next = focusSiblingAfter(c)
		if next == nil {
			next = c.parent
		}
	}

	for len(next.focusList) > 0 && next.focusList[0] != c {
		next = next.focusList[0]
	}
	return next
}

// floatingNeighbor returns the floating sibling after c, or before it
// when c is last, or nil when c is the only floating child.
func floatingNeighbor(c *Con) *Con {
	siblings := c.parent.floating
	for i, cur := range siblings {
		if cur != c {
			continue
		}
		if i+1 < len(siblings) {
			return siblings[i+1]
		}
		if i > 0 {
			return siblings[i-1]
		}
		return nil
	}
	return nil
}

// focusSiblingAfter returns the container following c in its parent's
// focus order, or nil.
func focusSiblingAfter(c *Con) *Con {
	list := c.parent.focusList
	for i, cur := range list {
		if cur == c && i+1 < len(list) {
			return list[i+1]
		}
	}
	return nil
}

func mappedBelow(c *Con) bool {
	if c.Mapped {
		return true
	}
	for _, child := range c.children {
		if mappedBelow(child) {
			return true
		}
	}
	return false
}

// Split wraps c in a new split container with the given orientation.
// Splitting a workspace just flips its layout, and splitting the only
// child of a plain split re-orients the parent instead of nesting.
func (t *Tree) Split(c *Con, orientation Orientation) {
	layout := LayoutSplitH
	if orientation == Vertical {
		layout = LayoutSplitV
	}

	if c.Kind == KindWorkspace {
		c.Layout = layout
		return
	}

	parent := c.parent
	if parent.NumChildren() == 1 &&
		(parent.Layout == LayoutSplitH || parent.Layout == LayoutSplitV) {
		parent.Layout = layout
		return
	}

	split := NewCon(KindCon, "")
	split.Layout = layout
	split.Split = true
	replaceCon(&parent.children, c, split)
	replaceCon(&parent.focusList, c, split)
	split.parent = parent

	split.Percent = c.Percent
	c.Percent = 0.0

	c.parent = nil
	c.Attach(split, false)
}

// Flatten removes redundant split pairs below c: a split whose only
// child is a split of the opposite orientation matching the
// grandparent collapses into it. Such chains appear when containers
// are repeatedly moved against their parent's orientation.
func (t *Tree) Flatten(c *Con) {
	parent := c.parent

	redundant := c.Kind == KindCon &&
		parent != nil &&
		parent.Layout != LayoutOutput &&
		c.Window == nil &&
		len(c.children) == 1

	if redundant {
		child := c.children[0]
		if c.Split && child.Split &&
			c.EffectiveOrientation() != child.EffectiveOrientation() &&
			child.EffectiveOrientation() == parent.EffectiveOrientation() {

			focusNext := (*Con)(nil)
			if len(child.focusList) > 0 {
				focusNext = child.focusList[0]
			}

			for len(child.children) > 0 {
				current := child.children[0]
				current.Detach()
				current.parent = parent
				insertConBefore(&parent.children, c, current)
				parent.focusList = append(parent.focusList, current)
				current.Percent = c.Percent
			}

			if focusNext != nil && parent.focusList[0] == c {
				removeCon(&parent.focusList, focusNext)
				parent.focusList = append([]*Con{focusNext}, parent.focusList...)
			}

			t.close(c, true, false)
			// c is gone; one flatten pass per level is enough.
			return
		}
	}

	for _, current := range append([]*Con(nil), c.children...) {
		t.Flatten(current)
	}
	for _, current := range append([]*Con(nil), c.floating...) {
		t.Flatten(current)
	}
}

// replaceCon swaps old for new in place, keeping list position.
func replaceCon(list *[]*Con, old, new *Con) {
	for i, cur := range *list {
		if cur == old {
			(*list)[i] = new
			return
		}
	}
	panic("tree: replace target missing from list")
}

// insertConBefore inserts c immediately before the given sibling.
func insertConBefore(list *[]*Con, before, c *Con) {
	for i, cur := range *list {
		if cur == before {
			*list = append((*list)[:i], append([]*Con{c}, (*list)[i:]...)...)
			return
		}
	}
	panic("tree: insertion anchor missing from child list")
}
