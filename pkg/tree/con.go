package tree

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind discriminates the container variants.
type Kind int

const (
	KindRoot      Kind = iota // the single tree root
	KindOutput                // one physical display
	KindContent               // the workspace-holding child of an output
	KindWorkspace             // a named, optionally numbered workspace
	KindCon                   // split/tabbed/stacked grouping or a window leaf
	KindDockarea              // dock clients (bars) live here
	KindFloating              // detached overlay child of a workspace
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindOutput:
		return "output"
	case KindContent:
		return "content"
	case KindWorkspace:
		return "workspace"
	case KindCon:
		return "con"
	case KindDockarea:
		return "dockarea"
	case KindFloating:
		return "floating"
	default:
		return "unknown"
	}
}

// Layout describes how a container arranges its children.
type Layout int

const (
	LayoutDefault Layout = iota // only valid as a workspace-layout setting
	LayoutSplitH
	LayoutSplitV
	LayoutStacked
	LayoutTabbed
	LayoutDockarea
	LayoutOutput
)

func (l Layout) String() string {
	switch l {
	case LayoutDefault:
		return "default"
	case LayoutSplitH:
		return "splith"
	case LayoutSplitV:
		return "splitv"
	case LayoutStacked:
		return "stacked"
	case LayoutTabbed:
		return "tabbed"
	case LayoutDockarea:
		return "dockarea"
	case LayoutOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Orientation of a plain split container.
type Orientation int

const (
	NoOrientation Orientation = iota
	Horizontal
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "none"
	}
}

// FullscreenMode selects visibility. A workspace holding
// FullscreenOutput is the visible workspace on its output.
type FullscreenMode int

const (
	FullscreenNone FullscreenMode = iota
	FullscreenOutput
	FullscreenGlobal
)

// FloatingState tracks whether a client tiles or floats and who made
// that decision. The order matters: >= FloatingAutoOn means floating.
type FloatingState int

const (
	FloatingAutoOff FloatingState = iota
	FloatingUserOff
	FloatingAutoOn
	FloatingUserOn
)

// Rect is a position plus size in root coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  uint32
	Height uint32
}

// UnnumberedWorkspace is the Num sentinel for named workspaces that
// carry no numeric order.
const UnnumberedWorkspace = -1

// Con is a node in the container tree.
type Con struct {
	// ID is a stable identifier used in events and logs.
	ID string

	Kind        Kind
	Layout      Layout
	Orientation Orientation

	// WorkspaceLayout is only meaningful on workspaces: when not
	// LayoutDefault, new window leaves get wrapped in a split
	// container with this layout instead of attaching directly.
	WorkspaceLayout Layout

	FullscreenMode FullscreenMode
	FloatingState  FloatingState

	// Split marks containers created by an explicit split, as opposed
	// to window leaves. Flatten relies on it.
	Split bool

	Name string

	// Num is the workspace number, or UnnumberedWorkspace for named
	// workspaces.
	Num int

	// StickyGroup bundles containers whose window contents migrate to
	// whichever member is currently visible. Empty means not sticky.
	StickyGroup string

	Urgent bool
	Mapped bool

	// Percent is this container's share of its parent's space along
	// the split axis. FixPercent keeps sibling shares summing to one.
	Percent float64

	Rect       Rect
	WindowRect Rect
	DecoRect   Rect
	// Geometry is the size the client asked for when it was mapped.
	Geometry Rect

	Window *Window

	// Frame is the X11 frame window wrapping the client, owned by the
	// backend.
	Frame uint32

	parent    *Con
	children  []*Con
	focusList []*Con
	floating  []*Con
}

// NewCon creates a detached container of the given kind. Workspaces
// start unnumbered; callers set Num before attaching so the ordered
// insertion in Attach can see it.
func NewCon(kind Kind, name string) *Con {
	return &Con{
		ID:   uuid.NewString(),
		Kind: kind,
		Name: name,
		Num:  UnnumberedWorkspace,
	}
}

// Parent returns the structural parent, or nil for the root.
func (c *Con) Parent() *Con { return c.parent }

// Children returns the structural child list in layout order. The
// returned slice is live; callers must not modify it.
func (c *Con) Children() []*Con { return c.children }

// FocusOrder returns the children most-recently-focused first,
// including floating children. The returned slice is live.
func (c *Con) FocusOrder() []*Con { return c.focusList }

// FloatingChildren returns the floating list. Only workspaces carry
// floating children. The returned slice is live.
func (c *Con) FloatingChildren() []*Con { return c.floating }

// IsLeaf reports whether the container has no structural children.
func (c *Con) IsLeaf() bool { return len(c.children) == 0 }

// NumChildren returns the number of structural children.
func (c *Con) NumChildren() int { return len(c.children) }

// IsFloating reports whether this container floats.
func (c *Con) IsFloating() bool { return c.FloatingState >= FloatingAutoOn }

// InsideFloating returns the floating container c lives in, either
// directly or through any number of split ancestors, or nil for
// tiling containers. The search stops at workspace level.
func (c *Con) InsideFloating() *Con {
	if c.Kind == KindFloating {
		return c
	}
	if c.FloatingState >= FloatingAutoOn {
		return c.parent
	}
	if c.Kind == KindWorkspace || c.Kind == KindOutput || c.parent == nil {
		return nil
	}
	return c.parent.InsideFloating()
}

// IsInternal reports whether the container belongs to the window
// manager itself (scratch workspace, pseudo-output). Internal
// containers are skipped by workspace navigation and switching.
func (c *Con) IsInternal() bool {
	return len(c.Name) >= 2 && c.Name[0] == '_' && c.Name[1] == '_'
}

// Attach inserts c into parent's structural child list and at the
// tail of parent's focus order (Focus moves it to the front later,
// which lets callers insert containers without focusing them).
//
// Workspaces are inserted in ascending Num order with named
// workspaces at the end. Tiling containers go right after the
// currently focused tiling sibling unless ignoreFocus is set, which
// appends at the end instead (useful when wrapping containers in a
// new split without disturbing focus). Floating containers append to
// the floating list.
//
// Attaching an already-attached container is a programming error and
// panics.
func (c *Con) Attach(parent *Con, ignoreFocus bool) {
	if c.parent != nil {
		panic(fmt.Sprintf("tree: attach of already-attached container %s (%q)", c.ID, c.Name))
	}

	target := parent

	switch {
	case c.Kind == KindWorkspace:
		target.insertWorkspace(c)

	case c.Kind == KindFloating:
		target.floating = append(target.floating, c)

	default:
		var after *Con
		if !ignoreFocus {
			// The first tiling container in the focus order is where
			// the user is working; insert next to it.
			for _, fc := range target.focusList {
				if fc.Kind == KindFloating {
					continue
				}
				after = fc
				break
			}
		}

		// Window leaves attaching to a workspace honor the configured
		// workspace layout by attaching into a fresh split container.
		if c.Window != nil && target.Kind == KindWorkspace && target.WorkspaceLayout != LayoutDefault {
			target = target.attachTarget()
			after = nil
		}

		if after != nil && target.Kind != KindOutput {
			insertConAfter(&target.children, after, c)
		} else {
			target.children = append(target.children, c)
		}
	}

	c.parent = target
	target.focusList = append(target.focusList, c)
}

// insertWorkspace places ws into c's child list keeping numbered
// workspaces sorted ascending and named workspaces at the tail.
func (c *Con) insertWorkspace(ws *Con) {
	if ws.Num == UnnumberedWorkspace || len(c.children) == 0 {
		c.children = append(c.children, ws)
		return
	}
	for i, sibling := range c.children {
		if sibling.Num == UnnumberedWorkspace || ws.Num <= sibling.Num {
			c.children = append(c.children[:i], append([]*Con{ws}, c.children[i:]...)...)
			return
		}
	}
	c.children = append(c.children, ws)
}

// attachTarget returns the container a new window leaf should attach
// to: the workspace itself for the default layout, or a fresh split
// container carrying the configured workspace layout.
func (c *Con) attachTarget() *Con {
	if c.WorkspaceLayout == LayoutDefault {
		return c
	}
	split := NewCon(KindCon, "")
	split.Split = true
	split.Layout = c.WorkspaceLayout
	split.Attach(c, false)
	return split
}

// Detach removes c from its parent's structural (or floating) list
// and focus order. It does not delete c or pick a new focus; the
// caller decides what happens next.
func (c *Con) Detach() {
	parent := c.parent
	if parent == nil {
		panic(fmt.Sprintf("tree: detach of unattached container %s (%q)", c.ID, c.Name))
	}

	if c.Kind == KindFloating {
		removeCon(&parent.floating, c)
	} else {
		removeCon(&parent.children, c)
	}
	removeCon(&parent.focusList, c)
	c.parent = nil
}

// Output walks up to the output container holding c. Focus can never
// rest above an output, so a missing output is a corrupt tree and
// panics.
func (c *Con) Output() *Con {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.Kind == KindOutput {
			return cur
		}
	}
	panic(fmt.Sprintf("tree: container %s (%q) has no output ancestor", c.ID, c.Name))
}

// Workspace walks up to the workspace holding c, or returns nil when
// c sits above workspace level.
func (c *Con) Workspace() *Con {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.Kind == KindWorkspace {
			return cur
		}
	}
	return nil
}

// Content returns the workspace-holding content child of an output
// container. Calling it on anything but an output is a programming
// error and panics.
func (c *Con) Content() *Con {
	if c.Kind != KindOutput {
		panic(fmt.Sprintf("tree: Content called on %s container %s (%q)", c.Kind, c.ID, c.Name))
	}
	for _, child := range c.children {
		if child.Kind == KindContent {
			return child
		}
	}
	panic(fmt.Sprintf("tree: output %q has no content container", c.Name))
}

// DescendFocused follows the focus order to the most recently focused
// leaf under c. Deterministic, O(depth).
func (c *Con) DescendFocused() *Con {
	next := c
	for len(next.focusList) > 0 {
		next = next.focusList[0]
	}
	return next
}

// DescendTilingFocused works like DescendFocused but never descends
// into floating containers.
func (c *Con) DescendTilingFocused() *Con {
	next := c
	for {
		before := next
		for _, child := range next.focusList {
			if child.Kind == KindFloating {
				continue
			}
			next = child
			break
		}
		if before == next {
			return next
		}
	}
}

// FullscreenBelow returns the first descendant of c holding the given
// fullscreen mode, searching breadth-first over structural and
// floating children, or nil.
func (c *Con) FullscreenBelow(mode FullscreenMode) *Con {
	queue := []*Con{c}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current != c && current.FullscreenMode == mode {
			return current
		}
		queue = append(queue, current.children...)
		queue = append(queue, current.floating...)
	}
	return nil
}

// FixPercent recomputes the size shares of c's structural children so
// they sum to one. Children without a share get a value proportional
// to the existing ones; if nothing has a share, space is split
// equally.
func (c *Con) FixPercent() {
	children := len(c.children)
	if children == 0 {
		return
	}

	total := 0.0
	withPercent := 0
	for _, child := range c.children {
		if child.Percent > 0.0 {
			total += child.Percent
			withPercent++
		}
	}

	if withPercent != children {
		for _, child := range c.children {
			if child.Percent <= 0.0 {
				if withPercent == 0 {
					child.Percent = 1.0
				} else {
					child.Percent = total / float64(withPercent)
				}
				total += child.Percent
			}
		}
	}

	if total == 0.0 {
		for _, child := range c.children {
			child.Percent = 1.0 / float64(children)
		}
	} else if total != 1.0 {
		for _, child := range c.children {
			child.Percent /= total
		}
	}
}

// EffectiveOrientation returns the orientation the container lays its
// children out in: stacked containers behave vertically and tabbed
// containers horizontally regardless of their split orientation.
func (c *Con) EffectiveOrientation() Orientation {
	switch c.Layout {
	case LayoutStacked:
		return Vertical
	case LayoutTabbed:
		return Horizontal
	default:
		return c.Orientation
	}
}

// removeCon splices the first occurrence of target out of the slice.
// Missing containers indicate list corruption and panic.
func removeCon(list *[]*Con, target *Con) {
	for i, c := range *list {
		if c == target {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("tree: container %s (%q) missing from its parent list", target.ID, target.Name))
}

// insertConAfter inserts c immediately after the given sibling.
func insertConAfter(list *[]*Con, after, c *Con) {
	for i, cur := range *list {
		if cur == after {
			*list = append((*list)[:i+1], append([]*Con{c}, (*list)[i+1:]...)...)
			return
		}
	}
	panic(fmt.Sprintf("tree: insertion anchor %s (%q) missing from child list", after.ID, after.Name))
}
