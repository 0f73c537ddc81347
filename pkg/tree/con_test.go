package tree

import (
	"math"
	"testing"
)

func wsNames(content *Con) []string {
	names := make([]string, 0, len(content.Children()))
	for _, ws := range content.Children() {
		names = append(names, ws.Name)
	}
	return names
}

func attachWorkspace(content *Con, name string, num int) *Con {
	ws := NewCon(KindWorkspace, name)
	ws.Num = num
	ws.Attach(content, false)
	return ws
}

func TestWorkspaceInsertionOrder(t *testing.T) {
	tr := New(nil)
	_, first := addOutput(tr, "left", "5")
	first.Num = 5
	content := first.Parent()

	attachWorkspace(content, "1", 1)
	attachWorkspace(content, "web", UnnumberedWorkspace)
	attachWorkspace(content, "3", 3)
	attachWorkspace(content, "mail", UnnumberedWorkspace)
	attachWorkspace(content, "2", 2)

	got := wsNames(content)
	want := []string{"1", "2", "3", "5", "web", "mail"}
	if len(got) != len(want) {
		t.Fatalf("expected %d workspaces, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestWorkspaceEqualNumInsertsBefore(t *testing.T) {
	tr := New(nil)
	_, first := addOutput(tr, "left", "3")
	first.Num = 3
	content := first.Parent()

	second := attachWorkspace(content, "3: code", 3)

	if content.Children()[0] != second {
		t.Errorf("expected the new equal-numbered workspace first, got %v", wsNames(content))
	}
}

func TestAttachInsertsNextToFocused(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")

	a := addWindow(tr, ws, "a")
	b := addWindow(tr, ws, "b")
	c := addWindow(tr, ws, "c")

	// a was focused when b attached, b when c attached.
	children := ws.Children()
	if children[0] != a || children[1] != b || children[2] != c {
		t.Fatalf("expected structural order a, b, c")
	}

	// With focus back on a, a new window lands between a and b.
	tr.Focus(a)
	d := addWindow(tr, ws, "d")
	if ws.Children()[1] != d {
		t.Errorf("expected d right after a, got %q", ws.Children()[1].Name)
	}
}

func TestAttachIgnoreFocusAppends(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")
	addWindow(tr, ws, "a")
	addWindow(tr, ws, "b")
	tr.Focus(ws.Children()[0])

	c := NewCon(KindCon, "c")
	c.Window = &Window{Name: "c"}
	c.Attach(ws, true)

	if ws.Children()[2] != c {
		t.Errorf("expected c appended at the end, got %q", ws.Children()[2].Name)
	}
	// Attaching must not steal focus: c sits at the tail of the focus
	// order until it is focused.
	if ws.FocusOrder()[len(ws.FocusOrder())-1] != c {
		t.Error("expected c at the tail of the focus order")
	}
}

func TestAttachHonorsWorkspaceLayout(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")
	ws.WorkspaceLayout = LayoutTabbed

	a := addWindow(tr, ws, "a")

	wrapper := a.Parent()
	if wrapper == ws {
		t.Fatal("expected the window to be wrapped in a layout container")
	}
	if wrapper.Layout != LayoutTabbed {
		t.Errorf("expected tabbed wrapper, got %s", wrapper.Layout)
	}
	if !wrapper.Split {
		t.Error("wrapper should count as a split container")
	}

	// Non-window containers attach directly.
	split := NewCon(KindCon, "")
	split.Attach(ws, false)
	if split.Parent() != ws {
		t.Error("containers without windows must not be wrapped")
	}
}

func TestAttachAttachedPanics(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")
	a := addWindow(tr, ws, "a")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when attaching an attached container")
		}
	}()
	a.Attach(ws, false)
}

func TestDetachUnattachedPanics(t *testing.T) {
	c := NewCon(KindCon, "loose")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when detaching an unattached container")
		}
	}()
	c.Detach()
}

func TestFixPercentEqualShares(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")
	addWindow(tr, ws, "a")
	addWindow(tr, ws, "b")
	addWindow(tr, ws, "c")

	ws.FixPercent()
	for _, child := range ws.Children() {
		if math.Abs(child.Percent-1.0/3.0) > 1e-9 {
			t.Errorf("expected equal thirds, got %f for %q", child.Percent, child.Name)
		}
	}
}

func TestFixPercentPreservesRatios(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")
	a := addWindow(tr, ws, "a")
	b := addWindow(tr, ws, "b")
	a.Percent = 0.75
	b.Percent = 0.25

	c := addWindow(tr, ws, "c")
	ws.FixPercent()

	total := a.Percent + b.Percent + c.Percent
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("expected shares to sum to 1, got %f", total)
	}
	if a.Percent <= b.Percent {
		t.Errorf("existing ratio lost: a=%f b=%f", a.Percent, b.Percent)
	}
}

func TestOutputAndWorkspaceLookup(t *testing.T) {
	tr := New(nil)
	output, ws := addOutput(tr, "left", "1")
	a := addWindow(tr, ws, "a")

	if a.Output() != output {
		t.Error("expected a's output to be left")
	}
	if a.Workspace() != ws {
		t.Error("expected a's workspace to be 1")
	}
	if output.Workspace() != nil {
		t.Error("outputs are above workspace level")
	}
	if ws.Workspace() != ws {
		t.Error("a workspace is its own workspace")
	}
}

func TestInsideFloating(t *testing.T) {
	tr := New(nil)
	_, ws := addOutput(tr, "left", "1")
	a := addWindow(tr, ws, "a")

	wrapper := NewCon(KindFloating, "")
	wrapper.Attach(ws, false)
	fw := NewCon(KindCon, "float")
	fw.FloatingState = FloatingAutoOn
	fw.Attach(wrapper, false)

	if a.InsideFloating() != nil {
		t.Error("tiling window must not report a floating ancestor")
	}
	if fw.InsideFloating() != wrapper {
		t.Error("floating window should report its wrapper")
	}
	if wrapper.InsideFloating() != wrapper {
		t.Error("the wrapper reports itself")
	}
}

func TestEffectiveOrientation(t *testing.T) {
	c := NewCon(KindCon, "")
	c.Layout = LayoutStacked
	if c.EffectiveOrientation() != Vertical {
		t.Error("stacked containers behave vertically")
	}
	c.Layout = LayoutTabbed
	if c.EffectiveOrientation() != Horizontal {
		t.Error("tabbed containers behave horizontally")
	}
	c.Layout = LayoutSplitV
	c.Orientation = Vertical
	if c.EffectiveOrientation() != Vertical {
		t.Error("split containers keep their orientation")
	}
}

func TestIsInternal(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{ScratchWorkspaceName, true},
		{PseudoOutputName, true},
		{"__anything", true},
		{"_single", false},
		{"web", false},
		{"", false},
	}
	for _, tc := range cases {
		c := NewCon(KindWorkspace, tc.name)
		if got := c.IsInternal(); got != tc.want {
			t.Errorf("IsInternal(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFullscreenBelow(t *testing.T) {
	tr := New(nil)
	output, ws := addOutput(tr, "left", "1")

	if output.FullscreenBelow(FullscreenOutput) != ws {
		t.Error("expected the visible workspace")
	}
	if ws.FullscreenBelow(FullscreenOutput) != nil {
		t.Error("the workspace itself is not below itself")
	}
}
