package workspace

import (
	"testing"

	"github.com/chazu/sapling/pkg/config"
	"github.com/chazu/sapling/pkg/event"
	"github.com/chazu/sapling/pkg/tree"
	"github.com/chazu/sapling/pkg/xserver"
)

// fixture bundles a tree with one real output, a recording backend
// and a recording event sink.
type fixture struct {
	tree   *tree.Tree
	mgr    *Manager
	events *event.Recorder
	x      *xserver.Recorder
}

func newFixture(cfg *config.Config) *fixture {
	if cfg == nil {
		cfg = config.Default()
	}
	events := &event.Recorder{}
	tr := tree.New(events)
	x := xserver.NewRecorder()
	mgr := NewManager(tr, cfg, x, nil)

	f := &fixture{tree: tr, mgr: mgr, events: events, x: x}
	ws := f.addOutput("left", tree.Rect{Width: 1920, Height: 1080}, "1")
	tr.Focus(ws)
	events.Reset()
	return f
}

// addOutput builds the scaffolding of a display and one visible
// workspace on it.
func (f *fixture) addOutput(name string, rect tree.Rect, wsName string) *tree.Con {
	output := tree.NewCon(tree.KindOutput, name)
	output.Layout = tree.LayoutOutput
	output.Rect = rect
	output.Attach(f.tree.Root, false)

	topdock := tree.NewCon(tree.KindDockarea, "topdock")
	topdock.Layout = tree.LayoutDockarea
	topdock.Attach(output, false)

	content := tree.NewCon(tree.KindContent, "content")
	content.Layout = tree.LayoutSplitH
	content.Attach(output, false)

	bottomdock := tree.NewCon(tree.KindDockarea, "bottomdock")
	bottomdock.Layout = tree.LayoutDockarea
	bottomdock.Attach(output, false)

	ws := tree.NewCon(tree.KindWorkspace, wsName)
	ws.Num = ParseNum(wsName)
	ws.Layout = tree.LayoutSplitH
	ws.FullscreenMode = tree.FullscreenOutput
	ws.Attach(content, false)
	return ws
}

func (f *fixture) addWindow(parent *tree.Con, name string) *tree.Con {
	con := tree.NewCon(tree.KindCon, name)
	con.Window = &tree.Window{Name: name}
	con.Mapped = true
	con.Attach(parent, false)
	f.tree.Focus(con)
	return con
}

func changes(events []event.WorkspaceEvent) []event.Change {
	out := make([]event.Change, len(events))
	for i, e := range events {
		out[i] = e.Change
	}
	return out
}

func TestParseNum(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"3", 3},
		{"0", 0},
		{"10", 10},
		{"3: www", 3},
		{"3www", 3},
		{"web", -1},
		{"", -1},
		{"-5", -1},
		{"+7", 7},
		{"-", -1},
		{"99999999999999999999", -1},
	}
	for _, tc := range cases {
		if got := ParseNum(tc.name); got != tc.want {
			t.Errorf("ParseNum(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestGetReturnsExisting(t *testing.T) {
	f := newFixture(nil)

	ws, created := f.mgr.Get("1")
	if created {
		t.Fatal("workspace 1 already exists")
	}
	if ws.Name != "1" {
		t.Fatalf("expected workspace 1, got %q", ws.Name)
	}
	if len(f.events.Events) != 0 {
		t.Errorf("lookup must not emit events, got %v", f.events.Events)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	f := newFixture(nil)
	web, created := f.mgr.Get("Web")
	if !created {
		t.Fatal("expected creation")
	}

	same, created := f.mgr.Get("WEB")
	if created {
		t.Fatal("lookup should be case-insensitive")
	}
	if same != web {
		t.Error("expected the same workspace back")
	}
}

func TestGetCreatesAndEmitsInit(t *testing.T) {
	f := newFixture(nil)

	ws, created := f.mgr.Get("3: code")
	if !created {
		t.Fatal("expected creation")
	}
	if ws.Num != 3 {
		t.Errorf("expected parsed number 3, got %d", ws.Num)
	}
	if len(f.events.Events) != 1 ||
		f.events.Events[0].Change != event.ChangeInit ||
		f.events.Events[0].Name != "3: code" {
		t.Fatalf("expected a single init event, got %v", f.events.Events)
	}
	if ws.Parent().Kind != tree.KindContent {
		t.Errorf("workspace should live under content, got %s", ws.Parent().Kind)
	}
}

func TestGetIdempotent(t *testing.T) {
	f := newFixture(nil)

	first, created1 := f.mgr.Get("mail")
	second, created2 := f.mgr.Get("mail")
	if !created1 || created2 {
		t.Fatalf("expected exactly one creation, got %v then %v", created1, created2)
	}
	if first != second {
		t.Error("repeated Get must return the same container")
	}
}

func TestGetKeepsNumOrder(t *testing.T) {
	f := newFixture(nil)
	f.mgr.Get("5")
	f.mgr.Get("web")
	f.mgr.Get("2")

	content := f.tree.Focused.Output().Content()
	var names []string
	for _, ws := range content.Children() {
		names = append(names, ws.Name)
	}
	want := []string{"1", "2", "5", "web"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestGetHonorsAssignment(t *testing.T) {
	cfg := config.Default()
	cfg.Assignments = []config.Assignment{{Name: "mail", Output: "right"}}
	f := newFixture(cfg)
	f.addOutput("right", tree.Rect{X: 1920, Width: 1280, Height: 1024}, "9")

	ws, _ := f.mgr.Get("mail")
	if ws.Output().Name != "right" {
		t.Errorf("expected mail on right, got %q", ws.Output().Name)
	}
}

func TestGetAssignmentToUnknownOutputFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.Assignments = []config.Assignment{{Name: "mail", Output: "gone"}}
	f := newFixture(cfg)

	ws, _ := f.mgr.Get("mail")
	if ws.Output().Name != "left" {
		t.Errorf("expected fallback to the focused output, got %q", ws.Output().Name)
	}
}

func TestGetAppliesDefaultOrientation(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultOrientation = "vertical"
	f := newFixture(cfg)

	ws, _ := f.mgr.Get("2")
	if ws.Layout != tree.LayoutSplitV {
		t.Errorf("expected splitv, got %s", ws.Layout)
	}
}

func TestGetAutoOrientationFollowsOutputShape(t *testing.T) {
	f := newFixture(nil)
	f.addOutput("portrait", tree.Rect{X: 1920, Width: 1080, Height: 1920}, "9")
	portrait, _ := f.mgr.Get("9")
	f.tree.Focus(portrait)

	ws, _ := f.mgr.Get("p2")
	if ws.Layout != tree.LayoutSplitV {
		t.Errorf("expected splitv on a portrait output, got %s", ws.Layout)
	}
}

func TestEnsureOnOutputUsesBindings(t *testing.T) {
	cfg := config.Default()
	cfg.Bindings = []config.Binding{
		{Combo: "mod+n", Command: "workspace next"},
		{Combo: "mod+b", Command: "workspace back_and_forth"},
		{Combo: "mod+1", Command: "workspace 1"},
		{Combo: "mod+w", Command: "workspace web"},
	}
	f := newFixture(cfg)
	output := f.tree.Focused.Output()

	// "next" and "back_and_forth" are reserved, "1" exists, so "web"
	// is the first usable name.
	ws := f.mgr.EnsureOnOutput(output)
	if ws.Name != "web" {
		t.Errorf("expected web, got %q", ws.Name)
	}
	if ws.FullscreenMode != tree.FullscreenOutput {
		t.Error("the created workspace should be visible")
	}
}

func TestEnsureOnOutputStripsQuotes(t *testing.T) {
	cfg := config.Default()
	cfg.Bindings = []config.Binding{
		{Combo: "mod+n", Command: `workspace "next"`},
	}
	f := newFixture(cfg)

	// A quoted "next" is a legitimate workspace name: the reserved
	// check runs before quote stripping.
	ws := f.mgr.EnsureOnOutput(f.tree.Focused.Output())
	if ws.Name != "next" {
		t.Errorf("expected next, got %q", ws.Name)
	}
}

func TestEnsureOnOutputSkipsAssignedElsewhere(t *testing.T) {
	cfg := config.Default()
	cfg.Bindings = []config.Binding{
		{Combo: "mod+m", Command: "workspace mail"},
		{Combo: "mod+w", Command: "workspace web"},
	}
	cfg.Assignments = []config.Assignment{{Name: "mail", Output: "right"}}
	f := newFixture(cfg)

	ws := f.mgr.EnsureOnOutput(f.tree.Focused.Output())
	if ws.Name != "web" {
		t.Errorf("expected web, mail is pinned elsewhere, got %q", ws.Name)
	}
}

func TestEnsureOnOutputFallsBackToIntegers(t *testing.T) {
	f := newFixture(nil)
	output := f.tree.Focused.Output()

	// No bindings and "1" taken: the lowest free integer wins.
	ws := f.mgr.EnsureOnOutput(output)
	if ws.Name != "2" || ws.Num != 2 {
		t.Errorf("expected workspace 2, got %q (num %d)", ws.Name, ws.Num)
	}

	next := f.mgr.EnsureOnOutput(output)
	if next.Name != "3" {
		t.Errorf("expected workspace 3, got %q", next.Name)
	}
}

func TestUpdateUrgentFlagFoldsAndEmits(t *testing.T) {
	f := newFixture(nil)
	ws, _ := f.mgr.Get("1")
	a := f.addWindow(ws, "a")
	b := f.addWindow(ws, "b")
	f.events.Reset()

	a.Urgent = true
	f.mgr.UpdateUrgentFlag(ws)
	if !ws.Urgent {
		t.Fatal("workspace should aggregate child urgency")
	}
	// b urgent too: aggregate unchanged, no second event.
	b.Urgent = true
	f.mgr.UpdateUrgentFlag(ws)

	a.Urgent = false
	f.mgr.UpdateUrgentFlag(ws)
	if !ws.Urgent {
		t.Fatal("workspace stays urgent while any child is")
	}

	b.Urgent = false
	f.mgr.UpdateUrgentFlag(ws)
	if ws.Urgent {
		t.Fatal("workspace urgency should clear")
	}

	got := changes(f.events.Events)
	if len(got) != 2 || got[0] != event.ChangeUrgent || got[1] != event.ChangeUrgent {
		t.Fatalf("expected exactly two urgent events, got %v", got)
	}
}
