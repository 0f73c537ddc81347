// Package workspace implements workspace lookup and creation, the
// switch state machine, next/prev navigation, sticky-group
// reassignment and urgency propagation on top of the container tree.
package workspace

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chazu/sapling/pkg/config"
	"github.com/chazu/sapling/pkg/event"
	"github.com/chazu/sapling/pkg/tree"
	"github.com/chazu/sapling/pkg/xserver"
)

// reservedTargets are the dynamic workspace-switch arguments that can
// never serve as workspace names when scanning bindings for a free
// name. Quoted names ("next") are fine: the check runs before quote
// stripping.
var reservedTargets = []string{
	"next",
	"prev",
	"next_on_output",
	"prev_on_output",
	"number",
	"back_and_forth",
	"current",
}

// Manager carries the session state of workspace handling: the tree,
// the configuration, the transport backend, and the previously
// focused workspace name used by back-and-forth switching.
type Manager struct {
	tree *tree.Tree
	cfg  *config.Config
	x    xserver.Backend
	log  *slog.Logger

	// previous is the name of the workspace focused before the
	// current one. Empty until the first completed switch.
	previous string
}

// NewManager wires a manager. The backend must not be nil; tests use
// xserver.NewRecorder().
func NewManager(t *tree.Tree, cfg *config.Config, x xserver.Backend, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{tree: t, cfg: cfg, x: x, log: log}
}

// Tree returns the container tree the manager operates on.
func (m *Manager) Tree() *tree.Tree { return m.tree }

// Previous returns the recorded previous-workspace name, or "".
func (m *Manager) Previous() string { return m.previous }

// ParseNum derives the workspace number from its name: a decimal
// prefix parses into the number, anything else (no digits, negative,
// overflow) falls back to the named-workspace sentinel. Creation
// never fails on a bad number.
func ParseNum(name string) int {
	i := 0
	if i < len(name) && (name[i] == '+' || name[i] == '-') {
		i++
	}
	j := i
	for j < len(name) && name[j] >= '0' && name[j] <= '9' {
		j++
	}
	if j == i {
		return tree.UnnumberedWorkspace
	}
	n, err := strconv.Atoi(name[:j])
	if err != nil || n < 0 {
		return tree.UnnumberedWorkspace
	}
	return n
}

// Get returns the workspace with the given name, creating it if
// necessary. Lookup is case-insensitive across every output. On
// creation the target output follows the assignment table (first
// match wins) and falls back to the output holding the focused
// container; the reported bool tells callers whether a new workspace
// was created.
func (m *Manager) Get(name string) (*tree.Con, bool) {
	if ws := m.find(name); ws != nil {
		return ws, false
	}

	m.log.Info("creating new workspace", "name", name)

	output := m.tree.Focused.Output()
	if assigned := m.cfg.OutputFor(name); assigned != "" {
		for _, candidate := range m.tree.Root.Children() {
			if candidate.Kind == tree.KindOutput && candidate.Name == assigned {
				m.log.Debug("workspace assigned to output", "name", name, "output", assigned)
				output = candidate
				break
			}
		}
	}
	content := output.Content()

	ws := tree.NewCon(tree.KindWorkspace, name)
	ws.Num = ParseNum(name)
	ws.WorkspaceLayout = m.cfg.Layout()
	m.applyDefaultOrientation(ws, output)
	ws.Attach(content, false)
	m.setConName(ws)

	m.tree.Events().WorkspaceChanged(event.WorkspaceEvent{Change: event.ChangeInit, Name: name})
	return ws, true
}

// EnsureOnOutput creates the initial or fallback workspace on an
// output that has none, without an explicit name request. The
// configured workspace-switch bindings are scanned in declaration
// order for the first name that is not a reserved dynamic target, not
// assigned to a different output, and not already in use anywhere.
// When every bound name is taken, the lowest unused positive integer
// becomes the name. This path always succeeds.
func (m *Manager) EnsureOnOutput(output *tree.Con) *tree.Con {
	content := output.Content()

	name := ""
	num := tree.UnnumberedWorkspace
	exists := true

	const prefix = "workspace "
	for _, bind := range m.cfg.Bindings {
		cmd := bind.Command
		if len(cmd) < len(prefix) || !strings.EqualFold(cmd[:len(prefix)-1], "workspace") {
			continue
		}
		target := cmd[len(prefix):]

		if hasReservedPrefix(target) {
			continue
		}

		candidate := strings.TrimPrefix(target, `"`)
		candidate = strings.TrimSuffix(candidate, `"`)
		m.log.Debug("trying bound workspace name", "name", candidate)

		if m.assignedElsewhere(candidate, output.Name) {
			continue
		}

		name = candidate
		exists = m.find(candidate) != nil
		if !exists {
			num = ParseNum(candidate)
			m.log.Debug("using bound name", "name", candidate, "num", num)
			break
		}
	}

	if exists {
		// Every bound name is taken: probe for the lowest unused
		// positive integer, unique across all outputs.
		for c := 1; ; c++ {
			name = strconv.Itoa(c)
			if m.find(name) == nil {
				num = c
				break
			}
		}
	}

	ws := tree.NewCon(tree.KindWorkspace, name)
	ws.Num = num
	ws.WorkspaceLayout = m.cfg.Layout()
	ws.Attach(content, false)
	m.setConName(ws)

	ws.FullscreenMode = tree.FullscreenOutput
	m.applyDefaultOrientation(ws, output)

	m.log.Info("created workspace for output", "name", name, "output", output.Name)
	return ws
}

// UpdateUrgentFlag recomputes the workspace urgency aggregate and
// emits an urgent event only when it changed.
func (m *Manager) UpdateUrgentFlag(ws *tree.Con) {
	m.tree.UpdateUrgentFlag(ws)
}

// find returns the workspace with the given name, case-insensitively,
// across every output's content subtree, or nil.
func (m *Manager) find(name string) *tree.Con {
	for _, output := range m.tree.Root.Children() {
		if output.Kind != tree.KindOutput {
			continue
		}
		for _, ws := range output.Content().Children() {
			if ws.Kind == tree.KindWorkspace && strings.EqualFold(ws.Name, name) {
				return ws
			}
		}
	}
	return nil
}

// assignedElsewhere reports whether name is pinned to an output other
// than outputName by the assignment table.
func (m *Manager) assignedElsewhere(name, outputName string) bool {
	for _, a := range m.cfg.Assignments {
		if a.Name == name && a.Output != outputName {
			return true
		}
	}
	return false
}

func hasReservedPrefix(target string) bool {
	for _, r := range reservedTargets {
		if len(target) >= len(r) && strings.EqualFold(target[:len(r)], r) {
			return true
		}
	}
	return false
}

// applyDefaultOrientation sets the workspace layout from the
// configured default orientation, or from the output's shape when set
// to auto: vertical splits on portrait outputs, horizontal otherwise.
func (m *Manager) applyDefaultOrientation(ws, output *tree.Con) {
	switch m.cfg.Orientation() {
	case tree.Horizontal:
		ws.Layout = tree.LayoutSplitH
	case tree.Vertical:
		ws.Layout = tree.LayoutSplitV
	default:
		if output.Rect.Height > output.Rect.Width {
			ws.Layout = tree.LayoutSplitV
		} else {
			ws.Layout = tree.LayoutSplitH
		}
		m.log.Debug("auto orientation",
			"workspace", ws.Name,
			"output", output.Name,
			"layout", ws.Layout.String())
	}
}

func (m *Manager) setConName(ws *tree.Con) {
	if err := m.x.SetName(ws, fmt.Sprintf("[sapling con] workspace %s", ws.Name)); err != nil {
		m.log.Warn("naming workspace frame", "workspace", ws.Name, "err", err)
	}
}
