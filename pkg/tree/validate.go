package tree

import (
	"fmt"
	"math"
	"strings"
)

// ValidationSeverity indicates whether a finding is a broken
// invariant or merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken structural invariant
	SeverityWarning                           // advisory
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Con      *Con // which container has the problem (nil if tree-level)
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Con == nil {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] con %q (%s): %s", e.Severity, e.Con.Name, e.Con.Kind, e.Message)
}

// Validate runs every structural check on the tree and returns the
// findings. An empty result means all invariants hold. Read-only;
// never mutates the tree. Validation exists for tests and debugging:
// operations are expected to keep these invariants synchronously, and
// a finding here means a core bug, not a runtime condition to repair.
func Validate(t *Tree) []ValidationError {
	errs := validateAcyclic(t)
	if len(errs) > 0 {
		// The remaining checks walk the tree and assume it is finite.
		return errs
	}
	errs = append(errs, validateLists(t)...)
	errs = append(errs, validateFullscreen(t)...)
	errs = append(errs, validateWorkspaces(t)...)
	errs = append(errs, validatePercent(t)...)
	return errs
}

// validateAcyclic checks for cycles with DFS 3-color marking: white
// unvisited, gray on the current path, black done. A gray node seen
// again is a cycle.
func validateAcyclic(t *Tree) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Con]int)
	var errs []ValidationError

	var visit func(c *Con) bool
	visit = func(c *Con) bool {
		switch color[c] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Con:      c,
				Message:  "cycle detected: container is its own descendant",
				Severity: SeverityError,
			})
			return true
		}
		color[c] = gray
		for _, child := range c.children {
			if visit(child) {
				return true
			}
		}
		for _, child := range c.floating {
			if visit(child) {
				return true
			}
		}
		color[c] = black
		return false
	}

	visit(t.Root)
	return errs
}

// validateLists checks that every container appears exactly once in
// its parent's structural (or floating) list and exactly once in the
// focus order, that parent back-references match, and that the focus
// order covers exactly the structural plus floating children.
func validateLists(t *Tree) []ValidationError {
	var errs []ValidationError

	var walk func(c *Con)
	walk = func(c *Con) {
		members := make(map[*Con]int)
		for _, child := range c.children {
			members[child]++
			if child.Kind == KindFloating {
				errs = append(errs, ValidationError{
					Con: child, Severity: SeverityError,
					Message: "floating container in structural child list",
				})
			}
		}
		for _, child := range c.floating {
			members[child]++
		}
		for child, n := range members {
			if n != 1 {
				errs = append(errs, ValidationError{
					Con: child, Severity: SeverityError,
					Message: fmt.Sprintf("appears %d times in parent's child lists", n),
				})
			}
			if child.parent != c {
				errs = append(errs, ValidationError{
					Con: child, Severity: SeverityError,
					Message: "parent back-reference does not match the owning list",
				})
			}
		}

		focus := make(map[*Con]int)
		for _, child := range c.focusList {
			focus[child]++
		}
		for child, n := range focus {
			if n != 1 {
				errs = append(errs, ValidationError{
					Con: child, Severity: SeverityError,
					Message: fmt.Sprintf("appears %d times in parent's focus order", n),
				})
			}
			if members[child] == 0 {
				errs = append(errs, ValidationError{
					Con: child, Severity: SeverityError,
					Message: "in focus order but not a child",
				})
			}
		}
		for child := range members {
			if focus[child] == 0 {
				errs = append(errs, ValidationError{
					Con: child, Severity: SeverityError,
					Message: "child missing from parent's focus order",
				})
			}
		}

		if len(c.floating) > 0 && c.Kind != KindWorkspace {
			errs = append(errs, ValidationError{
				Con: c, Severity: SeverityError,
				Message: "only workspaces may carry floating children",
			})
		}

		for _, child := range c.children {
			walk(child)
		}
		for _, child := range c.floating {
			walk(child)
		}
	}

	if t.Root.parent != nil {
		errs = append(errs, ValidationError{
			Con: t.Root, Severity: SeverityError,
			Message: "root has a parent",
		})
	}
	walk(t.Root)
	return errs
}

// validateFullscreen checks that at most one workspace per output
// holds the per-output fullscreen slot.
func validateFullscreen(t *Tree) []ValidationError {
	var errs []ValidationError
	for _, output := range t.Root.children {
		if output.Kind != KindOutput {
			continue
		}
		visible := 0
		for _, child := range output.Content().children {
			if child.FullscreenMode == FullscreenOutput {
				visible++
			}
		}
		if visible > 1 {
			errs = append(errs, ValidationError{
				Con: output, Severity: SeverityError,
				Message: fmt.Sprintf("%d workspaces visible at once on this output", visible),
			})
		}
	}
	return errs
}

// validateWorkspaces checks the forest-wide uniqueness of workspace
// names (case-insensitive) and the Num sentinel contract.
func validateWorkspaces(t *Tree) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]*Con)

	var walk func(c *Con)
	walk = func(c *Con) {
		if c.Kind == KindWorkspace {
			key := strings.ToLower(c.Name)
			if prev, ok := seen[key]; ok && prev != c {
				errs = append(errs, ValidationError{
					Con: c, Severity: SeverityError,
					Message: fmt.Sprintf("workspace name collides with %q", prev.Name),
				})
			}
			seen[key] = c
			if c.Num < UnnumberedWorkspace {
				errs = append(errs, ValidationError{
					Con: c, Severity: SeverityError,
					Message: fmt.Sprintf("workspace number %d below the named sentinel", c.Num),
				})
			}
		}
		for _, child := range c.children {
			walk(child)
		}
		for _, child := range c.floating {
			walk(child)
		}
	}

	walk(t.Root)
	return errs
}

// validatePercent checks the sum-to-one contract for size shares.
// Containers whose children all have zero shares are mid-mutation and
// only warned about.
func validatePercent(t *Tree) []ValidationError {
	var errs []ValidationError

	var walk func(c *Con)
	walk = func(c *Con) {
		if len(c.children) > 0 && (c.Kind == KindCon || c.Kind == KindWorkspace) {
			sum := 0.0
			set := 0
			for _, child := range c.children {
				sum += child.Percent
				if child.Percent > 0.0 {
					set++
				}
			}
			if set > 0 && math.Abs(sum-1.0) > 1e-9 {
				errs = append(errs, ValidationError{
					Con: c, Severity: SeverityError,
					Message: fmt.Sprintf("child size shares sum to %g, want 1", sum),
				})
			} else if set == 0 {
				errs = append(errs, ValidationError{
					Con: c, Severity: SeverityWarning,
					Message: "no child size shares assigned yet",
				})
			}
		}
		for _, child := range c.children {
			walk(child)
		}
		for _, child := range c.floating {
			walk(child)
		}
	}

	walk(t.Root)
	return errs
}
