package transition

import (
	"fmt"
	"slices"

	"github.com/alecgard/enclave/internal/apiclient"
)

const (
	MsgSelectStatus = "Please select a status."
	MsgBackwards    = "Cannot move status backwards. Status can only progress forward."
)

// Machine is a finite status set with either a forward-only order or an
// explicit edge table.
type Machine struct {
	Name   string
	States []string
	edges  map[string][]string
}

// Ordered builds a forward-only machine: a target is allowed when its index
// is at or after the current state's index.
func Ordered(name string, states ...string) *Machine {
	return &Machine{Name: name, States: states}
}

// Explicit builds a machine from an edge table. States absent from edges
// have no outgoing transitions.
func Explicit(name string, edges map[string][]string, states ...string) *Machine {
	return &Machine{Name: name, States: states, edges: edges}
}

// Valid reports whether s is one of the machine's states.
func (m *Machine) Valid(s string) bool {
	return slices.Contains(m.States, s)
}

func (m *Machine) index(s string) int {
	return slices.Index(m.States, s)
}

// Allowed returns the targets reachable from current, current included when
// permitted.
func (m *Machine) Allowed(current string) []string {
	if m.edges != nil {
		return slices.Clone(m.edges[current])
	}
	i := m.index(current)
	if i < 0 {
		return slices.Clone(m.States)
	}
	return slices.Clone(m.States[i:])
}

// Check validates current -> target.
func (m *Machine) Check(current, target string) error {
	if target == "" {
		return apiclient.Validation("status", MsgSelectStatus)
	}
	if !m.Valid(target) {
		return apiclient.Validation("status", fmt.Sprintf("Unknown %s status %q.", m.Name, target))
	}
	if m.edges != nil {
		if !slices.Contains(m.edges[current], target) {
			return apiclient.Validation("status", fmt.Sprintf("Cannot change %s status from %s to %s.", m.Name, current, target))
		}
		return nil
	}
	if cur := m.index(current); cur >= 0 && m.index(target) < cur {
		return apiclient.Validation("status", MsgBackwards)
	}
	return nil
}
