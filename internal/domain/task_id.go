package domain

import (
	"fmt"
	"strings"
)

// TaskID identifies an abstract task in the task network.
type TaskID int

// CondID identifies a condition (proposition) in the task network.
type CondID int

// TaskInstID identifies a task instance placed in a working plan.
type TaskInstID int

// CommandID identifies a planning/scheduling command on the command stack.
type CommandID int

// TaskImplID identifies one concrete implementation of a task.
type TaskImplID string

// ResourceID identifies a capacity-bounded resource.
type ResourceID string

// Sentinel ids.
const (
	// NullTaskID is returned by lookups that do not resolve to a task.
	NullTaskID TaskID = -1
	// InitTaskID is the pseudo task of the initial-state instance.
	InitTaskID TaskID = -2
	// GoalTaskID is the pseudo task of the goal instance.
	GoalTaskID TaskID = -3

	// NullCondID is returned by lookups that do not resolve to a condition.
	NullCondID CondID = -1

	// NullTaskInstID marks "no instance".
	NullTaskInstID TaskInstID = 0
	// InitInstID produces every condition that currently holds.
	InitInstID TaskInstID = -1
	// GoalInstID consumes every goal condition.
	GoalInstID TaskInstID = -2

	// NullCommandID marks "no command".
	NullCommandID CommandID = 0

	// NullTaskImplID marks an instance that is not yet bound to an implementation.
	NullTaskImplID TaskImplID = ""
)

// IsSpecial reports whether the instance is one of the pseudo instances
// (initial state or goal) that never appear in the instance arena.
func (id TaskInstID) IsSpecial() bool {
	return id == InitInstID || id == GoalInstID
}

// Valid reports whether the id can name a real task instance.
func (id TaskInstID) Valid() bool {
	return id > 0
}

// String returns the string representation
func (id TaskInstID) String() string {
	switch id {
	case InitInstID:
		return "init"
	case GoalInstID:
		return "goal"
	case NullTaskInstID:
		return "null"
	default:
		return fmt.Sprintf("inst-%d", int(id))
	}
}

// String returns the string representation
func (id TaskID) String() string {
	switch id {
	case InitTaskID:
		return "init"
	case GoalTaskID:
		return "goal"
	case NullTaskID:
		return "null"
	default:
		return fmt.Sprintf("task-%d", int(id))
	}
}

// String returns the string representation
func (id CondID) String() string {
	if id == NullCondID {
		return "null"
	}
	return fmt.Sprintf("cond-%d", int(id))
}

// Validate checks that an implementation id is usable as a map key and label.
func (id TaskImplID) Validate() error {
	s := string(id)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("implementation ID cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return fmt.Errorf("implementation ID %q cannot contain whitespace", s)
	}
	return nil
}

// Validate checks that a resource id is usable as a map key and label.
func (id ResourceID) Validate() error {
	s := string(id)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("resource ID cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return fmt.Errorf("resource ID %q cannot contain whitespace", s)
	}
	return nil
}
