package domain

import "fmt"

// Probability is a probability in [0, 1].
type Probability = float64

// Utility is a (possibly negative) utility value.
type Utility = float64

// LinkWeight is the signed strength of a task→condition effect link.
// Positive weights make the condition true with that probability,
// negative weights make it false with probability -weight.
type LinkWeight = float64

// CondKind classifies the role a condition plays in the task network.
type CondKind int

const (
	// CondUnknown is returned for conditions that do not exist.
	CondUnknown CondKind = iota
	// CondPrecondition conditions are consumed by tasks.
	CondPrecondition
	// CondEffect conditions are produced by tasks.
	CondEffect
	// CondGoal conditions carry goal utility.
	CondGoal
)

// String returns the string representation
func (k CondKind) String() string {
	switch k {
	case CondPrecondition:
		return "precondition"
	case CondEffect:
		return "effect"
	case CondGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// ParseCondKind parses a string into a CondKind.
func ParseCondKind(s string) (CondKind, error) {
	switch s {
	case "precondition", "precond", "":
		return CondPrecondition, nil
	case "effect":
		return CondEffect, nil
	case "goal":
		return CondGoal, nil
	default:
		return CondUnknown, fmt.Errorf("invalid condition kind %q: must be precondition, effect, or goal", s)
	}
}

// MarshalText encodes the kind by name.
func (k CondKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *CondKind) UnmarshalText(b []byte) error {
	parsed, err := ParseCondKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Condition is a proposition together with the truth value that is
// required (precondition) or produced (effect).
type Condition struct {
	ID    CondID `json:"id" yaml:"id"`
	Value bool   `json:"value" yaml:"value"`
}

// String returns the string representation
func (c Condition) String() string {
	if c.Value {
		return c.ID.String()
	}
	return "!" + c.ID.String()
}

// Less orders conditions by id, false before true.
func (c Condition) Less(o Condition) bool {
	if c.ID != o.ID {
		return c.ID < o.ID
	}
	return !c.Value && o.Value
}

// CondSet maps conditions to the probability attached to them
// (required probability for preconditions, produced probability for effects).
type CondSet map[Condition]Probability

// Sorted returns the conditions of the set in deterministic order.
func (s CondSet) Sorted() []Condition {
	out := make([]Condition, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	SortConditions(out)
	return out
}

// ProbOf returns the probability that a condition with truth probability
// trueProb has the requested value.
func ProbOf(trueProb Probability, value bool) Probability {
	if value {
		return trueProb
	}
	return 1 - trueProb
}

// WeightProb returns the probability that an effect link of weight w
// makes a condition take value. Positive weights produce true, negative
// weights produce false.
func WeightProb(w LinkWeight, value bool) Probability {
	if value {
		if w > 0 {
			return w
		}
		return 0
	}
	if w < 0 {
		return -w
	}
	return 0
}

// WeightFor converts an effect on cond with probability p into a link weight.
func WeightFor(c Condition, p Probability) LinkWeight {
	if c.Value {
		return p
	}
	return -p
}

// Port is a typed attachment point of a condition on a task.
type Port struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// LinkPorts holds the ports on both ends of a causal link.
type LinkPorts struct {
	Producer Port `json:"producer" yaml:"producer"`
	Consumer Port `json:"consumer" yaml:"consumer"`
}

// Compatible reports whether data can flow from the producer port to the
// consumer port. Untyped ports are compatible with anything.
func (lp LinkPorts) Compatible() bool {
	if lp.Producer.Type == "" || lp.Consumer.Type == "" {
		return true
	}
	return lp.Producer.Type == lp.Consumer.Type
}
