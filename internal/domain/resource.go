package domain

import (
	"fmt"
	"sort"
)

// ResourceValue is a quantity of a resource.
type ResourceValue = int64

// ResourceMap maps resources to quantities.
type ResourceMap map[ResourceID]ResourceValue

// Sorted returns the resource ids in ascending order.
func (m ResourceMap) Sorted() []ResourceID {
	out := make([]ResourceID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Conflict reports that concurrently active instances use more of a
// resource than its capacity at instant At.
type Conflict struct {
	Resource ResourceID    `json:"resource" yaml:"resource"`
	At       TimeValue     `json:"at" yaml:"at"`
	Insts    []TaskInstID  `json:"insts" yaml:"insts"`
	Usage    ResourceValue `json:"usage" yaml:"usage"`
	Capacity ResourceValue `json:"capacity" yaml:"capacity"`
}

// String returns the string representation
func (c Conflict) String() string {
	return fmt.Sprintf("%s at t=%d: usage %d > capacity %d by %v", c.Resource, c.At, c.Usage, c.Capacity, c.Insts)
}
