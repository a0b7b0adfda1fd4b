package domain

import "fmt"

// TimeValue is a point in (or length of) discrete plan time.
type TimeValue = int64

// NullTime marks an unset time bound.
const NullTime TimeValue = -1

// TimeWindow bounds a start or end time: Earliest <= t <= Latest.
type TimeWindow struct {
	Earliest TimeValue `json:"earliest" yaml:"earliest"`
	Latest   TimeValue `json:"latest" yaml:"latest"`
}

// NullWindow is returned for instances without temporal information.
var NullWindow = TimeWindow{Earliest: NullTime, Latest: NullTime}

// Empty reports whether no time satisfies the window.
func (w TimeWindow) Empty() bool {
	return w.Earliest > w.Latest
}

// Intersect returns the tightest window satisfying both bounds.
func (w TimeWindow) Intersect(o TimeWindow) TimeWindow {
	out := w
	if o.Earliest > out.Earliest {
		out.Earliest = o.Earliest
	}
	if o.Latest < out.Latest {
		out.Latest = o.Latest
	}
	return out
}

// Within reports whether w is contained in o.
func (w TimeWindow) Within(o TimeWindow) bool {
	return w.Earliest >= o.Earliest && w.Latest <= o.Latest
}

// String returns the string representation
func (w TimeWindow) String() string {
	return fmt.Sprintf("[%d, %d]", w.Earliest, w.Latest)
}
