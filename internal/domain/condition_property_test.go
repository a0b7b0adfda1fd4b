package domain

import (
	"testing"

	"pgregory.net/rapid"
)

func genCondition() *rapid.Generator[Condition] {
	return rapid.Custom(func(t *rapid.T) Condition {
		return Condition{
			ID:    CondID(rapid.IntRange(1, 50).Draw(t, "id")),
			Value: rapid.Bool().Draw(t, "value"),
		}
	})
}

// TestCondition_LessIsStrictOrder checks irreflexivity and asymmetry of Less.
func TestCondition_LessIsStrictOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genCondition().Draw(t, "a")
		b := genCondition().Draw(t, "b")

		if a.Less(a) {
			t.Fatalf("%v < %v should be false", a, a)
		}
		if a.Less(b) && b.Less(a) {
			t.Fatalf("%v and %v are both less than each other", a, b)
		}
		if a != b && !a.Less(b) && !b.Less(a) {
			t.Fatalf("distinct %v and %v are incomparable", a, b)
		}
	})
}

// TestProbOf_Complementary checks that both truth values share the probability mass.
func TestProbOf_Complementary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.Float64Range(0, 1).Draw(t, "p")
		sum := ProbOf(p, true) + ProbOf(p, false)
		if sum < 0.999999 || sum > 1.000001 {
			t.Fatalf("ProbOf(true)+ProbOf(false) = %v, want 1", sum)
		}
	})
}

// TestTimeWindow_IntersectShrinks checks that intersection never widens a window.
func TestTimeWindow_IntersectShrinks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := TimeWindow{
			Earliest: rapid.Int64Range(0, 100).Draw(t, "a.e"),
			Latest:   rapid.Int64Range(0, 100).Draw(t, "a.l"),
		}
		b := TimeWindow{
			Earliest: rapid.Int64Range(0, 100).Draw(t, "b.e"),
			Latest:   rapid.Int64Range(0, 100).Draw(t, "b.l"),
		}
		got := a.Intersect(b)
		if got.Earliest < a.Earliest || got.Latest > a.Latest {
			t.Fatalf("%v ∩ %v = %v widens %v", a, b, got, a)
		}
	})
}
