package workplan

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
)

// TestPrecedenceIsStrictPartialOrderProperty adds random orderings of both
// origins, undoing some of them, and checks that before/after stay
// mirror images and the relation stays irreflexive and transitive.
func TestPrecedenceIsStrictPartialOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		wp := New(&fakeDomain{}, fakeCatalog{})
		n := rapid.IntRange(2, 7).Draw(t, "instances")
		for i := 0; i < n; i++ {
			wp.addInstance(domain.TaskID(i))
		}
		ids := wp.AllInsts()
		s := command.NewStack()

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if s.Len() > 0 && rapid.IntRange(0, 3).Draw(t, "undo") == 0 {
				if err := s.Undo(s.Current()); err != nil {
					t.Fatalf("undo: %v", err)
				}
				continue
			}
			a := rapid.SampledFrom(ids).Draw(t, "before")
			b := rapid.SampledFrom(ids).Draw(t, "after")
			origin := domain.OrderingOrigin(rapid.IntRange(0, 1).Draw(t, "origin"))
			s.Execute(wp.AddOrderingCommand(origin, "random", []domain.Ordering{{Before: a, After: b}}))
		}

		for _, x := range ids {
			after := wp.AfterOrderings(x)
			if after.Has(x) {
				t.Fatalf("%s is ordered after itself", x)
			}
			for _, y := range ids {
				if after.Has(y) != wp.BeforeOrderings(y).Has(x) {
					t.Fatalf("after(%s) and before(%s) disagree", x, y)
				}
				if !after.Has(y) {
					continue
				}
				for z := range wp.AfterOrderings(y) {
					if !after.Has(z) {
						t.Fatalf("%s < %s < %s but %s not after %s", x, y, z, z, x)
					}
				}
			}
			causal := wp.PrecInsts(x, domain.CausalAfter)
			sched := wp.PrecInsts(x, domain.SchedAfter)
			for y := range causal {
				if !after.Has(y) {
					t.Fatalf("causal successor %s of %s missing from union", y, x)
				}
			}
			for y := range sched {
				if !after.Has(y) {
					t.Fatalf("sched successor %s of %s missing from union", y, x)
				}
			}
		}
	})
}
