package plan

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// Canonicalize returns a canonical JSON representation of the plan's
// structure and schedule. Identity and timestamps are left out so equal
// plans from different runs canonicalize identically.
func Canonicalize(p *Plan) ([]byte, error) {
	tasks := append([]Task(nil), p.Tasks...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Inst < tasks[j].Inst })

	links := append([]domain.CausalLink(nil), p.Links...)
	domain.SortLinks(links)

	orderings := append([]Ordering(nil), p.Orderings...)
	sort.Slice(orderings, func(i, j int) bool {
		a, b := orderings[i], orderings[j]
		if a.Before != b.Before {
			return a.Before < b.Before
		}
		if a.After != b.After {
			return a.After < b.After
		}
		return a.Origin < b.Origin
	})

	conds := append([]GoalCondition(nil), p.Goal.Conditions...)
	sort.Slice(conds, func(i, j int) bool { return conds[i].Cond.Less(conds[j].Cond) })

	return json.Marshal(struct {
		Goal      []GoalCondition     `json:"goal"`
		Tasks     []Task              `json:"tasks"`
		Links     []domain.CausalLink `json:"links"`
		Orderings []Ordering          `json:"orderings"`
	}{conds, tasks, links, orderings})
}

// Hash computes the blake3 hash of a canonicalized plan
func Hash(p *Plan) (string, error) {
	canonical, err := Canonicalize(p)
	if err != nil {
		return "", fmt.Errorf("canonicalize plan: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash plan: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
