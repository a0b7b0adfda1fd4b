// Package sanet is the spreading-activation task network: tasks, conditions,
// the precondition and effect links between them, and the expected-utility
// estimates that goal utility spreads backwards through those links.
package sanet

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// DefaultDiscount scales utility each time it crosses a task.
const DefaultDiscount = 0.9

type condNode struct {
	name string
	kind domain.CondKind
	prob domain.Probability
	util domain.Utility
}

type precondLink struct {
	cond domain.Condition
	port domain.Port
}

type effectLink struct {
	weight domain.LinkWeight
	port   domain.Port
}

type taskNode struct {
	name     string
	preconds []precondLink
	effects  map[domain.CondID]effectLink
	eu       domain.Utility
}

// Network is the task network. It is not safe for concurrent use.
type Network struct {
	conds    map[domain.CondID]*condNode
	tasks    map[domain.TaskID]*taskNode
	goals    domain.GoalMap
	discount float64
	steps    int
}

// New creates an empty network.
func New() *Network {
	return &Network{
		conds:    make(map[domain.CondID]*condNode),
		tasks:    make(map[domain.TaskID]*taskNode),
		goals:    make(domain.GoalMap),
		discount: DefaultDiscount,
	}
}

// SetDiscount sets the per-task utility discount in (0, 1].
func (n *Network) SetDiscount(d float64) {
	if d > 0 && d <= 1 {
		n.discount = d
	}
}

// AddCond declares a condition with its current probability of being true.
func (n *Network) AddCond(id domain.CondID, name string, kind domain.CondKind, prob domain.Probability) error {
	if id < 0 {
		return fmt.Errorf("condition id %d must not be negative", id)
	}
	if _, dup := n.conds[id]; dup {
		return fmt.Errorf("duplicate condition %s", id)
	}
	if prob < 0 || prob > 1 {
		return fmt.Errorf("condition %s: probability %g outside [0, 1]", id, prob)
	}
	n.conds[id] = &condNode{name: name, kind: kind, prob: prob}
	return nil
}

// AddTask declares a task.
func (n *Network) AddTask(id domain.TaskID, name string) error {
	if id < 0 {
		return fmt.Errorf("task id %d must not be negative", id)
	}
	if _, dup := n.tasks[id]; dup {
		return fmt.Errorf("duplicate task %s", id)
	}
	n.tasks[id] = &taskNode{name: name, effects: make(map[domain.CondID]effectLink)}
	return nil
}

// AddPrecondLink requires cond before task can run.
func (n *Network) AddPrecondLink(task domain.TaskID, cond domain.Condition, port domain.Port) error {
	t, ok := n.tasks[task]
	if !ok {
		return fmt.Errorf("unknown task %s", task)
	}
	if _, ok := n.conds[cond.ID]; !ok {
		return fmt.Errorf("task %s: unknown precondition %s", task, cond.ID)
	}
	for _, p := range t.preconds {
		if p.cond.ID == cond.ID {
			return fmt.Errorf("task %s: duplicate precondition %s", task, cond.ID)
		}
	}
	t.preconds = append(t.preconds, precondLink{cond: cond, port: port})
	sort.Slice(t.preconds, func(i, j int) bool { return t.preconds[i].cond.Less(t.preconds[j].cond) })
	return nil
}

// AddEffectLink records that task sets cond. A positive weight is the
// probability of making cond true, a negative weight of making it false.
func (n *Network) AddEffectLink(task domain.TaskID, cond domain.CondID, weight domain.LinkWeight, port domain.Port) error {
	t, ok := n.tasks[task]
	if !ok {
		return fmt.Errorf("unknown task %s", task)
	}
	if _, ok := n.conds[cond]; !ok {
		return fmt.Errorf("task %s: unknown effect %s", task, cond)
	}
	if weight < -1 || weight > 1 || weight == 0 {
		return fmt.Errorf("task %s: effect weight %g on %s must be in [-1, 0) or (0, 1]", task, weight, cond)
	}
	t.effects[cond] = effectLink{weight: weight, port: port}
	return nil
}

// UpdateEffect changes the weight of task's effect on cond. A zero weight
// removes the effect. Unknown tasks or conditions are ignored.
func (n *Network) UpdateEffect(task domain.TaskID, cond domain.CondID, weight domain.LinkWeight) {
	t, ok := n.tasks[task]
	if !ok {
		return
	}
	if _, ok := n.conds[cond]; !ok {
		return
	}
	if weight == 0 {
		delete(t.effects, cond)
		return
	}
	if weight > 1 {
		weight = 1
	} else if weight < -1 {
		weight = -1
	}
	e := t.effects[cond]
	e.weight = weight
	t.effects[cond] = e
}

// SetGoals replaces the goal utilities and resets activation.
func (n *Network) SetGoals(goals domain.GoalMap) {
	n.goals = make(domain.GoalMap, len(goals))
	for c, u := range goals {
		n.goals[c] = u
	}
	n.Reset()
}

// Reset clears all activation.
func (n *Network) Reset() {
	for _, c := range n.conds {
		c.util = 0
	}
	for _, t := range n.tasks {
		t.eu = 0
	}
	n.steps = 0
}

// Steps returns how many activation steps ran since the last reset.
func (n *Network) Steps() int { return n.steps }

// Step runs k rounds of spreading activation. Each round first recomputes
// condition utilities from goal utility and from the expected utility of the
// tasks that need them, then recomputes task expected utilities from the
// conditions they affect.
func (n *Network) Step(k int) {
	condIDs := n.Conds()
	taskIDs := n.Tasks()

	for ; k > 0; k-- {
		util := make(map[domain.CondID]domain.Utility, len(condIDs))
		for c, u := range n.goals {
			util[c.ID] += sign(c.Value) * u
		}
		for _, id := range taskIDs {
			t := n.tasks[id]
			if t.eu <= 0 || len(t.preconds) == 0 {
				continue
			}
			share := n.discount * t.eu / float64(len(t.preconds))
			for _, p := range t.preconds {
				missing := 1 - domain.ProbOf(n.conds[p.cond.ID].prob, p.cond.Value)
				util[p.cond.ID] += sign(p.cond.Value) * share * missing
			}
		}
		for _, id := range condIDs {
			n.conds[id].util = util[id]
		}

		for _, id := range taskIDs {
			t := n.tasks[id]
			var eu domain.Utility
			for cid, e := range t.effects {
				eu += e.weight * n.conds[cid].util
			}
			t.eu = eu
		}
		n.steps++
	}
}

func sign(v bool) float64 {
	if v {
		return 1
	}
	return -1
}

// Query returns the expected utility of task, or zero when unknown.
func (n *Network) Query(task domain.TaskID) domain.Utility {
	if t, ok := n.tasks[task]; ok {
		return t.eu
	}
	return 0
}

// TaskEUs returns the expected utility of every task.
func (n *Network) TaskEUs() domain.TaskEUMap {
	out := make(domain.TaskEUMap, len(n.tasks))
	for id, t := range n.tasks {
		out[id] = t.eu
	}
	return out
}

// CondUtil returns the utility spread onto cond.
func (n *Network) CondUtil(cond domain.CondID) domain.Utility {
	if c, ok := n.conds[cond]; ok {
		return c.util
	}
	return 0
}

// Tasks returns all task ids in order.
func (n *Network) Tasks() []domain.TaskID {
	out := make([]domain.TaskID, 0, len(n.tasks))
	for id := range n.tasks {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Conds returns all condition ids in order.
func (n *Network) Conds() []domain.CondID {
	out := make([]domain.CondID, 0, len(n.conds))
	for id := range n.conds {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TaskName returns the task's name, or "" when unknown.
func (n *Network) TaskName(task domain.TaskID) string {
	if t, ok := n.tasks[task]; ok {
		return t.name
	}
	return ""
}

// CondName returns the condition's name, or "" when unknown.
func (n *Network) CondName(cond domain.CondID) string {
	if c, ok := n.conds[cond]; ok {
		return c.name
	}
	return ""
}

// CondKind returns the condition's kind, or CondUnknown.
func (n *Network) CondKind(cond domain.CondID) domain.CondKind {
	if c, ok := n.conds[cond]; ok {
		return c.kind
	}
	return domain.CondUnknown
}

// CondVal returns the probability that cond currently holds, or 0.
func (n *Network) CondVal(cond domain.CondID) domain.Probability {
	if c, ok := n.conds[cond]; ok {
		return c.prob
	}
	return 0
}

// SetCondVal sets the probability that cond currently holds, clamped to
// [0, 1]. Unknown conditions are ignored.
func (n *Network) SetCondVal(cond domain.CondID, prob domain.Probability) {
	c, ok := n.conds[cond]
	if !ok {
		return
	}
	switch {
	case prob < 0:
		prob = 0
	case prob > 1:
		prob = 1
	}
	c.prob = prob
}

// Preconds returns the preconditions of task in order.
func (n *Network) Preconds(task domain.TaskID) []domain.Condition {
	t, ok := n.tasks[task]
	if !ok {
		return nil
	}
	out := make([]domain.Condition, len(t.preconds))
	for i, p := range t.preconds {
		out[i] = p.cond
	}
	return out
}

// Effects returns the conditions task produces with their probability.
func (n *Network) Effects(task domain.TaskID) domain.CondSet {
	t, ok := n.tasks[task]
	if !ok {
		return domain.CondSet{}
	}
	out := make(domain.CondSet, len(t.effects))
	for cid, e := range t.effects {
		v := e.weight > 0
		out[domain.Condition{ID: cid, Value: v}] = domain.WeightProb(e.weight, v)
	}
	return out
}

// EffectProb returns the signed weight of task's effect on cond, or 0.
func (n *Network) EffectProb(task domain.TaskID, cond domain.CondID) domain.LinkWeight {
	if t, ok := n.tasks[task]; ok {
		return t.effects[cond].weight
	}
	return 0
}

// SatisfyingTasks returns the tasks with an effect producing cond, in order.
func (n *Network) SatisfyingTasks(cond domain.Condition) []domain.TaskID {
	var out []domain.TaskID
	for _, id := range n.Tasks() {
		if domain.WeightProb(n.tasks[id].effects[cond.ID].weight, cond.Value) > 0 {
			out = append(out, id)
		}
	}
	return out
}

// ClinkPorts returns the ports a causal link producer -cond-> consumer
// attaches to. Pseudo tasks have no ports.
func (n *Network) ClinkPorts(producer domain.TaskID, cond domain.CondID, consumer domain.TaskID) domain.LinkPorts {
	var lp domain.LinkPorts
	if t, ok := n.tasks[producer]; ok {
		lp.Producer = t.effects[cond].port
	}
	if t, ok := n.tasks[consumer]; ok {
		for _, p := range t.preconds {
			if p.cond.ID == cond {
				lp.Consumer = p.port
				break
			}
		}
	}
	return lp
}
