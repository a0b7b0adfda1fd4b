package sanet

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// Print writes a text dump of the network. verbose adds links and ports.
func (n *Network) Print(w io.Writer, verbose bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "network: %d tasks, %d conditions, %d steps\n", len(n.tasks), len(n.conds), n.steps)

	b.WriteString("conditions:\n")
	for _, id := range n.Conds() {
		c := n.conds[id]
		fmt.Fprintf(&b, "  %s %q kind=%s p=%.3f util=%.3f\n", id, c.name, c.kind, c.prob, c.util)
	}

	b.WriteString("tasks:\n")
	for _, id := range n.Tasks() {
		t := n.tasks[id]
		fmt.Fprintf(&b, "  %s %q eu=%.3f\n", id, t.name, t.eu)
		if !verbose {
			continue
		}
		for _, p := range t.preconds {
			fmt.Fprintf(&b, "    pre  %s%s\n", p.cond, portSuffix(p.port))
		}
		for _, cid := range effectIDs(t) {
			e := t.effects[cid]
			fmt.Fprintf(&b, "    eff  %s w=%+.3f%s\n", cid, e.weight, portSuffix(e.port))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Graphviz writes the network in DOT format. When graphmap is not nil it is
// filled with node and edge ids mapped to their labels.
func (n *Network) Graphviz(w io.Writer, graphmap map[string]string) error {
	label := func(id, l string) {
		if graphmap != nil {
			graphmap[id] = l
		}
	}

	var b strings.Builder
	b.WriteString("digraph sanet {\n  rankdir=LR;\n")
	for _, id := range n.Conds() {
		c := n.conds[id]
		node := condNodeID(id)
		l := fmt.Sprintf("%s\\np=%.2f", nameOr(c.name, id.String()), c.prob)
		label(node, l)
		fmt.Fprintf(&b, "  %s [shape=ellipse label=%q];\n", node, l)
	}
	for _, id := range n.Tasks() {
		t := n.tasks[id]
		node := taskNodeID(id)
		l := fmt.Sprintf("%s\\neu=%.2f", nameOr(t.name, id.String()), t.eu)
		label(node, l)
		fmt.Fprintf(&b, "  %s [shape=box label=%q];\n", node, l)
	}
	for _, id := range n.Tasks() {
		t := n.tasks[id]
		for _, p := range t.preconds {
			edge := condNodeID(p.cond.ID) + "->" + taskNodeID(id)
			l := fmt.Sprintf("%t", p.cond.Value)
			label(edge, l)
			fmt.Fprintf(&b, "  %s -> %s [label=%q style=dashed];\n", condNodeID(p.cond.ID), taskNodeID(id), l)
		}
		for _, cid := range effectIDs(t) {
			edge := taskNodeID(id) + "->" + condNodeID(cid)
			l := fmt.Sprintf("%+.2f", t.effects[cid].weight)
			label(edge, l)
			fmt.Fprintf(&b, "  %s -> %s [label=%q];\n", taskNodeID(id), condNodeID(cid), l)
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func effectIDs(t *taskNode) []domain.CondID {
	ids := make([]domain.CondID, 0, len(t.effects))
	for cid := range t.effects {
		ids = append(ids, cid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func portSuffix(p domain.Port) string {
	if p.Name == "" && p.Type == "" {
		return ""
	}
	return fmt.Sprintf(" port=%s:%s", p.Name, p.Type)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func condNodeID(id domain.CondID) string { return fmt.Sprintf("c%d", int(id)) }
func taskNodeID(id domain.TaskID) string { return fmt.Sprintf("t%d", int(id)) }
