package ux

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")),
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Title: s, Header: s, Key: s, Value: s, Muted: s, Success: s, Warning: s}
}

// RenderPlan renders p as a human-readable report.
func RenderPlan(p *plan.Plan, st Styles) string {
	var b strings.Builder

	b.WriteString(st.Title.Render(fmt.Sprintf("Plan for goal %s", goalLabel(p.Goal))))
	b.WriteString("\n")
	kv(&b, st, "id", p.ID)
	kv(&b, st, "expected utility", fmt.Sprintf("%.4f", p.EU))
	kv(&b, st, "makespan", fmt.Sprintf("%d", p.Makespan()))
	if p.Goal.Deadline != domain.NullTime {
		kv(&b, st, "deadline", fmt.Sprintf("%d", p.Goal.Deadline))
	}
	if p.Goal.StartWindow != domain.NullWindow {
		kv(&b, st, "start window", p.Goal.StartWindow.String())
	}

	if p.Empty() {
		b.WriteString("\n")
		b.WriteString(st.Success.Render("Goal already holds; nothing to do."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(st.Header.Render("Tasks"))
	b.WriteString("\n")
	tasks := append([]plan.Task(nil), p.Tasks...)
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Start.Earliest != tasks[j].Start.Earliest {
			return tasks[i].Start.Earliest < tasks[j].Start.Earliest
		}
		return tasks[i].Inst < tasks[j].Inst
	})
	rows := [][]string{{"INST", "TASK", "IMPL", "START", "END", "RESOURCES"}}
	for _, t := range tasks {
		rows = append(rows, []string{
			t.Inst.String(),
			orDash(t.Name),
			orDash(string(t.Impl)),
			t.Start.String(),
			t.End.String(),
			orDash(resources(t.Resources)),
		})
	}
	table(&b, st, rows)

	if len(p.Links) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Header.Render("Causal links"))
		b.WriteString("\n")
		links := append([]domain.CausalLink(nil), p.Links...)
		domain.SortLinks(links)
		for _, l := range links {
			b.WriteString("  ")
			b.WriteString(st.Value.Render(l.String()))
			b.WriteString("\n")
		}
	}

	if len(p.Orderings) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Header.Render("Orderings"))
		b.WriteString("\n")
		for _, o := range p.Orderings {
			fmt.Fprintf(&b, "  %s %s\n",
				st.Value.Render(fmt.Sprintf("%s < %s", o.Before, o.After)),
				st.Muted.Render("("+o.Origin.String()+")"))
		}
	}
	return b.String()
}

// RenderNoPlan renders the outcome of an exhausted search.
func RenderNoPlan(goal domain.Goal, st Styles) string {
	return st.Warning.Render(fmt.Sprintf("No plan found for goal %s", goal.ID)) + "\n"
}

func kv(b *strings.Builder, st Styles, key, value string) {
	fmt.Fprintf(b, "  %s %s\n", st.Key.Render(key+":"), st.Value.Render(value))
}

// table writes rows with padded columns; the first row is the header.
func table(b *strings.Builder, st Styles, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for n, r := range rows {
		cells := make([]string, len(r))
		for i, cell := range r {
			padded := cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if n == 0 {
				cells[i] = st.Muted.Render(padded)
			} else {
				cells[i] = st.Value.Render(padded)
			}
		}
		b.WriteString("  ")
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}
}

func resources(m domain.ResourceMap) string {
	parts := make([]string, 0, len(m))
	for _, res := range m.Sorted() {
		parts = append(parts, fmt.Sprintf("%s=%d", res, m[res]))
	}
	return strings.Join(parts, ",")
}

func goalLabel(g plan.Goal) string {
	if g.Name != "" {
		return fmt.Sprintf("%s (%s)", g.ID, g.Name)
	}
	return g.ID
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
