package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/felixgeelhaar/plansched/internal/plan"
)

// PlanDiff is the line diff between two successive plans.
type PlanDiff struct {
	FromID     string
	ToID       string
	Unified    string
	Insertions int
	Deletions  int
}

// Empty reports whether the plans render identically.
func (d PlanDiff) Empty() bool {
	return d.Insertions == 0 && d.Deletions == 0
}

// DiffAdapter writes a unified diff between each committed plan and the
// one before it. The first plan is diffed against nothing.
type DiffAdapter struct {
	out  io.Writer
	dmp  *diffmatchpatch.DiffMatchPatch
	prev *plan.Plan
	last PlanDiff
}

// NewDiffAdapter creates a DiffAdapter writing to out.
func NewDiffAdapter(out io.Writer) *DiffAdapter {
	return &DiffAdapter{out: out, dmp: diffmatchpatch.New()}
}

// Name implements the adapter label.
func (a *DiffAdapter) Name() string { return "diff" }

// Last returns the diff computed by the most recent notification.
func (a *DiffAdapter) Last() PlanDiff { return a.last }

// PlanChanged diffs p against the previous plan and writes the result.
// Identical plans produce no output.
func (a *DiffAdapter) PlanChanged(_ context.Context, p plan.Plan) error {
	var oldText, fromID string
	if a.prev != nil {
		oldText = Summary(a.prev)
		fromID = a.prev.ID
	}
	d := a.Diff(fromID, p.ID, oldText, Summary(&p))
	a.last = d

	snap := p
	a.prev = &snap

	if d.Empty() {
		return nil
	}
	if _, err := io.WriteString(a.out, d.Unified); err != nil {
		return fmt.Errorf("write plan diff: %w", err)
	}
	return nil
}

// Diff computes the line diff between two plan summaries.
func (a *DiffAdapter) Diff(fromID, toID, oldText, newText string) PlanDiff {
	c1, c2, lines := a.dmp.DiffLinesToChars(oldText, newText)
	diffs := a.dmp.DiffCharsToLines(a.dmp.DiffMain(c1, c2, false), lines)

	out := PlanDiff{FromID: fromID, ToID: toID}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- plan/%s\n", label(fromID))
	fmt.Fprintf(&buf, "+++ plan/%s\n", label(toID))

	// A single hunk spans both texts, context lines included.
	oldLine, newLine := 1, 1
	var hunk []string
	var oldStart, newStart, oldCount, newCount int
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			if len(hunk) == 0 {
				oldStart, newStart = oldLine, newLine
			}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				hunk = append(hunk, " "+line)
				oldCount++
				newCount++
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				hunk = append(hunk, "-"+line)
				out.Deletions++
				oldCount++
				oldLine++
			case diffmatchpatch.DiffInsert:
				hunk = append(hunk, "+"+line)
				out.Insertions++
				newCount++
				newLine++
			}
		}
	}

	if out.Empty() {
		return out
	}
	fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, l := range hunk {
		buf.WriteString(l)
		buf.WriteString("\n")
	}
	out.Unified = buf.String()
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func label(id string) string {
	if id == "" {
		return "none"
	}
	return id
}
