package problem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode errors.ErrorCode
		validate func(*testing.T, *Problem)
	}{
		{
			name: "minimal problem",
			content: `
name: minimal
conditions:
  - {id: 1, kind: goal, prob: 0}
tasks:
  - id: 1
    effects:
      - {cond: 1, weight: 1}
goal:
  id: g
  conditions:
    - {cond: 1, utility: 5}
`,
			validate: func(t *testing.T, p *Problem) {
				if p.Name != "minimal" {
					t.Errorf("Name = %q, want minimal", p.Name)
				}
				if len(p.Tasks) != 1 || p.Tasks[0].Effects[0].Weight != 1 {
					t.Errorf("unexpected tasks: %+v", p.Tasks)
				}
				g := p.Goal.DomainGoal()
				if g.Conditions[domain.Condition{ID: 1, Value: true}] != 5 {
					t.Errorf("goal conditions = %v", g.Conditions)
				}
				if g.Deadline != domain.NullTime {
					t.Errorf("Deadline = %d, want NullTime", g.Deadline)
				}
			},
		},
		{
			name: "negated precondition and goal",
			content: `
name: negated
conditions:
  - {id: 1, kind: precondition, prob: 0}
  - {id: 2, kind: goal, prob: 1}
tasks:
  - id: 4
    preconds:
      - {cond: 1, value: false}
    effects:
      - {cond: 2, weight: -1}
goal:
  id: g
  conditions:
    - {cond: 2, value: false, utility: 3}
`,
			validate: func(t *testing.T, p *Problem) {
				if got := p.Tasks[0].Preconds[0].Condition(); got.Value {
					t.Errorf("precondition = %v, want false value", got)
				}
				if got := p.Goal.Conditions[0].Condition(); got != (domain.Condition{ID: 2, Value: false}) {
					t.Errorf("goal condition = %v", got)
				}
			},
		},
		{
			name:     "malformed yaml",
			content:  "name: [unterminated",
			wantCode: errors.ErrCodeProblemUnmarshal,
		},
		{
			name:     "unknown condition kind",
			content:  "name: x\nconditions:\n  - {id: 1, kind: sideways, prob: 0}\n",
			wantCode: errors.ErrCodeProblemUnmarshal,
		},
		{
			name: "dangling reference",
			content: `
name: dangling
conditions:
  - {id: 1, kind: goal, prob: 0}
tasks:
  - id: 1
    effects:
      - {cond: 9, weight: 1}
goal:
  id: g
  conditions:
    - {cond: 1, utility: 1}
`,
			wantCode: errors.ErrCodeProblemInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "problem.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			p, err := Load(path)
			if tt.wantCode != "" {
				if !errors.HasCode(err, tt.wantCode) {
					t.Fatalf("Load() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.HasCode(err, errors.ErrCodeProblemNotFound) {
		t.Fatalf("Load() error = %v, want %s", err, errors.ErrCodeProblemNotFound)
	}
}

func TestLoadFixture(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "render.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(p.Conditions) != 4 || len(p.Tasks) != 3 || len(p.Impls) != 3 {
		t.Errorf("unexpected sizes: %d conditions, %d tasks, %d impls", len(p.Conditions), len(p.Tasks), len(p.Impls))
	}
	if p.Goal.Deadline == nil || *p.Goal.Deadline != 20 {
		t.Errorf("Deadline = %v, want 20", p.Goal.Deadline)
	}
	if p.Impls[0].Resources["gpu"] != 1 {
		t.Errorf("render-gpu resources = %v", p.Impls[0].Resources)
	}
}

func TestSaveThenLoad(t *testing.T) {
	orig, err := Load(filepath.Join("testdata", "render.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "copy.yaml")
	if err := Save(orig, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(data), "kind: precondition") {
		t.Errorf("saved file should spell condition kinds out:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() saved copy: %v", err)
	}
	if got.Name != orig.Name || len(got.Tasks) != len(orig.Tasks) {
		t.Errorf("round trip changed the problem: %+v", got)
	}
}
