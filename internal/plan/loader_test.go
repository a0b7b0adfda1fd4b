package plan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/plansched/internal/errors"
)

func TestSaveAndLoadPlan(t *testing.T) {
	for _, name := range []string{"plan.json", "plan.yaml", "plan.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := samplePlan()

			if err := SavePlan(want, path); err != nil {
				t.Fatalf("SavePlan() error = %v", err)
			}
			got, err := LoadPlan(path)
			if err != nil {
				t.Fatalf("LoadPlan() error = %v", err)
			}

			if !reflect.DeepEqual(got.Tasks, want.Tasks) {
				t.Errorf("Tasks = %+v, want %+v", got.Tasks, want.Tasks)
			}
			if !reflect.DeepEqual(got.Orderings, want.Orderings) {
				t.Errorf("Orderings = %+v, want %+v", got.Orderings, want.Orderings)
			}
			if !got.CreatedAt.Equal(want.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
			}
			gh, _ := Hash(got)
			wh, _ := Hash(want)
			if gh != wh {
				t.Errorf("hash changed across save/load: %s != %s", gh, wh)
			}
		})
	}
}

func TestLoadPlanErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode errors.ErrorCode
	}{
		{name: "missing file", file: "missing.json", wantCode: errors.ErrCodeFileNotFound},
		{name: "bad json", file: "bad.json", content: "{", wantCode: errors.ErrCodeFileUnmarshal},
		{name: "bad yaml", file: "bad.yaml", content: "tasks: [", wantCode: errors.ErrCodeFileUnmarshal},
		{name: "bad origin", file: "origin.yaml", content: "orderings:\n  - {before: 1, after: 2, origin: later}\n", wantCode: errors.ErrCodeFileUnmarshal},
		{
			name:     "invalid plan",
			file:     "cycle.json",
			content:  `{"tasks":[{"inst":1,"task":1},{"inst":2,"task":1}],"orderings":[{"before":1,"after":2,"origin":"causal"},{"before":2,"after":1,"origin":"sched"}]}`,
			wantCode: errors.ErrCodePlanCyclicDep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
					t.Fatal(err)
				}
			}
			_, err := LoadPlan(path)
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("LoadPlan() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestHashIgnoresIdentityAndOrder(t *testing.T) {
	a := samplePlan()
	b := samplePlan()
	b.ID = "run-2"
	b.CreatedAt = b.CreatedAt.AddDate(1, 0, 0)
	b.Tasks[0], b.Tasks[1] = b.Tasks[1], b.Tasks[0]
	b.Links[0], b.Links[1] = b.Links[1], b.Links[0]

	ha, err := Hash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := Hash(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("Hash differs for equivalent plans: %s != %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(ha))
	}

	b.Tasks[0].Impl = "other"
	hc, _ := Hash(b)
	if hc == ha {
		t.Error("Hash did not change when the schedule changed")
	}
}
