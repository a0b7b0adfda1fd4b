package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// FileAdapter writes every committed plan to a file. The encoding follows
// the extension: .yaml/.yml for YAML, JSON otherwise. With history enabled
// each distinct plan is also kept as <dir>/<digest>.<ext>.
type FileAdapter struct {
	path    string
	history bool
	last    string
}

// FileOption configures a FileAdapter.
type FileOption func(*FileAdapter)

// WithHistory keeps one file per distinct plan next to path.
func WithHistory() FileOption {
	return func(a *FileAdapter) { a.history = true }
}

// NewFileAdapter creates a FileAdapter writing to path.
func NewFileAdapter(path string, opts ...FileOption) *FileAdapter {
	a := &FileAdapter{path: path}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements the adapter label.
func (a *FileAdapter) Name() string { return "file" }

// Path returns the file written on every change.
func (a *FileAdapter) Path() string { return a.path }

// LastDigest returns the blake3 digest of the last plan written.
func (a *FileAdapter) LastDigest() string { return a.last }

// PlanChanged writes p.
func (a *FileAdapter) PlanChanged(_ context.Context, p plan.Plan) error {
	digest, err := plan.Hash(&p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create plan directory for %s", a.path), err)
	}
	if err := plan.SavePlan(&p, a.path); err != nil {
		return err
	}

	if a.history && digest != a.last {
		ext := filepath.Ext(a.path)
		if ext == "" {
			ext = ".json"
		}
		hist := filepath.Join(filepath.Dir(a.path), "history", digest[:16]+ext)
		if err := os.MkdirAll(filepath.Dir(hist), 0755); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, "create plan history directory", err)
		}
		if err := plan.SavePlan(&p, hist); err != nil {
			return err
		}
	}
	a.last = digest
	return nil
}
