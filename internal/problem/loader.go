package problem

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/plansched/internal/errors"
)

// Repository loads and saves problem files.
type Repository interface {
	Load(path string) (*Problem, error)
	Save(p *Problem, path string) error
}

// FileRepository implements Repository for YAML files.
type FileRepository struct{}

// NewFileRepository creates a file-based problem repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads and validates a problem from a YAML file.
func (r *FileRepository) Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewProblemNotFoundError(path)
		}
		return nil, fmt.Errorf("read problem file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML problem.
func Parse(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProblemUnmarshal, "failed to parse problem YAML", err).
			WithSuggestion("Check the file syntax against examples/problem.yaml")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes p as YAML, creating the directory if needed.
func (r *FileRepository) Save(p *Problem, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal problem: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write problem file: %w", err)
	}
	return nil
}

var defaultRepository = NewFileRepository()

// Load reads a problem using the default repository.
func Load(path string) (*Problem, error) {
	return defaultRepository.Load(path)
}

// Save writes a problem using the default repository.
func Save(p *Problem, path string) error {
	return defaultRepository.Save(p, path)
}

var _ Repository = (*FileRepository)(nil)
