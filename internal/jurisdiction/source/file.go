package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/pkg/platform/sentinel"
)

// File reads a YAML dataset with state_rules, fee_schedules and
// id_requirements at the top level.
type File struct {
	path string
}

// NewFile creates a file source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

// Path returns the watched location.
func (f *File) Path() string { return f.path }

func (f *File) Load(ctx context.Context) (models.Dataset, error) {
	if f.path == "" {
		return models.Dataset{}, fmt.Errorf("dataset file: %w", sentinel.ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return models.Dataset{}, err
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Dataset{}, fmt.Errorf("dataset file %s: %w", f.path, sentinel.ErrNotFound)
		}
		return models.Dataset{}, fmt.Errorf("read dataset file %s: %w", f.path, err)
	}
	return Decode(raw)
}

// Decode parses a YAML (or JSON) dataset document.
func Decode(raw []byte) (models.Dataset, error) {
	var ds models.Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %v", sentinel.ErrInvalidDataset, err)
	}
	return ds, nil
}
