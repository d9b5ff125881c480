package compplan

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"goal-engine/internal/model"
)

//go:embed plans/*.yaml
var embedded embed.FS

// Embedded returns the plans compiled into the binary, one artifact per
// company and region, in file name order.
func Embedded() ([]model.CompensationPlan, error) {
	return Load(embedded, "plans/*.yaml")
}

// LoadDir reads every *.yaml plan artifact in dir.
func LoadDir(dir string) ([]model.CompensationPlan, error) {
	return Load(os.DirFS(dir), "*.yaml")
}

// Load parses the plan artifacts matching pattern in fsys. A file either
// yields a complete plan or an error; unknown fields are rejected.
func Load(fsys fs.FS, pattern string) ([]model.CompensationPlan, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}

	plans := make([]model.CompensationPlan, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read plan %s: %w", name, err)
		}
		p, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse plan %s: %w", name, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func Parse(raw []byte) (model.CompensationPlan, error) {
	var p model.CompensationPlan
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return model.CompensationPlan{}, err
	}
	return p, nil
}

// Default builds a repository from the embedded plans followed by the plans
// in extraDirs.
func Default(extraDirs ...string) (*Repository, error) {
	plans, err := Embedded()
	if err != nil {
		return nil, err
	}
	for _, dir := range extraDirs {
		if dir == "" {
			continue
		}
		extra, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		plans = append(plans, extra...)
	}
	return New(plans...)
}
