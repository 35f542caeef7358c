// Package recipes reads and writes DataHub ingestion recipe and
// parameter files. Recipes are plain YAML; parameter substitution
// happens in the ingestion executor, not here.
package recipes

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/metastore-labs/metasync/pkg/errors"
)

// Source identifies where a recipe ingests from.
type Source struct {
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config,omitempty"`
}

// Sink identifies where a recipe emits to. Absent means the executor's
// default DataHub sink.
type Sink struct {
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config,omitempty"`
}

// Recipe is one ingestion pipeline definition.
type Recipe struct {
	PipelineName string `yaml:"pipeline_name,omitempty"`
	Source       Source `yaml:"source"`
	Sink         *Sink  `yaml:"sink,omitempty"`
	Transformers []any  `yaml:"transformers,omitempty"`
}

// Params holds the per-environment values a recipe references.
type Params map[string]any

// Validate checks the fields every executor requires.
func (r Recipe) Validate() error {
	if r.Source.Type == "" {
		return &errors.ValidationError{Field: "source.type", Message: "recipe source type is required"}
	}
	if r.Sink != nil && r.Sink.Type == "" {
		return &errors.ValidationError{Field: "sink.type", Message: "sink requires a type when present"}
	}
	return nil
}

// Read loads and validates a recipe file.
func Read(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, errors.WrapIO("read", path, err)
	}

	var recipe Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return Recipe{}, errors.WrapParse("yaml", path, err)
	}
	if err := recipe.Validate(); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

// Write saves a recipe file, creating parent directories as needed.
func Write(path string, recipe Recipe) error {
	if err := recipe.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(recipe)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// ReadParams loads a parameter file.
func ReadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	params := make(Params)
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return params, nil
}

// WriteParams saves a parameter file.
func WriteParams(path string, params Params) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// List returns the recipe file paths under dir, sorted. A missing
// directory lists as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
