package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JobSpec is a YAML reconciliation job document: where the two schemas come
// from, which columns to skip, and which cross-type matches to allow.
type JobSpec struct {
	Name             string                    `yaml:"name"`
	Source           SideSpec                  `yaml:"source"`
	Target           SideSpec                  `yaml:"target"`
	ExclusionColumns []string                  `yaml:"exclusion_columns"`
	AllowListSpec    string                    `yaml:"allow_list"`
	Labels           map[string]string         `yaml:"labels"`
	Datasources      map[string]DatasourceSpec `yaml:"datasources"`
}

// SideSpec describes one side of a reconciliation: either a live datasource
// table or an inline field list. Inline fields are a YAML sequence, so
// declaration order survives parsing.
type SideSpec struct {
	Datasource string      `yaml:"datasource"`
	Schema     string      `yaml:"schema"`
	Table      string      `yaml:"table"`
	Fields     []FieldSpec `yaml:"fields"`
}

// FieldSpec is one inline column declaration.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// DatasourceSpec carries a datasource type plus its driver-specific
// connection options (host, port, database, credentials).
type DatasourceSpec struct {
	Type    string         `yaml:"type"`
	Options map[string]any `yaml:",inline"`
}

// Inline reports whether this side ships its schema in the job document.
func (s *SideSpec) Inline() bool {
	return len(s.Fields) > 0
}

// LoadJobSpec reads and validates a reconciliation job document.
func LoadJobSpec(path string) (*JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job spec %s: %w", path, err)
	}

	var job JobSpec
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job spec %s: %w", path, err)
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job spec %s: %w", path, err)
	}

	return &job, nil
}

// ApplyDefaults fills engine-wide validation defaults into fields the job
// document left unset. Exclusion defaults are appended after the job's own.
func (j *JobSpec) ApplyDefaults(v ValidationConfig) {
	if j.AllowListSpec == "" {
		j.AllowListSpec = v.AllowListSpec
	}
	j.ExclusionColumns = append(j.ExclusionColumns, v.ExclusionColumns...)
}

// Validate checks the job document for structural problems before any
// connection is attempted. Allow-list syntax is validated later by the
// matcher so parse errors carry the engine's error taxonomy.
func (j *JobSpec) Validate() error {
	if err := j.validateSide("source", &j.Source); err != nil {
		return err
	}
	if err := j.validateSide("target", &j.Target); err != nil {
		return err
	}
	return nil
}

func (j *JobSpec) validateSide(label string, side *SideSpec) error {
	if side.Inline() {
		if side.Datasource != "" {
			return fmt.Errorf("%s: inline fields and a datasource reference are mutually exclusive", label)
		}
		for i, f := range side.Fields {
			if f.Name == "" {
				return fmt.Errorf("%s: field %d has no name", label, i)
			}
		}
		return nil
	}

	if side.Datasource == "" {
		return fmt.Errorf("%s: either inline fields or a datasource reference is required", label)
	}
	ds, ok := j.Datasources[side.Datasource]
	if !ok {
		return fmt.Errorf("%s: datasource %q is not declared", label, side.Datasource)
	}
	if ds.Type == "" {
		return fmt.Errorf("datasource %q has no type", side.Datasource)
	}
	if side.Table == "" {
		return fmt.Errorf("%s: table is required when reading from a datasource", label)
	}
	return nil
}
