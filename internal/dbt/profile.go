package dbt

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the dbt project definition file.
const ProjectFileName = "dbt_project.yml"

// Project holds the dbt_project.yml fields this tool cares about.
type Project struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Profile string `yaml:"profile"`
}

// LoadProject reads dbt_project.yml from dir.
func LoadProject(dir string) (*Project, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ProjectFileName)

	data, err := os.ReadFile(path) //nolint:gosec // path is the configured project dir
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &p, nil
}

// ProjectProfile returns the profile name configured in dir/dbt_project.yml.
func ProjectProfile(dir string) (string, error) {
	p, err := LoadProject(dir)
	if err != nil {
		return "", err
	}
	if p.Profile == "" {
		return "", fmt.Errorf("%s has no profile set", filepath.Join(dir, ProjectFileName))
	}
	return p.Profile, nil
}
