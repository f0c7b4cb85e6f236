package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project wires one scanner project to the tracker. The assignee email is
// resolved to a tracker account id once per run; Component is the label
// applied to created tickets.
type Project struct {
	Key           string `yaml:"key"`
	Name          string `yaml:"name"`
	AssigneeEmail string `yaml:"assigneeEmail"`
	Component     string `yaml:"component"`
	Enabled       bool   `yaml:"enabled"`
}

type projectsFile struct {
	Projects []Project `yaml:"projects"`
}

// LoadProjects reads the YAML project list, returning only enabled entries
// with a non-empty key, in file order. A missing file is not an error: the
// sync falls back to SONAR_PROJECT_KEY or does nothing.
func LoadProjects(path string) ([]Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading projects file: %w", err)
	}

	var file projectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing projects file: %w", err)
	}

	var enabled []Project
	for _, p := range file.Projects {
		if p.Enabled && p.Key != "" {
			enabled = append(enabled, p)
		}
	}
	return enabled, nil
}
