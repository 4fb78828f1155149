// Package planfile loads plan definitions from YAML files.
package planfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calebhart/stepline/pkg/models"
)

// File is the on-disk plan schema.
//
//	name: research-run
//	tasks:
//	  - type: web_search
//	    prompt: Find recent articles about X
//	  - type: summarize
//	    prompt: Summarize the findings
//	    context:
//	      - audience: engineers
type File struct {
	Name  string      `yaml:"name"`
	Tasks []TaskEntry `yaml:"tasks"`
}

// TaskEntry is one task definition in a plan file.
type TaskEntry struct {
	Type    string   `yaml:"type"`
	Prompt  string   `yaml:"prompt"`
	Context []string `yaml:"context"`
}

// Load reads and validates a plan file, returning an executable plan with
// every task in the waiting state.
func Load(path string) (*models.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(raw)
}

// Parse builds a plan from raw YAML.
func Parse(raw []byte) (*models.Plan, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse plan file: %w", err)
	}
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("plan file has no tasks")
	}

	plan := &models.Plan{Name: f.Name}
	for i, entry := range f.Tasks {
		if entry.Type == "" {
			return nil, fmt.Errorf("task %d: missing type", i)
		}
		if entry.Prompt == "" {
			return nil, fmt.Errorf("task %d: missing prompt", i)
		}
		plan.Append(models.NewTask(models.TaskType(entry.Type), entry.Prompt, entry.Context...))
	}
	return plan, nil
}
