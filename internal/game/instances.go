package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultInstancesName is the instances file used when no override is given.
const DefaultInstancesName = "instances"

var (
	// ErrNoExperiments indicates an instances file without experiments.
	ErrNoExperiments = errors.New("instances file contains no experiments")
	// ErrExperimentNotFound indicates the requested experiment does not exist.
	ErrExperimentNotFound = errors.New("experiment not found")
)

// Experiment groups game instances that share a configuration.
type Experiment struct {
	Name      string            `json:"name"`
	Instances []json.RawMessage `json:"game_instances"`
}

// Instances is the content of an instances.json file.
type Instances struct {
	Experiments []Experiment `json:"experiments"`
}

// Experiment returns the named experiment.
func (i Instances) Experiment(name string) (Experiment, error) {
	for _, experiment := range i.Experiments {
		if experiment.Name == name {
			return experiment, nil
		}
	}
	return Experiment{}, fmt.Errorf("%w: %q", ErrExperimentNotFound, name)
}

// Filter keeps only the named experiments. An empty filter keeps all.
func (i Instances) Filter(names []string) Instances {
	if len(names) == 0 {
		return i
	}
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}
	filtered := Instances{}
	for _, experiment := range i.Experiments {
		if keep[experiment.Name] {
			filtered.Experiments = append(filtered.Experiments, experiment)
		}
	}
	return filtered
}

// ParseInstances decodes an instances file.
func ParseInstances(data []byte) (Instances, error) {
	var instances Instances
	if err := json.Unmarshal(data, &instances); err != nil {
		return Instances{}, fmt.Errorf("parse instances: %w", err)
	}
	if len(instances.Experiments) == 0 {
		return Instances{}, ErrNoExperiments
	}
	return instances, nil
}

// LoadInstancesFS reads the named instances file from a game filesystem, e.g.
// the embedded resources of a builtin game. The ".json" suffix is implied.
func LoadInstancesFS(fsys fs.FS, name string) (Instances, error) {
	data, err := fs.ReadFile(fsys, instancesPath(name))
	if err != nil {
		return Instances{}, fmt.Errorf("read instances: %w", err)
	}
	return ParseInstances(data)
}

// LoadInstancesDir reads the named instances file from a game directory.
func LoadInstancesDir(dir string, name string) (Instances, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(instancesPath(name))))
	if err != nil {
		return Instances{}, fmt.Errorf("read instances: %w", err)
	}
	return ParseInstances(data)
}

func instancesPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultInstancesName
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return path.Join("in", name)
}
