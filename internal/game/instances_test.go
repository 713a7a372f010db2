package game

import (
	"errors"
	"testing"
	"testing/fstest"
)

const instancesJSON = `{
  "experiments": [
    {"name": "high_en", "game_instances": [{"game_id": 0}, {"game_id": 1}]},
    {"name": "medium_en", "game_instances": [{"game_id": 0}]}
  ]
}`

func TestParseInstances(t *testing.T) {
	instances, err := ParseInstances([]byte(instancesJSON))
	if err != nil {
		t.Fatalf("parse instances: %v", err)
	}
	if len(instances.Experiments) != 2 {
		t.Fatalf("expected 2 experiments, got %d", len(instances.Experiments))
	}
	if len(instances.Experiments[0].Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances.Experiments[0].Instances))
	}
}

func TestParseInstancesRejectsEmpty(t *testing.T) {
	_, err := ParseInstances([]byte(`{"experiments": []}`))
	if !errors.Is(err, ErrNoExperiments) {
		t.Fatalf("expected ErrNoExperiments, got %v", err)
	}
}

func TestInstancesExperimentLookup(t *testing.T) {
	instances, err := ParseInstances([]byte(instancesJSON))
	if err != nil {
		t.Fatalf("parse instances: %v", err)
	}

	experiment, err := instances.Experiment("medium_en")
	if err != nil {
		t.Fatalf("experiment lookup: %v", err)
	}
	if experiment.Name != "medium_en" {
		t.Fatalf("experiment name = %q", experiment.Name)
	}

	_, err = instances.Experiment("missing")
	if !errors.Is(err, ErrExperimentNotFound) {
		t.Fatalf("expected ErrExperimentNotFound, got %v", err)
	}
}

func TestInstancesFilter(t *testing.T) {
	instances, err := ParseInstances([]byte(instancesJSON))
	if err != nil {
		t.Fatalf("parse instances: %v", err)
	}

	filtered := instances.Filter([]string{"high_en"})
	if len(filtered.Experiments) != 1 || filtered.Experiments[0].Name != "high_en" {
		t.Fatalf("unexpected filter result: %+v", filtered.Experiments)
	}

	unfiltered := instances.Filter(nil)
	if len(unfiltered.Experiments) != 2 {
		t.Fatalf("expected unfiltered experiments, got %d", len(unfiltered.Experiments))
	}
}

func TestLoadInstancesFS(t *testing.T) {
	fsys := fstest.MapFS{
		"in/instances.json":    &fstest.MapFile{Data: []byte(instancesJSON)},
		"in/instances_v2.json": &fstest.MapFile{Data: []byte(instancesJSON)},
	}

	if _, err := LoadInstancesFS(fsys, ""); err != nil {
		t.Fatalf("load default instances: %v", err)
	}
	if _, err := LoadInstancesFS(fsys, "instances_v2"); err != nil {
		t.Fatalf("load named instances: %v", err)
	}
	if _, err := LoadInstancesFS(fsys, "missing"); err == nil {
		t.Fatal("expected error for missing instances file")
	}
}
