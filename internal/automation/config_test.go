package automation

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automation_rules.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"actions": [
			{"id": "turn_on_lights", "label": "Turn on lights"},
			{"id": "send_alert"}
		],
		"rules": [
			{"id": "rule-1", "condition_text": "a person enters", "action_id": "turn_on_lights"}
		]
	}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Actions) != 2 || len(cfg.Rules) != 1 {
		t.Fatalf("loaded %d actions, %d rules", len(cfg.Actions), len(cfg.Rules))
	}
	// A missing label defaults to the id.
	if cfg.Actions[1].Label != "send_alert" {
		t.Errorf("Actions[1].Label = %q, want the id", cfg.Actions[1].Label)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "nope"},
		{"rule references unknown action", `{
			"actions": [{"id": "a1", "label": "A1"}],
			"rules": [{"id": "r1", "condition_text": "x", "action_id": "missing"}]
		}`},
		{"rule with empty condition", `{
			"actions": [{"id": "a1", "label": "A1"}],
			"rules": [{"id": "r1", "condition_text": "", "action_id": "a1"}]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile accepted an invalid config")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadFile accepted a missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Actions: []Action{{ID: "a1", Label: "A1"}},
		Rules:   []Rule{{ID: "r1", ConditionText: "x", ActionID: "a1"}},
	}
	if err := Validate(valid); err != nil {
		t.Errorf("Validate(valid) = %v", err)
	}

	empty := Config{}
	if err := Validate(empty); err != nil {
		t.Errorf("Validate(empty) = %v, want nil (no actions, no rules is fine)", err)
	}

	invalid := []struct {
		name string
		cfg  Config
	}{
		{"empty action id", Config{Actions: []Action{{ID: ""}}}},
		{"empty rule id", Config{
			Actions: []Action{{ID: "a1"}},
			Rules:   []Rule{{ID: "", ConditionText: "x", ActionID: "a1"}},
		}},
		{"dangling action id", Config{
			Actions: []Action{{ID: "a1"}},
			Rules:   []Rule{{ID: "r1", ConditionText: "x", ActionID: "a2"}},
		}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.cfg); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}
