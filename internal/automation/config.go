package automation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads the seed automation config:
//
//	{
//	  "actions": [{"id": "turn_on_bedside_lamp", "label": "Turn on bedside lamp"}],
//	  "rules":   [{"id": "rule-1", "condition_text": "...", "action_id": "turn_on_bedside_lamp"}]
//	}
//
// A referentially inconsistent config (rule pointing at an unknown action)
// is a startup error; the process must not serve with a broken rule set.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read automation config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse automation config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid automation config %s: %w", path, err)
	}

	for i := range cfg.Actions {
		if cfg.Actions[i].Label == "" {
			cfg.Actions[i].Label = cfg.Actions[i].ID
		}
	}

	return &cfg, nil
}

// Validate checks structural and referential integrity of a config.
func Validate(cfg Config) error {
	actionIDs := make(map[string]struct{}, len(cfg.Actions))
	for _, a := range cfg.Actions {
		if a.ID == "" {
			return fmt.Errorf("action with empty id")
		}
		actionIDs[a.ID] = struct{}{}
	}

	for _, r := range cfg.Rules {
		if r.ID == "" {
			return fmt.Errorf("rule with empty id")
		}
		if r.ConditionText == "" {
			return fmt.Errorf("rule %s has empty condition_text", r.ID)
		}
		if _, ok := actionIDs[r.ActionID]; !ok {
			return fmt.Errorf("rule %s references unknown action_id %q", r.ID, r.ActionID)
		}
	}
	return nil
}
