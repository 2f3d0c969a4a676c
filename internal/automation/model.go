package automation

// Action is a predefined effect the surrounding home system can perform.
// The pipeline never executes actions; it only reports which ones fired.
type Action struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Label       string `gorm:"not null" json:"label"`
	Description string `json:"description,omitempty"`
}

// Rule binds a user-authored natural-language condition to exactly one
// action. ActionID is validated against the action set when the rule is
// created; a later deletion of the action is not re-checked (dangling rules
// resolve to nothing).
type Rule struct {
	ID            string `gorm:"primaryKey" json:"id"`
	ConditionText string `gorm:"not null" json:"condition_text"`
	ActionID      string `gorm:"not null;index" json:"action_id"`
}

// Config is a value snapshot of the automation state. Snapshots handed out
// by the Store are deep copies; mutating the store never changes a snapshot
// already captured by an in-flight oracle call.
type Config struct {
	Actions []Action `json:"actions"`
	Rules   []Rule   `json:"rules"`
}

func (c Config) ActionsByID() map[string]Action {
	m := make(map[string]Action, len(c.Actions))
	for _, a := range c.Actions {
		m[a.ID] = a
	}
	return m
}

func (c Config) RulesByID() map[string]Rule {
	m := make(map[string]Rule, len(c.Rules))
	for _, r := range c.Rules {
		m[r.ID] = r
	}
	return m
}

// ResolveActions maps triggered rule ids to an ordered, deduplicated list of
// action ids. Order follows the order in which the rules fired; when several
// rules map to the same action, the first occurrence wins. Unknown rule ids
// are skipped: the rule may have been deleted between oracle evaluation and
// resolution, which is a benign race.
func ResolveActions(triggeredRuleIDs []string, cfg Config) []string {
	rulesByID := cfg.RulesByID()

	actionIDs := make([]string, 0, len(triggeredRuleIDs))
	seen := make(map[string]struct{}, len(triggeredRuleIDs))
	for _, ruleID := range triggeredRuleIDs {
		rule, ok := rulesByID[ruleID]
		if !ok {
			continue
		}
		if _, dup := seen[rule.ActionID]; dup {
			continue
		}
		seen[rule.ActionID] = struct{}{}
		actionIDs = append(actionIDs, rule.ActionID)
	}
	return actionIDs
}
