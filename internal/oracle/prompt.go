package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/scenewatch/vision-backend/internal/automation"
)

const policySystemPrompt = `You evaluate home automation rules against a scene description. ` +
	`You are given a summary of what a camera observed and a list of rules, each with an id and a condition. ` +
	`Decide which conditions are clearly satisfied by the summary. ` +
	`Respond with JSON only, in the form {"triggered_rule_ids": ["..."], "reasoning": "..."}. ` +
	`If no condition is satisfied, return an empty list.`

func summaryPrompt(tStart, tEnd float64, frameCount int) string {
	return fmt.Sprintf(
		"These %d images are consecutive frames from a home camera covering %.2fs to %.2fs of video. "+
			"Describe concisely what is happening in the scene: people, their posture and activity, "+
			"lighting, and anything that changes across the frames. Respond with the description only.",
		frameCount, tStart, tEnd,
	)
}

// policyUserPrompt serializes rule ids and condition text for the policy
// model. Actions are deliberately withheld so the model reasons about what is
// true, never about what to do.
func policyUserPrompt(summary string, rules []automation.Rule) string {
	type promptRule struct {
		ID        string `json:"id"`
		Condition string `json:"condition"`
	}

	promptRules := make([]promptRule, len(rules))
	for i, r := range rules {
		promptRules[i] = promptRule{ID: r.ID, Condition: r.ConditionText}
	}

	rulesJSON, _ := json.Marshal(promptRules)

	return fmt.Sprintf("Scene summary:\n%s\n\nRules:\n%s\n\nJSON:", summary, rulesJSON)
}
