package oracle

import (
	"encoding/json"
	"strings"
)

// parseDecision normalizes a raw policy response once, at the boundary.
// Models behind OpenAI-compatible endpoints return JSON wrapped in code
// fences, embedded in prose, or occasionally not at all; anything that cannot
// be read as {"triggered_rule_ids": [...]} degrades to an empty list rather
// than failing the window.
func parseDecision(raw string) *Decision {
	dec := &Decision{
		TriggeredRuleIDs: []string{},
		RawText:          raw,
	}

	text := extractJSON(raw)
	if text == "" {
		return dec
	}

	var payload struct {
		TriggeredRuleIDs any    `json:"triggered_rule_ids"`
		Reasoning        string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return dec
	}

	dec.TriggeredRuleIDs = normalizeRuleIDs(payload.TriggeredRuleIDs)
	dec.Reasoning = payload.Reasoning
	return dec
}

// extractJSON pulls the first JSON object out of a model response, handling
// ```json fences and surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+len("```"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// normalizeRuleIDs accepts whatever shape the model produced for
// triggered_rule_ids and keeps only string entries. Non-list shapes and
// missing fields yield an empty list.
func normalizeRuleIDs(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	ids := make([]string, 0, len(list))
	for _, item := range list {
		if id, ok := item.(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
