package dto

type ActionResponse struct {
	ID          string `json:"id" example:"turn_on_bedside_lamp"`
	Label       string `json:"label" example:"Turn on bedside lamp"`
	Description string `json:"description,omitempty" example:"Turn on the lamp near the bed"`
}

type RuleResponse struct {
	ID            string `json:"id" example:"rule_3f9a2c"`
	ConditionText string `json:"condition_text" example:"A person is lying in bed and the room is dark"`
	ActionID      string `json:"action_id" example:"turn_on_bedside_lamp"`
}

type ConfigResponse struct {
	Actions []ActionResponse `json:"actions"`
	Rules   []RuleResponse   `json:"rules"`
}

type CreateRuleRequest struct {
	ConditionText string `json:"condition_text" example:"A person is lying in bed and the room is dark"`
	ActionID      string `json:"action_id" example:"turn_on_bedside_lamp"`
}

type DeleteRuleResponse struct {
	Status string `json:"status" example:"deleted"`
	RuleID string `json:"rule_id" example:"rule_3f9a2c"`
}
