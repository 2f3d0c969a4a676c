package dto

type SessionStatsResponse struct {
	SessionID      string `json:"session_id" example:"live_3f9a2c"`
	Status         string `json:"status" example:"streaming"`
	FramesReceived int64  `json:"frames_received" example:"240"`
	FramesDropped  int64  `json:"frames_dropped" example:"3"`
	WindowsEmitted int64  `json:"windows_emitted" example:"59"`
	StartedAt      string `json:"started_at" example:"2024-01-15T14:02:11Z"`
	EndedAt        string `json:"ended_at,omitempty" example:"2024-01-15T14:09:45Z"`
}
