package dto

type PushFrameRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type PushFrameResponse struct {
	Status string `json:"status" example:"ok"`
}

const (
	FrameStatusOK        = "ok"
	FrameStatusQueueFull = "queue_full"
)
