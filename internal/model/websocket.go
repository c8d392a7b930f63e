package model

// Event types pushed on an export job's WebSocket channel.
const (
	WSEventProgress = "progress"
	WSEventComplete = "complete"
	WSEventCanceled = "canceled"
	WSEventError    = "error"
)

// WSProgressEvent reports export progress. Progress never decreases and
// stays below 100 until the final concatenation completes.
type WSProgressEvent struct {
	Type        string    `json:"type"`
	JobID       string    `json:"jobId"`
	Progress    int       `json:"progress"`
	Status      JobStatus `json:"status"`
	CurrentStep string    `json:"currentStep,omitempty"`
}

// WSCompleteEvent carries the export result once the job succeeds.
type WSCompleteEvent struct {
	Type   string                `json:"type"`
	JobID  string                `json:"jobId"`
	Result *ExportResultResponse `json:"result"`
}

// WSCanceledEvent tells watchers a queued job was canceled before the
// worker picked it up.
type WSCanceledEvent struct {
	Type   string    `json:"type"`
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// WSErrorEvent reports a fatal export failure.
type WSErrorEvent struct {
	Type    string `json:"type"`
	JobID   string `json:"jobId"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
