package models

// Progress update kinds broadcast on the admin websocket.
const (
	ProgressKindImport = "import"
	ProgressKindJob    = "job"
)

// ProgressUpdate is the message pushed to admin dashboards while an import
// or a background job runs.
type ProgressUpdate struct {
	JobID     string  `json:"jobId"`
	Kind      string  `json:"kind"`
	Event     string  `json:"event,omitempty"`
	Message   string  `json:"message"`
	Progress  float64 `json:"progress"`
	Processed int     `json:"processed,omitempty"`
	Total     int     `json:"total,omitempty"`
	Status    string  `json:"status"` // e.g. "in_progress", "completed", "failed"
	Done      bool    `json:"done"`
}
