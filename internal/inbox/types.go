package inbox

import "time"

// Event é uma ocorrência da pasta monitorada de currículos
type Event struct {
	Type      string            `json:"type"` // "detected" | "analyzed" | "rejected"
	Path      string            `json:"path"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}
