package domain

import "time"

// Exchange records one executed request/response round trip.
type Exchange struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Method     string    `json:"method"`
	URI        string    `json:"uri"`
	StatusCode int       `json:"status_code"`
	Outcome    string    `json:"outcome"`
	BodyBytes  int       `json:"body_bytes"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	RecordedAt time.Time `json:"recorded_at"`
}
