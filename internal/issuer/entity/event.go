package entity

// IssuedEvent is a journal entry for one issued serial.
type IssuedEvent struct {
	EventID       string `json:"event_id"`
	Kind          Kind   `json:"kind"`
	Value         string `json:"value"`
	IssuedAt      int64  `json:"issued_at"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
