// model/expiryjob.go
package model

import "time"

type ExpiryJobStatus string

const (
	JobPending ExpiryJobStatus = "PENDING"
	JobFailed  ExpiryJobStatus = "FAILED"
)

// ExpiryJob is a durable timer row. At most one live job exists per
// reservation id; re-scheduling replaces the pending row.
type ExpiryJob struct {
	ReservationID string          `json:"reservation_id"`
	FireAt        time.Time       `json:"fire_at"`
	Attempts      int             `json:"attempts"`
	Status        ExpiryJobStatus `json:"status"`
	LastError     *string         `json:"last_error,omitempty"`
}
