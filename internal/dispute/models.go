package dispute

import "time"

const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusRejected = "rejected"
)

// minTextLen applies to both the dispute reason and the resolution text.
const minTextLen = 10

// Dispute is a formal complaint against a completed booking. At most one
// open dispute may exist per booking at any time.
type Dispute struct {
	ID         string     `json:"id"`
	BookingID  string     `json:"booking_id"`
	OpenedBy   string     `json:"opened_by"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	Resolution *string    `json:"resolution,omitempty"`
	ResolvedBy *string    `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
