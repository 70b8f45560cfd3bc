package booking

import "time"

const (
	StatusOpen       = "open"
	StatusAuthorized = "authorized"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusDisputed   = "disputed"
)

// codeTTL is how long a trip start code stays valid after issue.
const codeTTL = 30 * time.Minute

// lateCancelWindow is how close to departure a cancellation starts flagging
// a possible late fee. The fee flag never changes whether the cancellation
// succeeds.
const lateCancelWindow = 12 * time.Hour

// Booking is one rider's claim on seats of a ride. AuthEstimateCents is the
// conservative pre-trip quote; FinalShareCents is set once, at completion,
// and never changes afterwards. The trip start code is delivered to the
// rider out of band and never serialized.
type Booking struct {
	ID                string     `json:"id"`
	RideID            string     `json:"ride_id"`
	RiderID           string     `json:"rider_id"`
	Seats             int        `json:"seats"`
	Status            string     `json:"status"`
	AuthEstimateCents int64      `json:"auth_estimate_cents"`
	FinalShareCents   *int64     `json:"final_share_cents,omitempty"`
	TripStartCode     string     `json:"-"`
	CodeExpiresAt     time.Time  `json:"code_expires_at"`
	TripStartedAt     *time.Time `json:"trip_started_at,omitempty"`
	TripCompletedAt   *time.Time `json:"trip_completed_at,omitempty"`
	PaymentRef        string     `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CancelResult reports a successful cancellation plus whether the rider
// should expect a late fee.
type CancelResult struct {
	Booking         Booking `json:"booking"`
	LateFeePossible bool    `json:"late_fee_possible"`
	Message         string  `json:"message"`
}

// CompletedShare is one booking's reconciled outcome at ride completion.
type CompletedShare struct {
	BookingID       string `json:"booking_id"`
	RiderID         string `json:"rider_id"`
	Seats           int    `json:"seats"`
	FinalShareCents int64  `json:"final_share_cents"`
}

// CompletionFailure records a booking whose completion update failed; the
// other bookings complete regardless.
type CompletionFailure struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

type CompletionResult struct {
	RideID    string              `json:"ride_id"`
	Completed []CompletedShare    `json:"completed"`
	Failed    []CompletionFailure `json:"failed,omitempty"`
}
