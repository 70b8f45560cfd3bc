package ride

import "time"

const (
	StatusOpen       = "open"
	StatusFull       = "full"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Ride is a driver's offered trip with fixed seats and a total cost that
// riders split. All money is integer cents.
type Ride struct {
	ID             string    `json:"id"`
	DriverID       string    `json:"driver_id"`
	OriginText     string    `json:"origin"`
	OriginLat      float64   `json:"origin_lat"`
	OriginLng      float64   `json:"origin_lng"`
	DestText       string    `json:"destination"`
	DestLat        float64   `json:"dest_lat"`
	DestLng        float64   `json:"dest_lng"`
	DepartureAt    time.Time `json:"departure_at"`
	SeatsTotal     int       `json:"seats_total"`
	SeatsAvailable int       `json:"seats_available"`
	TotalCostCents int64     `json:"total_cost_cents"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
