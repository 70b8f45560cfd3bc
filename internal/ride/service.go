package ride

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend-gatoryde/internal/apperr"
	"backend-gatoryde/internal/db"
	"backend-gatoryde/internal/fare"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db  db.Querier
	now func() time.Time
}

func NewService(db db.Querier) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) CreateRide(ctx context.Context, input Ride) (Ride, error) {
	if v := fare.ValidatePricing(input.TotalCostCents, input.SeatsTotal); !v.Valid {
		return Ride{}, apperr.New(apperr.KindInvalidArgument, strings.Join(v.Errors, "; "))
	}
	if !input.DepartureAt.After(s.now()) {
		return Ride{}, apperr.New(apperr.KindInvalidArgument, "departure must be in the future")
	}

	input.ID = uuid.NewString()
	input.Status = StatusOpen
	input.SeatsAvailable = input.SeatsTotal

	row := s.db.QueryRow(ctx, `
		INSERT INTO rides (id, driver_id, origin_text, origin_lat, origin_lng, dest_text, dest_lat, dest_lng, departure_at, seats_total, seats_available, total_cost_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at
	`, input.ID, input.DriverID, input.OriginText, input.OriginLat, input.OriginLng, input.DestText, input.DestLat, input.DestLng, input.DepartureAt, input.SeatsTotal, input.SeatsAvailable, input.TotalCostCents, input.Status)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Ride{}, err
	}
	return input, nil
}

func (s *Service) GetRide(ctx context.Context, id string) (Ride, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, driver_id, origin_text, origin_lat, origin_lng, dest_text, dest_lat, dest_lng, departure_at, seats_total, seats_available, total_cost_cents, status, created_at
		FROM rides WHERE id=$1
	`, id)
	var r Ride
	if err := scanRide(row, &r); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ride{}, apperr.New(apperr.KindNotFound, "ride not found")
		}
		return Ride{}, err
	}
	return r, nil
}

// ListOpen returns upcoming open rides, optionally filtered by destination
// substring.
func (s *Service) ListOpen(ctx context.Context, destination string) ([]Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, driver_id, origin_text, origin_lat, origin_lng, dest_text, dest_lat, dest_lng, departure_at, seats_total, seats_available, total_cost_cents, status, created_at
		FROM rides
		WHERE status='open' AND ($1='' OR dest_text ILIKE '%'||$1||'%')
		ORDER BY departure_at
		LIMIT 50
	`, destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []Ride
	for rows.Next() {
		var r Ride
		if err := scanRide(rows, &r); err != nil {
			return nil, err
		}
		rides = append(rides, r)
	}
	return rides, nil
}

func scanRide(row pgx.Row, r *Ride) error {
	return row.Scan(&r.ID, &r.DriverID, &r.OriginText, &r.OriginLat, &r.OriginLng, &r.DestText, &r.DestLat, &r.DestLng, &r.DepartureAt, &r.SeatsTotal, &r.SeatsAvailable, &r.TotalCostCents, &r.Status, &r.CreatedAt)
}
