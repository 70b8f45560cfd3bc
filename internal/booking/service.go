package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"backend-gatoryde/internal/apperr"
	"backend-gatoryde/internal/db"
	"backend-gatoryde/internal/fare"
	"backend-gatoryde/internal/notify"
	"backend-gatoryde/internal/observability"
	"backend-gatoryde/internal/payments"
	"backend-gatoryde/internal/ride"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db       db.Pool
	notifier notify.Notifier
	gateway  payments.Gateway
	logger   *slog.Logger
	now      func() time.Time
	newCode  func() (string, error)
}

func NewService(pool db.Pool, notifier notify.Notifier, gateway payments.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       pool,
		notifier: notifier,
		gateway:  gateway,
		logger:   logger,
		now:      time.Now,
		newCode:  newTripStartCode,
	}
}

// Create books seats on an open ride. Seat decrement and booking insert
// commit together or not at all; the ride row is locked so two riders
// cannot claim the last seat concurrently.
func (s *Service) Create(ctx context.Context, riderID, rideID string, seats int) (Booking, error) {
	if seats < 1 {
		return Booking{}, apperr.New(apperr.KindInvalidArgument, "seat count must be positive")
	}

	code, err := s.newCode()
	if err != nil {
		return Booking{}, err
	}

	b := Booking{
		ID:            uuid.NewString(),
		RideID:        rideID,
		RiderID:       riderID,
		Seats:         seats,
		Status:        StatusAuthorized,
		TripStartCode: code,
		CodeExpiresAt: s.now().Add(codeTTL),
	}

	err = db.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		var driverID, status string
		var seatsTotal, seatsAvailable int
		var totalCost int64
		row := tx.QueryRow(ctx, `
			SELECT driver_id, status, seats_total, seats_available, total_cost_cents
			FROM rides WHERE id=$1 FOR UPDATE
		`, rideID)
		if err := row.Scan(&driverID, &status, &seatsTotal, &seatsAvailable, &totalCost); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "ride not found")
			}
			return err
		}

		if driverID == riderID {
			return apperr.New(apperr.KindForbidden, "You cannot book your own ride")
		}
		if status != ride.StatusOpen {
			return apperr.New(apperr.KindConflict, "Ride is not open for booking")
		}
		if seatsAvailable < seats {
			return apperr.New(apperr.KindConflict, "Only %d seats available", seatsAvailable)
		}

		occupied := seatsTotal - seatsAvailable
		estimate, err := fare.EstimateShare(totalCost, occupied, seats)
		if err != nil {
			return err
		}
		b.AuthEstimateCents = estimate

		ref, err := s.hold(ctx, estimate, riderID)
		if err != nil {
			return apperr.New(apperr.KindUnavailable, "payment authorization failed")
		}
		b.PaymentRef = ref

		remaining := seatsAvailable - seats
		newStatus := ride.StatusOpen
		if remaining == 0 {
			newStatus = ride.StatusFull
		}
		if _, err := tx.Exec(ctx, `
			UPDATE rides SET seats_available=$2, status=$3 WHERE id=$1
		`, rideID, remaining, newStatus); err != nil {
			return err
		}

		insert := tx.QueryRow(ctx, `
			INSERT INTO bookings (id, ride_id, rider_id, seats, status, auth_estimate_cents, trip_start_code, code_expires_at, payment_ref)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING created_at
		`, b.ID, b.RideID, b.RiderID, b.Seats, b.Status, b.AuthEstimateCents, b.TripStartCode, b.CodeExpiresAt, b.PaymentRef)
		return insert.Scan(&b.CreatedAt)
	})
	if err != nil {
		// a hold placed during a rolled-back attempt must not stay on the card
		s.release(ctx, b.PaymentRef, b.ID)
		return Booking{}, err
	}

	observability.BookingsCreated.Inc()
	s.notify(riderID, "booking.authorized", map[string]any{
		"booking_id":      b.ID,
		"ride_id":         rideID,
		"estimate_cents":  b.AuthEstimateCents,
		"trip_start_code": b.TripStartCode,
	})
	return b, nil
}

// StartTrip consumes the trip start code and moves the booking to
// in_progress. The code check and the transition happen in one
// transaction, so a consumed code cannot be replayed.
func (s *Service) StartTrip(ctx context.Context, callerID, bookingID, code string) (Booking, error) {
	var b Booking
	var driverID string

	err := db.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT b.id, b.ride_id, b.rider_id, b.seats, b.status, b.auth_estimate_cents, COALESCE(b.trip_start_code,''), b.code_expires_at, b.created_at, r.driver_id
			FROM bookings b JOIN rides r ON r.id=b.ride_id
			WHERE b.id=$1 FOR UPDATE OF b
		`, bookingID)
		if err := row.Scan(&b.ID, &b.RideID, &b.RiderID, &b.Seats, &b.Status, &b.AuthEstimateCents, &b.TripStartCode, &b.CodeExpiresAt, &b.CreatedAt, &driverID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "booking not found")
			}
			return err
		}

		if callerID != b.RiderID && callerID != driverID {
			return apperr.New(apperr.KindForbidden, "Only the rider or driver can start this trip")
		}
		if b.Status == StatusInProgress {
			return apperr.New(apperr.KindConflict, "Trip has already started")
		}
		if b.Status != StatusAuthorized {
			return apperr.New(apperr.KindConflict, "booking in status %q cannot start a trip", b.Status)
		}
		if b.TripStartCode == "" {
			return apperr.New(apperr.KindConflict, "No trip start code on this booking")
		}
		if s.now().After(b.CodeExpiresAt) {
			return apperr.New(apperr.KindConflict, "Trip start code has expired")
		}
		if code != b.TripStartCode {
			return apperr.New(apperr.KindInvalidArgument, "Invalid trip start code")
		}

		started := s.now()
		b.TripStartedAt = &started
		b.Status = StatusInProgress
		b.TripStartCode = ""

		if _, err := tx.Exec(ctx, `
			UPDATE bookings SET status=$2, trip_started_at=$3, trip_start_code=NULL WHERE id=$1
		`, bookingID, StatusInProgress, started); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE rides SET status=$2 WHERE id=$1`, b.RideID, ride.StatusInProgress)
		return err
	})
	if err != nil {
		return Booking{}, err
	}

	observability.TripsStarted.Inc()
	data := map[string]any{"booking_id": b.ID, "ride_id": b.RideID}
	s.notify(b.RiderID, "trip.started", data)
	s.notify(driverID, "trip.started", data)
	return b, nil
}

// ResendCode issues a fresh trip start code for an authorized booking.
func (s *Service) ResendCode(ctx context.Context, callerID, bookingID string) (Booking, error) {
	b, driverID, err := s.loadWithDriver(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if callerID != b.RiderID && callerID != driverID {
		return Booking{}, apperr.New(apperr.KindForbidden, "Only the rider or driver can request a new code")
	}
	if b.Status != StatusAuthorized {
		return Booking{}, apperr.New(apperr.KindConflict, "booking in status %q cannot receive a trip start code", b.Status)
	}

	code, err := s.newCode()
	if err != nil {
		return Booking{}, err
	}
	expires := s.now().Add(codeTTL)
	if _, err := s.db.Exec(ctx, `
		UPDATE bookings SET trip_start_code=$2, code_expires_at=$3 WHERE id=$1
	`, bookingID, code, expires); err != nil {
		return Booking{}, err
	}

	b.TripStartCode = code
	b.CodeExpiresAt = expires
	s.notify(b.RiderID, "booking.code_resent", map[string]any{
		"booking_id":      b.ID,
		"trip_start_code": code,
	})
	return b, nil
}

// Complete settles a ride: every in_progress booking gets its exact final
// share, in booking-creation order. Each booking update is attempted
// independently so one failure cannot block the others.
func (s *Service) Complete(ctx context.Context, callerID, rideID string) (CompletionResult, error) {
	var driverID, status string
	var totalCost int64
	row := s.db.QueryRow(ctx, `SELECT driver_id, status, total_cost_cents FROM rides WHERE id=$1`, rideID)
	if err := row.Scan(&driverID, &status, &totalCost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CompletionResult{}, apperr.New(apperr.KindNotFound, "ride not found")
		}
		return CompletionResult{}, err
	}
	if callerID != driverID {
		return CompletionResult{}, apperr.New(apperr.KindForbidden, "Only the driver can complete this ride")
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, rider_id, seats, COALESCE(payment_ref,'')
		FROM bookings WHERE ride_id=$1 AND status=$2
		ORDER BY created_at
	`, rideID, StatusInProgress)
	if err != nil {
		return CompletionResult{}, err
	}
	defer rows.Close()

	type entry struct {
		id, riderID, paymentRef string
		seats                   int
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.riderID, &e.seats, &e.paymentRef); err != nil {
			return CompletionResult{}, err
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return CompletionResult{}, apperr.New(apperr.KindConflict, "No active bookings to complete")
	}

	seats := make([]int, len(entries))
	for i, e := range entries {
		seats[i] = e.seats
	}
	shares, err := fare.FinalShares(totalCost, seats)
	if err != nil {
		return CompletionResult{}, err
	}

	completedAt := s.now()
	result := CompletionResult{RideID: rideID}
	for i, e := range entries {
		if _, err := s.db.Exec(ctx, `
			UPDATE bookings SET status=$2, final_share_cents=$3, trip_completed_at=$4 WHERE id=$1
		`, e.id, StatusCompleted, shares[i], completedAt); err != nil {
			result.Failed = append(result.Failed, CompletionFailure{BookingID: e.id, Reason: err.Error()})
			continue
		}

		s.capture(ctx, e.paymentRef, e.id)
		result.Completed = append(result.Completed, CompletedShare{
			BookingID:       e.id,
			RiderID:         e.riderID,
			Seats:           e.seats,
			FinalShareCents: shares[i],
		})
		s.notify(e.riderID, "trip.completed", map[string]any{
			"booking_id":        e.id,
			"ride_id":           rideID,
			"final_share_cents": shares[i],
		})
	}

	if _, err := s.db.Exec(ctx, `UPDATE rides SET status=$2 WHERE id=$1`, rideID, ride.StatusCompleted); err != nil {
		s.logger.Error("ride status update failed", "ride_id", rideID, "error", err)
	}

	observability.TripsCompleted.Inc()
	s.notify(driverID, "ride.completed", map[string]any{"ride_id": rideID})
	return result, nil
}

// Cancel moves an open or authorized booking to cancelled and returns its
// seats to the ride. Inside the late-cancellation window the result flags a
// possible fee; the cancellation itself always goes through.
func (s *Service) Cancel(ctx context.Context, callerID, bookingID string) (CancelResult, error) {
	var b Booking
	var driverID, rideStatus string
	var departure time.Time

	err := db.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT b.id, b.ride_id, b.rider_id, b.seats, b.status, b.auth_estimate_cents, COALESCE(b.payment_ref,''), b.created_at, r.driver_id, r.departure_at, r.status
			FROM bookings b JOIN rides r ON r.id=b.ride_id
			WHERE b.id=$1 FOR UPDATE OF b
		`, bookingID)
		if err := row.Scan(&b.ID, &b.RideID, &b.RiderID, &b.Seats, &b.Status, &b.AuthEstimateCents, &b.PaymentRef, &b.CreatedAt, &driverID, &departure, &rideStatus); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "booking not found")
			}
			return err
		}

		if callerID != b.RiderID && callerID != driverID {
			return apperr.New(apperr.KindForbidden, "Only the rider or driver can cancel this booking")
		}
		if b.Status != StatusOpen && b.Status != StatusAuthorized {
			return apperr.New(apperr.KindConflict, "booking in status %q cannot be cancelled", b.Status)
		}

		if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$2 WHERE id=$1`, bookingID, StatusCancelled); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE rides
			SET seats_available = seats_available + $2,
			    status = CASE WHEN status=$3 THEN $4 ELSE status END
			WHERE id=$1
		`, b.RideID, b.Seats, ride.StatusFull, ride.StatusOpen)
		return err
	})
	if err != nil {
		return CancelResult{}, err
	}

	b.Status = StatusCancelled
	s.release(ctx, b.PaymentRef, b.ID)

	late := departure.Sub(s.now()) < lateCancelWindow
	msg := "Booking cancelled"
	if late {
		msg = "Booking cancelled. A late cancellation fee may apply."
	}

	observability.BookingsCancelled.Inc()
	data := map[string]any{"booking_id": b.ID, "ride_id": b.RideID}
	s.notify(b.RiderID, "booking.cancelled", data)
	s.notify(driverID, "booking.cancelled", data)

	return CancelResult{Booking: b, LateFeePossible: late, Message: msg}, nil
}

// Get returns a booking to one of its parties.
func (s *Service) Get(ctx context.Context, callerID, bookingID string) (Booking, error) {
	b, driverID, err := s.loadWithDriver(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if callerID != b.RiderID && callerID != driverID {
		return Booking{}, apperr.New(apperr.KindForbidden, "Only the rider or driver can view this booking")
	}
	return b, nil
}

func (s *Service) loadWithDriver(ctx context.Context, bookingID string) (Booking, string, error) {
	var b Booking
	var driverID string
	row := s.db.QueryRow(ctx, `
		SELECT b.id, b.ride_id, b.rider_id, b.seats, b.status, b.auth_estimate_cents, b.final_share_cents, b.code_expires_at, b.trip_started_at, b.trip_completed_at, b.created_at, r.driver_id
		FROM bookings b JOIN rides r ON r.id=b.ride_id
		WHERE b.id=$1
	`, bookingID)
	if err := row.Scan(&b.ID, &b.RideID, &b.RiderID, &b.Seats, &b.Status, &b.AuthEstimateCents, &b.FinalShareCents, &b.CodeExpiresAt, &b.TripStartedAt, &b.TripCompletedAt, &b.CreatedAt, &driverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, "", apperr.New(apperr.KindNotFound, "booking not found")
		}
		return Booking{}, "", err
	}
	return b, driverID, nil
}

func (s *Service) notify(userID, event string, data map[string]any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, event, data)
}

func (s *Service) hold(ctx context.Context, amountCents int64, riderID string) (string, error) {
	if s.gateway == nil {
		return "", nil
	}
	return s.gateway.Hold(ctx, amountCents, "usd", riderID)
}

// capture and release run after commit; their failures are logged, never
// used to reverse the transition.
func (s *Service) capture(ctx context.Context, ref, bookingID string) {
	if s.gateway == nil || ref == "" {
		return
	}
	if err := s.gateway.Capture(ctx, ref); err != nil {
		s.logger.Error("payment capture failed", "booking_id", bookingID, "error", err)
	}
}

func (s *Service) release(ctx context.Context, ref, bookingID string) {
	if s.gateway == nil || ref == "" {
		return
	}
	if err := s.gateway.Release(ctx, ref); err != nil {
		s.logger.Error("payment release failed", "booking_id", bookingID, "error", err)
	}
}
