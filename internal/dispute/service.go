package dispute

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"backend-gatoryde/internal/apperr"
	"backend-gatoryde/internal/booking"
	"backend-gatoryde/internal/db"
	"backend-gatoryde/internal/notify"
	"backend-gatoryde/internal/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Service struct {
	db       db.Pool
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(pool db.Pool, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: pool, notifier: notifier, logger: logger, now: time.Now}
}

// Open raises a dispute against a completed booking. The existence check
// and insert share a transaction, and a unique-violation on insert is
// treated the same as a found open dispute, so two concurrent calls cannot
// both succeed.
func (s *Service) Open(ctx context.Context, callerID, bookingID, reason string) (Dispute, error) {
	if len(strings.TrimSpace(reason)) < minTextLen {
		return Dispute{}, apperr.WithFields(apperr.KindInvalidArgument, "invalid dispute",
			map[string]string{"reason": "Reason must be at least 10 characters"})
	}

	d := Dispute{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		OpenedBy:  callerID,
		Reason:    reason,
		Status:    StatusOpen,
	}
	var riderID, driverID string

	err := db.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		var bookingStatus string
		row := tx.QueryRow(ctx, `
			SELECT b.status, b.rider_id, r.driver_id
			FROM bookings b JOIN rides r ON r.id=b.ride_id
			WHERE b.id=$1 FOR UPDATE OF b
		`, bookingID)
		if err := row.Scan(&bookingStatus, &riderID, &driverID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "booking not found")
			}
			return err
		}

		if callerID != riderID && callerID != driverID {
			return apperr.New(apperr.KindForbidden, "Only the rider or driver can dispute this booking")
		}
		if bookingStatus == booking.StatusDisputed {
			return apperr.New(apperr.KindConflict, "A dispute is already open for this booking")
		}
		if bookingStatus != booking.StatusCompleted {
			return apperr.New(apperr.KindConflict, "booking in status %q cannot be disputed", bookingStatus)
		}

		var openCount int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM disputes WHERE booking_id=$1 AND status=$2
		`, bookingID, StatusOpen).Scan(&openCount); err != nil {
			return err
		}
		if openCount > 0 {
			return apperr.New(apperr.KindConflict, "A dispute is already open for this booking")
		}

		insert := tx.QueryRow(ctx, `
			INSERT INTO disputes (id, booking_id, opened_by, reason, status)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING created_at
		`, d.ID, d.BookingID, d.OpenedBy, d.Reason, d.Status)
		if err := insert.Scan(&d.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.KindConflict, "A dispute is already open for this booking")
			}
			return err
		}

		_, err := tx.Exec(ctx, `UPDATE bookings SET status=$2 WHERE id=$1`, bookingID, booking.StatusDisputed)
		return err
	})
	if err != nil {
		return Dispute{}, err
	}

	observability.DisputesOpened.Inc()
	data := map[string]any{"dispute_id": d.ID, "booking_id": bookingID}
	s.notify(riderID, "dispute.opened", data)
	s.notify(driverID, "dispute.opened", data)
	return d, nil
}

// Resolve closes an open dispute with an outcome. A resolved outcome
// returns the booking to completed; rejected leaves it disputed.
func (s *Service) Resolve(ctx context.Context, adminID, disputeID, outcome, resolution string) (Dispute, error) {
	if outcome != StatusResolved && outcome != StatusRejected {
		return Dispute{}, apperr.New(apperr.KindInvalidArgument, `outcome must be "resolved" or "rejected"`)
	}
	if len(strings.TrimSpace(resolution)) < minTextLen {
		return Dispute{}, apperr.WithFields(apperr.KindInvalidArgument, "invalid resolution",
			map[string]string{"resolution": "Resolution must be at least 10 characters"})
	}

	var d Dispute
	var riderID, driverID string

	err := db.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT d.id, d.booking_id, d.opened_by, d.reason, d.status, d.created_at, b.rider_id, r.driver_id
			FROM disputes d
			JOIN bookings b ON b.id=d.booking_id
			JOIN rides r ON r.id=b.ride_id
			WHERE d.id=$1 FOR UPDATE OF d
		`, disputeID)
		if err := row.Scan(&d.ID, &d.BookingID, &d.OpenedBy, &d.Reason, &d.Status, &d.CreatedAt, &riderID, &driverID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "dispute not found")
			}
			return err
		}

		if d.Status != StatusOpen {
			return apperr.New(apperr.KindConflict, "Dispute is already resolved")
		}

		resolvedAt := s.now()
		if _, err := tx.Exec(ctx, `
			UPDATE disputes SET status=$2, resolution=$3, resolved_by=$4, resolved_at=$5 WHERE id=$1
		`, disputeID, outcome, resolution, adminID, resolvedAt); err != nil {
			return err
		}

		if outcome == StatusResolved {
			if _, err := tx.Exec(ctx, `
				UPDATE bookings SET status=$2 WHERE id=$1 AND status=$3
			`, d.BookingID, booking.StatusCompleted, booking.StatusDisputed); err != nil {
				return err
			}
		}

		d.Status = outcome
		d.Resolution = &resolution
		d.ResolvedBy = &adminID
		d.ResolvedAt = &resolvedAt
		return nil
	})
	if err != nil {
		return Dispute{}, err
	}

	observability.DisputesResolved.Inc()
	data := map[string]any{"dispute_id": d.ID, "booking_id": d.BookingID, "outcome": outcome}
	s.notify(riderID, "dispute.resolved", data)
	s.notify(driverID, "dispute.resolved", data)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (Dispute, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, booking_id, opened_by, reason, status, resolution, resolved_by, created_at, resolved_at
		FROM disputes WHERE id=$1
	`, id)
	var d Dispute
	if err := row.Scan(&d.ID, &d.BookingID, &d.OpenedBy, &d.Reason, &d.Status, &d.Resolution, &d.ResolvedBy, &d.CreatedAt, &d.ResolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dispute{}, apperr.New(apperr.KindNotFound, "dispute not found")
		}
		return Dispute{}, err
	}
	return d, nil
}

func (s *Service) notify(userID, event string, data map[string]any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, event, data)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
