package booking

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func asRider(c *fiber.Ctx) error {
	c.Locals("user_id", "rider-1")
	return c.Next()
}

func allowAll(c *fiber.Ctx) error { return c.Next() }

func newApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/bookings"), svc, asRider, allowAll)
	return app
}

func TestBookingHandlersCreate(t *testing.T) {
	svc, mock, _, _ := newService(t)

	mock.ExpectBegin()
	expectRideLock(mock, "driver-1", "open", 4, 4, 3000)
	mock.ExpectExec(`UPDATE rides SET seats_available`).
		WithArgs("ride-1", 3, "open").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(pgxmock.AnyArg(), "ride-1", "rider-1", 1, "authorized", int64(3000), "123456", pgxmock.AnyArg(), "pi_test").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(fixedNow))
	mock.ExpectCommit()

	app := newApp(svc)

	body, _ := json.Marshal(map[string]any{"ride_id": "ride-1", "seats": 1})
	req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d %v", resp.StatusCode, err)
	}

	var parsed struct {
		Booking Booking `json:"booking"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Booking.AuthEstimateCents != 3000 {
		t.Fatalf("estimate: %d", parsed.Booking.AuthEstimateCents)
	}
}

func TestBookingHandlersCreateMissingRideID(t *testing.T) {
	svc, _, _, _ := newService(t)
	app := newApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/bookings/", bytes.NewReader([]byte(`{"seats":1}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d %v", resp.StatusCode, err)
	}
}

func TestBookingHandlersStart(t *testing.T) {
	svc, mock, _, _ := newService(t)

	mock.ExpectBegin()
	expectBookingLock(mock, StatusAuthorized, "123456", fixedNow.Add(10*time.Minute))
	mock.ExpectExec(`UPDATE bookings SET status=\$2, trip_started_at`).
		WithArgs("booking-1", StatusInProgress, fixedNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE rides SET status`).
		WithArgs("ride-1", "in_progress").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	app := newApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/start", bytes.NewReader([]byte(`{"code":"123456"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("start status: %d %v", resp.StatusCode, err)
	}
}

func TestBookingHandlersStartMissingCode(t *testing.T) {
	svc, _, _, _ := newService(t)
	app := newApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/start", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d %v", resp.StatusCode, err)
	}
}

func TestBookingHandlersStartWrongCode(t *testing.T) {
	svc, mock, _, _ := newService(t)

	mock.ExpectBegin()
	expectBookingLock(mock, StatusAuthorized, "123456", fixedNow.Add(10*time.Minute))
	mock.ExpectRollback()

	app := newApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/bookings/booking-1/start", bytes.NewReader([]byte(`{"code":"000000"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d %v", resp.StatusCode, err)
	}
}

func TestBookingHandlersCancel(t *testing.T) {
	svc, mock, _, _ := newService(t)

	mock.ExpectBegin()
	expectCancelLock(mock, StatusAuthorized, fixedNow.Add(2*time.Hour))
	mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("booking-1", StatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE rides`).
		WithArgs("ride-1", 1, "full", "open").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	app := newApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/bookings/booking-1/cancel", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status: %d %v", resp.StatusCode, err)
	}

	var parsed struct {
		LateFeePossible bool   `json:"late_fee_possible"`
		Message         string `json:"message"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !parsed.LateFeePossible {
		t.Fatal("expected late fee flag in response")
	}
}

func TestBookingHandlersGet(t *testing.T) {
	svc, mock, _, _ := newService(t)

	expectBookingLoad(mock, StatusAuthorized)

	app := newApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/bookings/booking-1", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %d %v", resp.StatusCode, err)
	}
}

func TestRideCompleteHandler(t *testing.T) {
	svc, mock, _, _ := newService(t)

	mock.ExpectQuery(`SELECT driver_id, status, total_cost_cents FROM rides`).
		WithArgs("ride-1").
		WillReturnRows(pgxmock.NewRows([]string{"driver_id", "status", "total_cost_cents"}).
			AddRow("rider-1", "in_progress", int64(1000)))
	mock.ExpectQuery(`SELECT id, rider_id, seats, COALESCE`).
		WithArgs("ride-1", StatusInProgress).
		WillReturnRows(pgxmock.NewRows([]string{"id", "rider_id", "seats", "payment_ref"}).
			AddRow("b-1", "rider-2", 1, ""))
	mock.ExpectExec(`UPDATE bookings SET status=\$2, final_share_cents`).
		WithArgs("b-1", StatusCompleted, int64(1000), fixedNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE rides SET status`).
		WithArgs("ride-1", "completed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	app := fiber.New()
	RegisterRideRoutes(app.Group("/rides"), svc, asRider)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/rides/ride-1/complete", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status: %d %v", resp.StatusCode, err)
	}
}

func TestRideCompleteHandlerNotDriver(t *testing.T) {
	svc, mock, _, _ := newService(t)

	mock.ExpectQuery(`SELECT driver_id, status, total_cost_cents FROM rides`).
		WithArgs("ride-1").
		WillReturnRows(pgxmock.NewRows([]string{"driver_id", "status", "total_cost_cents"}).
			AddRow("driver-1", "in_progress", int64(1000)))

	app := fiber.New()
	RegisterRideRoutes(app.Group("/rides"), svc, asRider)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/rides/ride-1/complete", nil))
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d %v", resp.StatusCode, err)
	}
}
