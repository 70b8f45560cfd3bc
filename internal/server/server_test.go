package server

import (
	"net/http/httptest"
	"testing"

	"backend-gatoryde/internal/config"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil, nil)

	for _, route := range []struct{ method, path string }{
		{"POST", "/rides"},
		{"POST", "/bookings"},
		{"POST", "/bookings/b-1/start"},
		{"POST", "/bookings/b-1/cancel"},
		{"POST", "/rides/r-1/complete"},
		{"POST", "/disputes"},
		{"POST", "/disputes/d-1/resolve"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", route.method, route.path, err)
		}
		if resp.StatusCode != 401 {
			t.Fatalf("%s %s: expected 401 without token, got %d", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestOpenRoutesWithoutAuth(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil, nil)

	// listing rides hits the nil pool and should not panic the app
	req := httptest.NewRequest("GET", "/health", nil)
	if _, err := s.App.Test(req); err != nil {
		t.Fatalf("test request: %v", err)
	}
}
