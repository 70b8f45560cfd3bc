package payments

import (
	"context"
	"testing"
)

func TestNoopGateway(t *testing.T) {
	var g Gateway = NoopGateway{}

	ref, err := g.Hold(context.Background(), 1500, "usd", "user-1")
	if err != nil || ref != "" {
		t.Fatalf("expected empty ref without error, got %q %v", ref, err)
	}
	if err := g.Capture(context.Background(), ref); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := g.Release(context.Background(), ref); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestNewGatewaySelection(t *testing.T) {
	if _, ok := NewGateway("").(NoopGateway); !ok {
		t.Fatalf("expected noop gateway without api key")
	}
	if _, ok := NewGateway("sk_test_123").(*StripeGateway); !ok {
		t.Fatalf("expected stripe gateway with api key")
	}
}
