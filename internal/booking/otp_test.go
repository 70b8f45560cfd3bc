package booking

import "testing"

func TestNewTripStartCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := newTripStartCode()
		if err != nil {
			t.Fatalf("code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("length: %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes never vary")
	}
}
