package fare

import (
	"fmt"

	"backend-gatoryde/internal/apperr"
)

// Pricing bounds for a posted ride. Costs are integer cents; no floats
// touch money anywhere in this package.
const (
	MinCostCents = 100
	MaxCostCents = 50000
	MinRiders    = 1
	MaxRiders    = 8
)

// EstimateShare projects one rider's cost if they book requestedSeats on a
// ride that already has occupiedSeats taken. It rounds up so an estimate
// never under-quotes the final reconciled share.
func EstimateShare(totalCostCents int64, occupiedSeats, requestedSeats int) (int64, error) {
	if totalCostCents < 0 {
		return 0, apperr.New(apperr.KindInvalidArgument, "total cost cannot be negative")
	}
	if occupiedSeats < 0 {
		return 0, apperr.New(apperr.KindInvalidArgument, "occupied seats cannot be negative")
	}
	if requestedSeats < 1 {
		return 0, apperr.New(apperr.KindInvalidArgument, "requested seats must be positive")
	}
	seats := int64(occupiedSeats + requestedSeats)
	return (totalCostCents + seats - 1) / seats, nil
}

// FinalShares splits totalCostCents across bookings by seat count. The
// result has the same order and length as seats and always sums exactly to
// totalCostCents: each seat gets the floor share, and the remainder cents
// are handed out seat-by-seat in input order until exhausted.
func FinalShares(totalCostCents int64, seats []int) ([]int64, error) {
	if totalCostCents < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "total cost cannot be negative")
	}

	var totalSeats int64
	for i, n := range seats {
		if n < 1 {
			return nil, apperr.New(apperr.KindInvalidArgument, "booking %d has non-positive seats", i)
		}
		totalSeats += int64(n)
	}
	if totalSeats == 0 {
		return []int64{}, nil
	}

	base := totalCostCents / totalSeats
	remainder := totalCostCents % totalSeats

	shares := make([]int64, len(seats))
	for i, n := range seats {
		shares[i] = base * int64(n)
		extra := int64(n)
		if extra > remainder {
			extra = remainder
		}
		shares[i] += extra
		remainder -= extra
	}
	return shares, nil
}

// RiderShares is the equal per-head split: the first (total mod riderCount)
// riders pay one extra cent so the sum is exact.
func RiderShares(totalCostCents int64, riderCount int) ([]int64, error) {
	if riderCount <= 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "rider count must be positive")
	}
	if totalCostCents < 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "total cost cannot be negative")
	}

	base := totalCostCents / int64(riderCount)
	remainder := totalCostCents % int64(riderCount)

	shares := make([]int64, riderCount)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares, nil
}

// Validation accumulates every violated pricing constraint instead of
// stopping at the first.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidatePricing checks a ride's total cost and rider capacity against the
// marketplace bounds.
func ValidatePricing(totalCostCents int64, riderCount int) Validation {
	var errs []string
	if totalCostCents < MinCostCents {
		errs = append(errs, "Minimum cost is $1.00")
	}
	if totalCostCents > MaxCostCents {
		errs = append(errs, "Maximum cost is $500.00")
	}
	if riderCount < MinRiders {
		errs = append(errs, "Must have at least 1 rider")
	}
	if riderCount > MaxRiders {
		errs = append(errs, fmt.Sprintf("Maximum %d riders allowed", MaxRiders))
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}
