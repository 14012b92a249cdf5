package domain

import "math"

// Split is the allocation of a proposal total between the platform and the
// dispatcher, in centavos.
type Split struct {
	Total      int64 `json:"total"`
	Commission int64 `json:"commission"`
	Payout     int64 `json:"payout"`
}

// RateToBasisPoints converts a fractional commission rate (0.10) to bps (1000).
func RateToBasisPoints(rate float64) int64 {
	return int64(math.Round(rate * 10000))
}

// ComputeSplit charges the commission on the fee only; the tax passes
// through to the dispatcher. Commission rounds half-up to the centavo.
func ComputeSplit(fee, tax int64, rate float64) Split {
	total := fee + tax
	bps := RateToBasisPoints(rate)
	commission := (fee*bps + 5000) / 10000
	return Split{
		Total:      total,
		Commission: commission,
		Payout:     total - commission,
	}
}
