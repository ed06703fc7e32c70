package search

import "errors"

// flightShare is the fraction of the total budget allowed for the flight leg.
const flightShare = 0.5

// ErrNegativeResidual signals that a flight price leaves no budget for
// lodging. The destination is skipped, never surfaced as a search error.
var ErrNegativeResidual = errors.New("flight price exhausts budget")

// FlightCeiling returns the maximum acceptable flight price for a budget.
func FlightCeiling(totalBudget float64) float64 {
	return totalBudget * flightShare
}

// NightlyCeiling splits the budget left after the flight across the stay.
func NightlyCeiling(totalBudget, flightPrice float64, nights int) (float64, error) {
	if flightPrice >= totalBudget {
		return 0, ErrNegativeResidual
	}
	return (totalBudget - flightPrice) / float64(nights), nil
}
