package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrIllegalTransition is returned when a status change would move a campaign backwards
// or skip a state.
var ErrIllegalTransition = errors.New("illegal campaign status transition")

// IsValid reports whether s is a known status.
func (s CampaignStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusFunded, StatusWithdrawn:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s CampaignStatus) IsTerminal() bool {
	return s == StatusWithdrawn
}

// CanTransition reports whether a campaign may move from one status to another.
// Staying in the same status is always allowed.
//
//	ACTIVE -> FUNDED -> WITHDRAWN
func CanTransition(from, to CampaignStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusActive:
		return to == StatusFunded
	case StatusFunded:
		return to == StatusWithdrawn
	}
	return false
}

// ValidateTransition is CanTransition returning an error.
func ValidateTransition(from, to CampaignStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// EvaluateStatus derives the status implied by the accumulated amount. Only ACTIVE campaigns
// move (to FUNDED once the target is reached); every other status is returned unchanged.
func EvaluateStatus(status CampaignStatus, currentAmount, targetAmount decimal.Decimal) CampaignStatus {
	if status == StatusActive && currentAmount.GreaterThanOrEqual(targetAmount) {
		return StatusFunded
	}
	return status
}

// ApplyDonation computes the state that results from adding amount to observed.
// A terminal campaign accepts no further amounts.
func ApplyDonation(observed CampaignState, amount, targetAmount decimal.Decimal) (CampaignState, error) {
	if observed.Status.IsTerminal() {
		return observed, fmt.Errorf("campaign is %s, no further donations can be applied", observed.Status)
	}
	if !IsWholePositive(amount) {
		return observed, fmt.Errorf("donation amount must be a positive integer, got %s", amount.String())
	}
	nextAmount := observed.CurrentAmount.Add(amount)
	next := CampaignState{
		CurrentAmount: nextAmount,
		Status:        EvaluateStatus(observed.Status, nextAmount, targetAmount),
	}
	if err := ValidateTransition(observed.Status, next.Status); err != nil {
		return observed, err
	}
	return next, nil
}

// ValidateStateChange checks a compare-and-set request: the status transition must be legal
// and the amount may never decrease.
func ValidateStateChange(observed, next CampaignState) error {
	if err := ValidateTransition(observed.Status, next.Status); err != nil {
		return err
	}
	if next.CurrentAmount.LessThan(observed.CurrentAmount) {
		return fmt.Errorf("%w: amount would decrease from %s to %s", ErrIllegalTransition, observed.CurrentAmount, next.CurrentAmount)
	}
	if !IsWholeNonNegative(next.CurrentAmount) {
		return fmt.Errorf("%w: amount %s is not a non-negative integer", ErrIllegalTransition, next.CurrentAmount)
	}
	return nil
}
