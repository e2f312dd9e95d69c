package checkout

import (
	"errors"
)

var (
	// ErrCheckoutInFlight means the user already has a pending transaction.
	ErrCheckoutInFlight = errors.New("a checkout is already in flight for this user")
	// ErrAlreadyPurchased means the user already completed a purchase of the plan.
	ErrAlreadyPurchased = errors.New("user has already purchased this plan")
)

// GateDecision is the outcome of a checkout admission check.
type GateDecision struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Pending   int64  `json:"pending_transactions"`
	Completed int64  `json:"completed_transactions"`
}

// Err maps a denial to its sentinel error, nil when allowed.
func (d GateDecision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Pending > 0 {
		return ErrCheckoutInFlight
	}
	return ErrAlreadyPurchased
}

// decide evaluates the admission rule over the user's transaction counts:
// deny while any checkout is pending, deny once the plan was purchased.
func decide(pending, completedSamePlan int64) GateDecision {
	d := GateDecision{Pending: pending, Completed: completedSamePlan}
	switch {
	case pending > 0:
		d.Reason = "Pending transaction exists"
	case completedSamePlan > 0:
		d.Reason = "Already purchased"
	default:
		d.Allowed = true
		d.Reason = "Access granted"
	}
	return d
}
