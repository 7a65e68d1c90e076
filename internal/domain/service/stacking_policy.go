package service

import (
	"fmt"

	"github.com/letsema/mfi/internal/domain/model"
)

// StackingDecision is the outcome of a loan-stacking check.
type StackingDecision struct {
	Reason             string
	OpenLoansElsewhere int
	Allowed            bool
}

// StackingPolicy decides whether approving a loan would let a borrower stack
// credit across institutions in the same district.
type StackingPolicy struct {
	maxOpenLoansElsewhere int
	maxDefaultedPayments  int
}

// NewStackingPolicy returns a policy allowing up to maxOpenLoansElsewhere
// active loans at other institutions and maxDefaultedPayments defaults.
func NewStackingPolicy(maxOpenLoansElsewhere, maxDefaultedPayments int) *StackingPolicy {
	return &StackingPolicy{
		maxOpenLoansElsewhere: maxOpenLoansElsewhere,
		maxDefaultedPayments:  maxDefaultedPayments,
	}
}

// Evaluate checks profile on behalf of institutionID. A borrower with no
// consolidated profile has no history to stack against.
func (p *StackingPolicy) Evaluate(profile *model.ConsolidatedCreditProfile, institutionID string) StackingDecision {
	if profile == nil {
		return StackingDecision{Allowed: true, Reason: "no consolidated credit history"}
	}

	elsewhere := 0
	for id, snap := range profile.Snapshots() {
		if id != institutionID {
			elsewhere += snap.ActiveLoans
		}
	}

	totals := profile.Totals()
	switch {
	case totals.DefaultedPayments > p.maxDefaultedPayments:
		return StackingDecision{
			OpenLoansElsewhere: elsewhere,
			Reason:             fmt.Sprintf("%d defaulted payments on record", totals.DefaultedPayments),
		}
	case elsewhere > p.maxOpenLoansElsewhere:
		return StackingDecision{
			OpenLoansElsewhere: elsewhere,
			Reason:             fmt.Sprintf("%d open loans at other institutions", elsewhere),
		}
	default:
		return StackingDecision{Allowed: true, OpenLoansElsewhere: elsewhere, Reason: "within stacking limits"}
	}
}
