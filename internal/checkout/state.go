package checkout

import (
	"errors"
	"fmt"
)

// State is a step of the checkout flow.
type State string

const (
	StateForm                State = "form"
	StatePaymentInstructions State = "payment_instructions"
	StateSubmitting          State = "submitting"
	StateConfirmed           State = "confirmed"
	StateFailed              State = "failed"
)

var (
	ErrInvalidTransition  = errors.New("invalid checkout transition")
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	ErrAlreadyConfirmed   = errors.New("order already confirmed")
)

// validTransitions defines allowed state transitions. Failed is shown as the
// payment instructions step with an error, so it can retry or go back to
// the form.
var validTransitions = map[State][]State{
	StateForm:                {StatePaymentInstructions},
	StatePaymentInstructions: {StateForm, StateSubmitting},
	StateSubmitting:          {StateConfirmed, StateFailed},
	StateFailed:              {StateSubmitting, StateForm},
	StateConfirmed:           {StateForm},
}

// CanTransitionTo checks if the flow can move to the target state
func (s State) CanTransitionTo(target State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func transitionError(from, to State) error {
	switch from {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateConfirmed:
		return ErrAlreadyConfirmed
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
}
