package payment

// Status represents the state of a payment attempt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// validTransitions defines the state machine for payment status transitions.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusSucceeded, StatusFailed, StatusCancelled},
	StatusSucceeded: {StatusRefunded},
	StatusFailed:    {},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// IsValid returns true if the status is a recognized payment status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}
