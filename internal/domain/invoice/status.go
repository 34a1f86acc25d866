package invoice

// Status represents the lifecycle state of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every status in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusSent, StatusPaid, StatusCancelled}
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Same-state transitions are never allowed.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSent || target == StatusPaid || target == StatusCancelled
	case StatusSent:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// AllowsContentChanges reports whether items, tax, discount, dates, notes and
// terms may still be edited
func (s Status) AllowsContentChanges() bool {
	return s == StatusDraft || s == StatusSent
}

// AllowsDeletion reports whether an invoice in this status may be deleted
func (s Status) AllowsDeletion() bool {
	return s == StatusDraft
}
