package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status is the closed set of lifecycle states. The zero value is Unknown and never valid.
type Status int

const (
	Unknown Status = iota
	Pending
	Confirmed
	Preparing
	Available
	Accepted
	PickedUp
	InTransit
	Delivered
	Cancelled
	Expired
)

var statusNames = map[Status]string{
	Pending:   "pending",
	Confirmed: "confirmed",
	Preparing: "preparing",
	Available: "available",
	Accepted:  "accepted",
	PickedUp:  "picked_up",
	InTransit: "in_transit",
	Delivered: "delivered",
	Cancelled: "cancelled",
	Expired:   "expired",
}

// transitions is the single authoritative table of legal edges.
var transitions = map[Status][]Status{
	Pending:   {Confirmed, Cancelled},
	Confirmed: {Preparing, Cancelled},
	Preparing: {Available, Cancelled},
	Available: {Accepted, Expired, Cancelled},
	Accepted:  {PickedUp, Cancelled},
	PickedUp:  {InTransit, Cancelled},
	InTransit: {Delivered, Cancelled},
	Expired:   {Available, Cancelled},
	Delivered: {},
	Cancelled: {},
}

// ParseStatus maps a wire name ("picked_up") to its Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Confirmed, Preparing, Available, Accepted, PickedUp, InTransit, Delivered, Cancelled, Expired}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// CanTransitionTo reports whether to is a legal successor of s.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns the legal successors of s.
func (s Status) Next() []Status {
	next := make([]Status, len(transitions[s]))
	copy(next, transitions[s])
	return next
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// HasCourier reports whether an order in s must carry an assigned courier.
func (s Status) HasCourier() bool {
	switch s {
	case Accepted, PickedUp, InTransit, Delivered:
		return true
	default:
		return false
	}
}

// InKitchen reports the states in which customers and admins may still cancel.
func (s Status) InKitchen() bool {
	return s == Pending || s == Confirmed || s == Preparing
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
