package order

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Role is who is acting. RoleSystem is internal (claim arbiter, offer timers)
// and cannot be parsed from a request.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRider      Role = "rider"
	RoleRestaurant Role = "restaurant"
	RoleAdmin      Role = "admin"
	RoleSystem     Role = "system"
)

// ParseRole accepts the roles an authenticated connection or request may carry.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleRider, RoleRestaurant, RoleAdmin:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated identity behind a change.
type Actor struct {
	Role Role
	ID   kernel.UUID
}

// NewActor builds an external actor; both role and id are mandatory.
func NewActor(role Role, id kernel.UUID) (Actor, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return Actor{}, err
	}
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	return Actor{Role: role, ID: id}, nil
}

// SystemActor is used by the claim arbiter and the offer timers.
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}

func (a Actor) is(role Role, id kernel.UUID) bool {
	return a.Role == role && !id.IsZero() && a.ID.IsEqual(id)
}

func (a Actor) String() string {
	if a.IsSystem() {
		return string(RoleSystem)
	}
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}
