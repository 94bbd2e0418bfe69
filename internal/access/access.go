// Package access is the single authorization contract used by the router and
// by every usecase entry point.
package access

import (
	"fmt"
	"slices"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"
)

// Principal is the authenticated caller. The zero value is anonymous.
type Principal struct {
	UserID string
	Role   domain.Role
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

func (p Principal) Is(role domain.Role) bool {
	return p.Role == role
}

// Capability is one check a caller must pass.
type Capability interface {
	Check(p Principal) error
}

type CapabilityFunc func(p Principal) error

func (f CapabilityFunc) Check(p Principal) error { return f(p) }

// Require runs every capability in order and returns the first failure.
// An anonymous caller always fails with ErrUnauthorized.
func Require(p Principal, caps ...Capability) error {
	if !p.Authenticated() {
		return xerrors.ErrUnauthorized
	}
	for _, c := range caps {
		if err := c.Check(p); err != nil {
			return err
		}
	}
	return nil
}

func Authenticated() Capability {
	return CapabilityFunc(func(p Principal) error {
		if !p.Authenticated() {
			return xerrors.ErrUnauthorized
		}
		return nil
	})
}

func HasRole(roles ...domain.Role) Capability {
	return CapabilityFunc(func(p Principal) error {
		if slices.Contains(roles, p.Role) {
			return nil
		}
		return fmt.Errorf("%w: insufficient role", xerrors.ErrForbidden)
	})
}

// OwnerOrRole passes for the record owner or any of the listed roles.
func OwnerOrRole(ownerID string, roles ...domain.Role) Capability {
	return CapabilityFunc(func(p Principal) error {
		if ownerID != "" && p.UserID == ownerID {
			return nil
		}
		if slices.Contains(roles, p.Role) {
			return nil
		}
		return fmt.Errorf("%w: not the owner of this record", xerrors.ErrForbidden)
	})
}
