// api/authz/engine.go
package authz

import (
	"github.com/campuspulse/api/model"
)

// Requirement is declared statically per protected operation. An empty
// RequiredRoles set means any authenticated active principal may call it.
type Requirement struct {
	RequiredRoles []model.Role
	TenantScoped  bool
}

// DenyReason enumerates why a request was refused. A decision never carries
// partial allowance.
type DenyReason string

const (
	ReasonUnauthenticated DenyReason = "UNAUTHENTICATED"
	ReasonRoleMismatch    DenyReason = "ROLE_MISMATCH"
	ReasonCrossTenant     DenyReason = "CROSS_TENANT"
	ReasonInactive        DenyReason = "INACTIVE"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

var allow = Decision{Allowed: true}

func deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide is the single authorization rule set, shared verbatim by the server
// guard and the advisory client mirror. It is pure: no I/O, no clock, no
// retries. Rules run in order and the first matching outcome wins.
//
// resourceTenantID is the tenant owning the requested resource; it is ignored
// unless the requirement is tenant scoped.
//
// No role, however privileged, crosses a tenant boundary: the tenant rule is
// evaluated even when the role rule passed.
func Decide(p model.Principal, req Requirement, resourceTenantID string) Decision {
	if !p.Active {
		return deny(ReasonInactive)
	}
	if len(req.RequiredRoles) > 0 && !roleMember(p.Role, req.RequiredRoles) {
		return deny(ReasonRoleMismatch)
	}
	// A malformed role stored upstream must never crash the engine; it is a
	// mismatch even for operations open to all roles.
	if !p.Role.Valid() {
		return deny(ReasonRoleMismatch)
	}
	if req.TenantScoped && p.TenantID != resourceTenantID {
		return deny(ReasonCrossTenant)
	}
	return allow
}

func roleMember(r model.Role, set []model.Role) bool {
	for _, candidate := range set {
		if candidate == r {
			return true
		}
	}
	return false
}
