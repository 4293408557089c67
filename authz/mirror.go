// api/authz/mirror.go
package authz

import (
	"github.com/campuspulse/api/model"
)

// Mirror is the client-side copy of the decision logic, consumed by the
// rendering layer to avoid flashing content a user cannot see and to redirect
// proactively.
//
// It is advisory only and carries no enforcement weight: it calls the same
// Decide function the server guard calls, but nothing downstream trusts its
// answer. A bypassed or hostile client still hits the server guard, which is
// the sole authority over which data is returned. Removing the mirror
// entirely must not change any payload the API serves; guard tests exercise
// that contract directly.
type Mirror struct{}

// CanRender reports whether the client should bother rendering the view
// backed by the given operation.
func (Mirror) CanRender(p model.Principal, req Requirement, resourceTenantID string) bool {
	return Decide(p, req, resourceTenantID).Allowed
}

// RedirectReason returns the deny reason for a view the client should not
// render, so the UI can route to the right error page. Empty when allowed.
func (Mirror) RedirectReason(p model.Principal, req Requirement, resourceTenantID string) DenyReason {
	d := Decide(p, req, resourceTenantID)
	if d.Allowed {
		return ""
	}
	return d.Reason
}
