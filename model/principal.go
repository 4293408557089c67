// api/model/principal.go
package model

import "fmt"

// Role is the closed set of actor kinds in a school. Role "privilege" is not
// hierarchical: each operation enumerates its allowed roles explicitly.
type Role string

const (
	RolePrincipal Role = "PRINCIPAL"
	RoleTeacher   Role = "TEACHER"
	RoleStudent   Role = "STUDENT"
	RoleParent    Role = "PARENT"
)

// AllRoles lists every valid role once, in a stable order.
var AllRoles = []Role{RolePrincipal, RoleTeacher, RoleStudent, RoleParent}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RolePrincipal, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// ParseRole converts a stored string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Principal is an authenticated actor. It is immutable after resolution: the
// resolver builds it once per request and the decision engine only reads it.
type Principal struct {
	ID                  string `json:"id"`
	ExternalIdentityRef string `json:"external_identity_ref"`
	Role                Role   `json:"role"`
	TenantID            string `json:"tenant_id"`
	Active              bool   `json:"active"`
}
