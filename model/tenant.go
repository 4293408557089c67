// api/model/tenant.go
package model

// Tenant is one school: the unit of data isolation. ExternalOrgRef is the
// identity provider's organization handle and is globally unique.
type Tenant struct {
	ID             string `json:"id"`
	ExternalOrgRef string `json:"external_org_ref"`
	Name           string `json:"name"`
}
