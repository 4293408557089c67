// api/audit/model.go
package audit

import (
	"time"
)

// DecisionRecord captures one guard decision, allowed or denied. Records are
// written off the request path; a lost record never fails a request.
type DecisionRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	PrincipalID string    `json:"principal_id"`
	Role        string    `json:"role"`
	TenantID    string    `json:"tenant_id"`
	Operation   string    `json:"operation"`
	Allowed     bool      `json:"allowed"`
	Reason      string    `json:"reason,omitempty"`
	CacheStatus string    `json:"cache_status,omitempty"`
}
