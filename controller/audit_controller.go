// api/controller/audit_controller.go
package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/campuspulse/api/audit"
	"github.com/campuspulse/api/authz"
	"github.com/campuspulse/api/cache"
	"github.com/campuspulse/api/guard"
	"github.com/campuspulse/api/middleware"
	"github.com/campuspulse/api/model"
	helper_util "github.com/campuspulse/api/util/helper"
)

// AuditController exposes the decision trail to school principals. Like every
// other school-bound route it is tenant scoped: a principal only ever sees
// their own school's decisions.
type AuditController struct {
	svc   audit.Service
	guard *guard.Guard
}

func NewAuditController(svc audit.Service, g *guard.Guard) *AuditController {
	return &AuditController{svc: svc, guard: g}
}

func (ctrl *AuditController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/schools/:tenantId/audit", middleware.Protected(ctrl.guard, "audit.decisions",
		authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}, TenantScoped: true},
		cache.Realtime, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			from, to, err := helper_util.TimeWindow(c.Query("from"), c.Query("to"))
			if err != nil {
				return nil, "", err
			}
			operation := c.Query("operation")
			// The window and filter select the records, so they select
			// the cache entry too.
			variant := fmt.Sprintf("from=%d,to=%d,operation=%s", from.Unix(), to.Unix(), operation)
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				records, err := ctrl.svc.QueryDecisions(ctx, from, to, p.TenantID, operation)
				if err != nil {
					return nil, err
				}
				return json.Marshal(records)
			}, variant, nil
		}))
}
