// api/controller/controllers.go
package controller

import (
	"github.com/campuspulse/api/audit"
	"github.com/campuspulse/api/guard"
	"github.com/campuspulse/api/service"
)

// Controllers aggregates every route-registering controller for the router.
type Controllers struct {
	Dashboard *DashboardController
	Audit     *AuditController
}

func InitControllers(dashboardSvc service.IDashboardService, auditSvc audit.Service, g *guard.Guard) *Controllers {
	return &Controllers{
		Dashboard: NewDashboardController(dashboardSvc, g),
		Audit:     NewAuditController(auditSvc, g),
	}
}
