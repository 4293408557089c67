// api/controller/dashboard_controller.go
package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/campuspulse/api/authz"
	"github.com/campuspulse/api/cache"
	"github.com/campuspulse/api/guard"
	"github.com/campuspulse/api/middleware"
	"github.com/campuspulse/api/model"
	"github.com/campuspulse/api/service"
	helper_util "github.com/campuspulse/api/util/helper"
)

// DashboardController declares the protected dashboard routes. Each route
// states its required roles, tenant scoping, volatility class and cache
// scope once, next to the handler; the guard enforces them server-side.
// Paginated routes fold their parameters into the cache variant so two
// pages never share an entry.
type DashboardController struct {
	svc   service.IDashboardService
	guard *guard.Guard
}

func NewDashboardController(svc service.IDashboardService, g *guard.Guard) *DashboardController {
	return &DashboardController{svc: svc, guard: g}
}

func (ctrl *DashboardController) RegisterRoutes(rg *gin.RouterGroup) {
	schools := rg.Group("/schools/:tenantId")

	schools.GET("/overview", middleware.Protected(ctrl.guard, "dashboard.overview",
		authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}, TenantScoped: true},
		cache.Moderate, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				overview, err := ctrl.svc.Overview(ctx, p.TenantID)
				if err != nil {
					return nil, err
				}
				return json.Marshal(overview)
			}, "", nil
		}))

	schools.GET("/teachers", middleware.Protected(ctrl.guard, "dashboard.teachers",
		authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}, TenantScoped: true},
		cache.Slow, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			limit, offset, err := helper_util.GetPaginationParams(c)
			if err != nil {
				return nil, "", err
			}
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				teachers, err := ctrl.svc.Teachers(ctx, p.TenantID, limit, offset)
				if err != nil {
					return nil, err
				}
				return json.Marshal(teachers)
			}, paginationVariant(limit, offset), nil
		}))

	schools.GET("/students", middleware.Protected(ctrl.guard, "dashboard.students",
		authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal, model.RoleTeacher}, TenantScoped: true},
		cache.Slow, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			limit, offset, err := helper_util.GetPaginationParams(c)
			if err != nil {
				return nil, "", err
			}
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				students, err := ctrl.svc.Students(ctx, p.TenantID, limit, offset)
				if err != nil {
					return nil, err
				}
				return json.Marshal(students)
			}, paginationVariant(limit, offset), nil
		}))

	schools.GET("/announcements", middleware.Protected(ctrl.guard, "dashboard.announcements",
		authz.Requirement{TenantScoped: true}, // any authenticated active principal
		cache.Static, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				announcements, err := ctrl.svc.Announcements(ctx, p.TenantID)
				if err != nil {
					return nil, err
				}
				return json.Marshal(announcements)
			}, "", nil
		}))

	schools.GET("/timetable", middleware.Protected(ctrl.guard, "dashboard.timetable",
		authz.Requirement{RequiredRoles: []model.Role{model.RoleTeacher, model.RoleStudent, model.RoleParent}, TenantScoped: true},
		cache.Static, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				timetable, err := ctrl.svc.Timetable(ctx, p.TenantID)
				if err != nil {
					return nil, err
				}
				return json.Marshal(timetable)
			}, "", nil
		}))

	schools.GET("/attendance/today", middleware.Protected(ctrl.guard, "dashboard.attendance.today",
		authz.Requirement{RequiredRoles: []model.Role{model.RoleTeacher}, TenantScoped: true},
		cache.Realtime, guard.ScopeShared,
		func(c *gin.Context) (guard.Handler, string, error) {
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				attendance, err := ctrl.svc.AttendanceToday(ctx, p.TenantID)
				if err != nil {
					return nil, err
				}
				return json.Marshal(attendance)
			}, "", nil
		}))

	// The identity record is one individual's data, so it is cached per
	// principal, never shared across a (tenant, role) pair.
	rg.GET("/me", middleware.Protected(ctrl.guard, "session.me",
		authz.Requirement{}, // any authenticated active principal, not tenant scoped
		cache.Realtime, guard.ScopePersonal,
		func(c *gin.Context) (guard.Handler, string, error) {
			return func(ctx context.Context, p model.Principal) ([]byte, error) {
				return json.Marshal(p)
			}, "", nil
		}))
}

func paginationVariant(limit, offset int) string {
	return fmt.Sprintf("limit=%d,offset=%d", limit, offset)
}
