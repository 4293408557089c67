// api/service/dashboard_service.go
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/campuspulse/api/model"
)

// DashboardStore is the read surface the service needs. *dao.DashboardDAO is
// the production implementation. Every read is tenant-scoped by signature;
// a handler cannot ask for unscoped dashboard data.
type DashboardStore interface {
	ListTeachers(ctx context.Context, tenantID string, limit, offset int) ([]model.TeacherSummary, error)
	ListStudents(ctx context.Context, tenantID string, limit, offset int) ([]model.StudentSummary, error)
	ListAnnouncements(ctx context.Context, tenantID string) ([]model.Announcement, error)
	Timetable(ctx context.Context, tenantID string) ([]model.TimetableSlot, error)
	AttendanceToday(ctx context.Context, tenantID string) (model.AttendanceSummary, error)
	CountByRole(ctx context.Context, tenantID string, role model.Role) (int64, error)
	CountAnnouncements(ctx context.Context, tenantID string) (int64, error)
}

// TenantStore resolves tenant records. *dao.TenantDAO is the production
// implementation.
type TenantStore interface {
	GetTenant(ctx context.Context, tenantID string) (model.Tenant, error)
}

// IDashboardService is the handler-facing interface, mocked in controller tests.
type IDashboardService interface {
	Teachers(ctx context.Context, tenantID string, limit, offset int) ([]model.TeacherSummary, error)
	Students(ctx context.Context, tenantID string, limit, offset int) ([]model.StudentSummary, error)
	Announcements(ctx context.Context, tenantID string) ([]model.Announcement, error)
	Timetable(ctx context.Context, tenantID string) ([]model.TimetableSlot, error)
	AttendanceToday(ctx context.Context, tenantID string) (model.AttendanceSummary, error)
	Overview(ctx context.Context, tenantID string) (model.SchoolOverview, error)
}

// DashboardService serves the dashboard payloads. Pass-through reads: no
// business rules live here, authorization happened in the guard before any
// of these run.
type DashboardService struct {
	store   DashboardStore
	tenants TenantStore
}

func NewDashboardService(store DashboardStore, tenants TenantStore) *DashboardService {
	return &DashboardService{store: store, tenants: tenants}
}

func (s *DashboardService) Teachers(ctx context.Context, tenantID string, limit, offset int) ([]model.TeacherSummary, error) {
	return s.store.ListTeachers(ctx, tenantID, limit, offset)
}

func (s *DashboardService) Students(ctx context.Context, tenantID string, limit, offset int) ([]model.StudentSummary, error) {
	return s.store.ListStudents(ctx, tenantID, limit, offset)
}

func (s *DashboardService) Announcements(ctx context.Context, tenantID string) ([]model.Announcement, error) {
	return s.store.ListAnnouncements(ctx, tenantID)
}

func (s *DashboardService) Timetable(ctx context.Context, tenantID string) ([]model.TimetableSlot, error) {
	return s.store.Timetable(ctx, tenantID)
}

func (s *DashboardService) AttendanceToday(ctx context.Context, tenantID string) (model.AttendanceSummary, error) {
	return s.store.AttendanceToday(ctx, tenantID)
}

// Overview fans the tenant lookup and the three counts out in parallel.
func (s *DashboardService) Overview(ctx context.Context, tenantID string) (model.SchoolOverview, error) {
	overview := model.SchoolOverview{TenantID: tenantID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tenant, err := s.tenants.GetTenant(gctx, tenantID)
		overview.SchoolName = tenant.Name
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountByRole(gctx, tenantID, model.RoleTeacher)
		overview.Teachers = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountByRole(gctx, tenantID, model.RoleStudent)
		overview.Students = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountAnnouncements(gctx, tenantID)
		overview.Announcements = n
		return err
	})

	if err := g.Wait(); err != nil {
		return model.SchoolOverview{}, err
	}
	return overview, nil
}
