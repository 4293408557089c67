// test/mock/dashboard.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campuspulse/api/model"
)

// MockDashboardStore is a mock implementation of service.DashboardStore
type MockDashboardStore struct {
	mock.Mock
}

func (m *MockDashboardStore) ListTeachers(ctx context.Context, tenantID string, limit, offset int) ([]model.TeacherSummary, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]model.TeacherSummary), args.Error(1)
}

func (m *MockDashboardStore) ListStudents(ctx context.Context, tenantID string, limit, offset int) ([]model.StudentSummary, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]model.StudentSummary), args.Error(1)
}

func (m *MockDashboardStore) ListAnnouncements(ctx context.Context, tenantID string) ([]model.Announcement, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]model.Announcement), args.Error(1)
}

func (m *MockDashboardStore) Timetable(ctx context.Context, tenantID string) ([]model.TimetableSlot, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]model.TimetableSlot), args.Error(1)
}

func (m *MockDashboardStore) AttendanceToday(ctx context.Context, tenantID string) (model.AttendanceSummary, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(model.AttendanceSummary), args.Error(1)
}

func (m *MockDashboardStore) CountByRole(ctx context.Context, tenantID string, role model.Role) (int64, error) {
	args := m.Called(ctx, tenantID, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDashboardStore) CountAnnouncements(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTenantStore is a mock implementation of service.TenantStore
type MockTenantStore struct {
	mock.Mock
}

func (m *MockTenantStore) GetTenant(ctx context.Context, tenantID string) (model.Tenant, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(model.Tenant), args.Error(1)
}

// MockDashboardService is a mock implementation of service.IDashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Teachers(ctx context.Context, tenantID string, limit, offset int) ([]model.TeacherSummary, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]model.TeacherSummary), args.Error(1)
}

func (m *MockDashboardService) Students(ctx context.Context, tenantID string, limit, offset int) ([]model.StudentSummary, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]model.StudentSummary), args.Error(1)
}

func (m *MockDashboardService) Announcements(ctx context.Context, tenantID string) ([]model.Announcement, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]model.Announcement), args.Error(1)
}

func (m *MockDashboardService) Timetable(ctx context.Context, tenantID string) ([]model.TimetableSlot, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]model.TimetableSlot), args.Error(1)
}

func (m *MockDashboardService) AttendanceToday(ctx context.Context, tenantID string) (model.AttendanceSummary, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(model.AttendanceSummary), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context, tenantID string) (model.SchoolOverview, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(model.SchoolOverview), args.Error(1)
}
