package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	campus_errors "github.com/campuspulse/api/errors"
	"github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/model"
	"github.com/campuspulse/api/service"
	campus_mock "github.com/campuspulse/api/test/mock"
)

func init() {
	logging.InitTestLogger()
}

func TestOverview_FansOutAndAggregates(t *testing.T) {
	store := new(campus_mock.MockDashboardStore)
	tenants := new(campus_mock.MockTenantStore)

	tenants.On("GetTenant", mock.Anything, "S1").
		Return(model.Tenant{ID: "S1", ExternalOrgRef: "org-1", Name: "Northside High"}, nil)
	store.On("CountByRole", mock.Anything, "S1", model.RoleTeacher).Return(int64(12), nil)
	store.On("CountByRole", mock.Anything, "S1", model.RoleStudent).Return(int64(340), nil)
	store.On("CountAnnouncements", mock.Anything, "S1").Return(int64(7), nil)

	svc := service.NewDashboardService(store, tenants)
	overview, err := svc.Overview(context.Background(), "S1")

	require.NoError(t, err)
	assert.Equal(t, model.SchoolOverview{
		TenantID:      "S1",
		SchoolName:    "Northside High",
		Teachers:      12,
		Students:      340,
		Announcements: 7,
	}, overview)
}

func TestOverview_PropagatesStoreFailure(t *testing.T) {
	store := new(campus_mock.MockDashboardStore)
	tenants := new(campus_mock.MockTenantStore)

	tenants.On("GetTenant", mock.Anything, "S1").Return(model.Tenant{}, nil)
	store.On("CountByRole", mock.Anything, "S1", model.RoleTeacher).Return(int64(0), campus_errors.ErrDatabaseOperation)
	store.On("CountByRole", mock.Anything, "S1", model.RoleStudent).Return(int64(0), nil).Maybe()
	store.On("CountAnnouncements", mock.Anything, "S1").Return(int64(0), nil).Maybe()

	svc := service.NewDashboardService(store, tenants)
	_, err := svc.Overview(context.Background(), "S1")

	assert.ErrorIs(t, err, campus_errors.ErrDatabaseOperation)
}

func TestTeachers_PassThrough(t *testing.T) {
	store := new(campus_mock.MockDashboardStore)
	want := []model.TeacherSummary{{ID: "t1", Name: "A. Rivera", Subject: "Math"}}
	store.On("ListTeachers", mock.Anything, "S1", 50, 0).Return(want, nil)

	svc := service.NewDashboardService(store, new(campus_mock.MockTenantStore))
	got, err := svc.Teachers(context.Background(), "S1", 50, 0)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
