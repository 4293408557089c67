// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/campuspulse/api/audit"
)

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) LogDecision(ctx context.Context, record audit.DecisionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) QueryDecisions(ctx context.Context, from, to time.Time, tenantID, operation string) ([]audit.DecisionRecord, error) {
	args := m.Called(ctx, from, to, tenantID, operation)
	return args.Get(0).([]audit.DecisionRecord), args.Error(1)
}

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogDecision(ctx context.Context, record audit.DecisionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditService) QueryDecisions(ctx context.Context, from, to time.Time, tenantID, operation string) ([]audit.DecisionRecord, error) {
	args := m.Called(ctx, from, to, tenantID, operation)
	return args.Get(0).([]audit.DecisionRecord), args.Error(1)
}
