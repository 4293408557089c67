// test/mock/session.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campuspulse/api/model"
)

// MockIdentityProvider is a mock implementation of session.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) Verify(ctx context.Context, credential string) (string, error) {
	args := m.Called(ctx, credential)
	return args.String(0), args.Error(1)
}

// MockPrincipalStore is a mock implementation of session.PrincipalStore
type MockPrincipalStore struct {
	mock.Mock
}

func (m *MockPrincipalStore) ByExternalRef(ctx context.Context, externalRef string) (model.Principal, error) {
	args := m.Called(ctx, externalRef)
	return args.Get(0).(model.Principal), args.Error(1)
}

// MockSessionResolver is a mock implementation of guard.SessionResolver
type MockSessionResolver struct {
	mock.Mock
}

func (m *MockSessionResolver) Resolve(ctx context.Context, credential string) (model.Principal, error) {
	args := m.Called(ctx, credential)
	return args.Get(0).(model.Principal), args.Error(1)
}
