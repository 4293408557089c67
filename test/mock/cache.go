// test/mock/cache.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campuspulse/api/cache"
)

// MockCacheStore is a mock implementation of cache.Store, used to simulate
// backend failures.
type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) Get(ctx context.Context, key cache.Key) (cache.Entry, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(cache.Entry), args.Bool(1), args.Error(2)
}

func (m *MockCacheStore) Set(ctx context.Context, key cache.Key, payload []byte, tier cache.Tier) error {
	args := m.Called(ctx, key, payload, tier)
	return args.Error(0)
}
