package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProfileLookup - мок-реализация ports.ProfileLookup для тестирования
type MockProfileLookup struct {
	mock.Mock
}

// LookupUUID реализует интерфейс ProfileLookup
func (m *MockProfileLookup) LookupUUID(ctx context.Context, username string) (uuid.UUID, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
