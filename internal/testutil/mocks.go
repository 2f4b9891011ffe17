package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockChangeNotifier is a mock implementation of rbac.ChangeNotifier
type MockChangeNotifier struct {
	mock.Mock
}

// NewMockChangeNotifier creates a new mock notifier
func NewMockChangeNotifier(t *testing.T) *MockChangeNotifier {
	m := &MockChangeNotifier{}
	m.Test(t)
	return m
}

func (m *MockChangeNotifier) RolesChanged(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ExpectRolesChanged sets up expectation for RolesChanged
func (m *MockChangeNotifier) ExpectRolesChanged(err error) *mock.Call {
	return m.On("RolesChanged", mock.Anything).Return(err)
}

// MockSidebarRebuilder is a mock implementation of queue.SidebarRebuilder
type MockSidebarRebuilder struct {
	mock.Mock
}

func NewMockSidebarRebuilder(t *testing.T) *MockSidebarRebuilder {
	m := &MockSidebarRebuilder{}
	m.Test(t)
	return m
}

func (m *MockSidebarRebuilder) Rebuild(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ExpectRebuild sets up expectation for Rebuild
func (m *MockSidebarRebuilder) ExpectRebuild(err error) *mock.Call {
	return m.On("Rebuild", mock.Anything).Return(err)
}
