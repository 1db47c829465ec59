package device

import (
	"context"
	"errors"
	"testing"

	"github.com/socialhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) GetByUUID(ctx context.Context, uuid string) (*domain.Device, error) {
	args := m.Called(ctx, uuid)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}

func TestResolve_ExistingDevice(t *testing.T) {
	s := &mockStore{}
	existing := &domain.Device{DeviceID: "d1", UUID: "abc"}
	s.On("GetByUUID", mock.Anything, "abc").Return(existing, nil)

	uuid := "abc"
	d, err := Resolve(context.Background(), s, &uuid, "u1")
	require.NoError(t, err)
	assert.Same(t, existing, d)
	s.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestResolve_UnknownUUID_CreatesDevice(t *testing.T) {
	s := &mockStore{}
	s.On("GetByUUID", mock.Anything, "abc").Return(nil, domain.ErrNotFound)
	s.On("Put", mock.Anything, mock.AnythingOfType("*domain.Device")).Return(nil)

	uuid := "abc"
	d, err := Resolve(context.Background(), s, &uuid, "u1")
	require.NoError(t, err)
	assert.Equal(t, "abc", d.UUID)
	assert.Equal(t, "u1", d.UserID)
	assert.True(t, d.Enable)
}

func TestResolve_NoUUID_GeneratesOne(t *testing.T) {
	s := &mockStore{}
	s.On("Put", mock.Anything, mock.AnythingOfType("*domain.Device")).Return(nil)

	d, err := Resolve(context.Background(), s, nil, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, d.UUID)
	assert.NotEmpty(t, d.DeviceID)
}

func TestResolve_StoreError_Propagates(t *testing.T) {
	s := &mockStore{}
	boom := errors.New("dynamo down")
	s.On("GetByUUID", mock.Anything, "abc").Return(nil, boom)

	uuid := "abc"
	_, err := Resolve(context.Background(), s, &uuid, "u1")
	assert.ErrorIs(t, err, boom)
}
