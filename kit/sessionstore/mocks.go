package sessionstore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type StoreMock struct {
	mock.Mock
	Store
}

func (m *StoreMock) Get(ctx context.Context, key string) ([]byte, error) {
	ret := m.Called(ctx, key)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([]byte), ret.Error(1)
}

func (m *StoreMock) Set(ctx context.Context, key string, value []byte) error {
	ret := m.Called(ctx, key, value)
	return ret.Error(0)
}

func (m *StoreMock) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	ret := m.Called(ctx, key, value)
	return ret.Bool(0), ret.Error(1)
}

func (m *StoreMock) Delete(ctx context.Context, key string) error {
	ret := m.Called(ctx, key)
	return ret.Error(0)
}
