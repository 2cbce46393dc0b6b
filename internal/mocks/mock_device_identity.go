package mocks

import (
	"context"

	"github.com/peekpark/peekpark/domain"
)

// MockDeviceIdentity implements domain.DeviceIdentity with fixed values
type MockDeviceIdentity struct {
	ID   string
	Info domain.DeviceDescriptor
}

// NewMockDeviceIdentity creates a device with the given id and a descriptor named after it
func NewMockDeviceIdentity(id string) *MockDeviceIdentity {
	return &MockDeviceIdentity{
		ID: id,
		Info: domain.DeviceDescriptor{
			DeviceName:   id + " phone",
			DeviceType:   "PHONE",
			OSVersion:    "Android 14",
			ModelName:    "Pixel 8",
			Manufacturer: "Google",
			Brand:        "google",
			AppVersion:   "1.0.0",
		},
	}
}

// DeviceID returns the device id
func (m *MockDeviceIdentity) DeviceID(ctx context.Context) string { return m.ID }

// Descriptor returns the device descriptor
func (m *MockDeviceIdentity) Descriptor(ctx context.Context) domain.DeviceDescriptor { return m.Info }

// Compile-time interface compliance verification
var _ domain.DeviceIdentity = (*MockDeviceIdentity)(nil)
