package device

import (
	"context"
	"strings"
	"sync"

	"github.com/peekpark/peekpark/domain"
	"github.com/rs/zerolog"
)

const (
	// PlaceholderID is returned when no identifying fact could be derived at all
	PlaceholderID = "unknown-device"

	DefaultDeviceName = "Unknown Device"
	DefaultAppVersion = "1.0.0"
	unknown           = "unknown"
)

// Fingerprinter computes the device id and descriptor once per process
type Fingerprinter struct {
	probe  Probe
	logger zerolog.Logger

	once       sync.Once
	id         string
	descriptor domain.DeviceDescriptor
}

var _ domain.DeviceIdentity = (*Fingerprinter)(nil)

// NewFingerprinter creates a memoizing fingerprinter over probe
func NewFingerprinter(probe Probe, logger zerolog.Logger) *Fingerprinter {
	return &Fingerprinter{probe: probe, logger: logger}
}

// DeviceID returns the process-wide device id. It is never empty.
func (f *Fingerprinter) DeviceID(ctx context.Context) string {
	f.once.Do(f.compute)
	return f.id
}

// Descriptor returns the descriptor captured with the device id
func (f *Fingerprinter) Descriptor(ctx context.Context) domain.DeviceDescriptor {
	f.once.Do(f.compute)
	return f.descriptor
}

func (f *Fingerprinter) compute() {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error().Interface("panic", r).Msg("device probe failed, using placeholder id")
			f.id = PlaceholderID
			f.descriptor = WithDefaults(domain.DeviceDescriptor{})
		}
	}()

	f.descriptor = WithDefaults(f.probe.Descriptor())
	installationID := f.probe.InstallationID()
	f.id = ComputeID(installationID, f.descriptor)
	if installationID == "" {
		f.logger.Debug().Str("device_id", f.id).Msg("no installation id, derived device id from descriptor")
	}
}

// WithDefaults fills the fields the platform could not report
func WithDefaults(d domain.DeviceDescriptor) domain.DeviceDescriptor {
	d.DeviceName = orDefault(d.DeviceName, DefaultDeviceName)
	d.DeviceType = orDefault(d.DeviceType, unknown)
	d.OSVersion = orDefault(d.OSVersion, unknown)
	d.ModelName = orDefault(d.ModelName, unknown)
	d.Manufacturer = orDefault(d.Manufacturer, unknown)
	d.Brand = orDefault(d.Brand, unknown)
	d.AppVersion = orDefault(d.AppVersion, DefaultAppVersion)
	return d
}

// ComputeID returns installationID when present, otherwise a slug of
// name-type-os-model-appversion with whitespace runs collapsed to "-" and lower-cased.
func ComputeID(installationID string, d domain.DeviceDescriptor) string {
	if id := strings.TrimSpace(installationID); id != "" {
		return id
	}
	parts := []string{
		orDefault(d.DeviceName, unknown),
		orDefault(d.DeviceType, unknown),
		orDefault(d.OSVersion, unknown),
		orDefault(d.ModelName, unknown),
		orDefault(d.AppVersion, unknown),
	}
	id := strings.ToLower(strings.Join(strings.Fields(strings.Join(parts, "-")), "-"))
	if id == "" {
		return PlaceholderID
	}
	return id
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
