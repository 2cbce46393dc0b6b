// Package device derives the stable identity the account binding check relies on.
package device

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/peekpark/peekpark/domain"
)

// Probe reads raw device facts from the platform. Empty values mean "unknown".
type Probe interface {
	InstallationID() string
	Descriptor() domain.DeviceDescriptor
}

// Overrides are configured values that take precedence over anything the host reports
type Overrides struct {
	InstallationID string
	DeviceName     string
	DeviceType     string
	OSVersion      string
	ModelName      string
	Manufacturer   string
	Brand          string
	AppVersion     string
}

// HostProbe reads device facts from the local machine
type HostProbe struct {
	overrides Overrides
	root      string
	hostname  func() (string, error)
}

// NewHostProbe creates a probe over the live filesystem
func NewHostProbe(overrides Overrides) *HostProbe {
	return &HostProbe{overrides: overrides, root: "/", hostname: os.Hostname}
}

// NewHostProbeAt creates a probe that resolves system files below root
func NewHostProbeAt(root string, overrides Overrides) *HostProbe {
	p := NewHostProbe(overrides)
	p.root = root
	return p
}

// InstallationID prefers the configured id, then machine-id, then the DMI product uuid
func (p *HostProbe) InstallationID() string {
	if id := strings.TrimSpace(p.overrides.InstallationID); id != "" {
		return id
	}
	for _, f := range []string{"etc/machine-id", "sys/class/dmi/id/product_uuid"} {
		if id := p.read(f); id != "" {
			return id
		}
	}
	return ""
}

func (p *HostProbe) Descriptor() domain.DeviceDescriptor {
	d := domain.DeviceDescriptor{
		DeviceName:   p.overrides.DeviceName,
		DeviceType:   p.overrides.DeviceType,
		OSVersion:    p.overrides.OSVersion,
		ModelName:    p.overrides.ModelName,
		Manufacturer: p.overrides.Manufacturer,
		Brand:        p.overrides.Brand,
		AppVersion:   p.overrides.AppVersion,
	}
	if d.DeviceName == "" && p.hostname != nil {
		if h, err := p.hostname(); err == nil {
			d.DeviceName = strings.TrimSpace(h)
		}
	}
	if d.DeviceType == "" {
		d.DeviceType = deviceType(runtime.GOOS)
	}
	if d.OSVersion == "" {
		if rel := p.read("proc/sys/kernel/osrelease"); rel != "" {
			d.OSVersion = runtime.GOOS + " " + rel
		}
	}
	if d.ModelName == "" {
		d.ModelName = p.read("sys/class/dmi/id/product_name")
	}
	if d.Manufacturer == "" {
		d.Manufacturer = p.read("sys/class/dmi/id/sys_vendor")
	}
	if d.Brand == "" {
		d.Brand = p.read("sys/class/dmi/id/board_vendor")
	}
	return d
}

func (p *HostProbe) read(rel string) string {
	b, err := os.ReadFile(filepath.Join(p.root, rel))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func deviceType(goos string) string {
	switch goos {
	case "android", "ios":
		return "PHONE"
	case "linux", "darwin", "windows", "freebsd":
		return "DESKTOP"
	}
	return ""
}
