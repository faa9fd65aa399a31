package gateways

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
)

// HostProbe identifies the local execution host via gopsutil
type HostProbe struct{}

// NewHostProbe creates a new host probe
func NewHostProbe() *HostProbe {
	return &HostProbe{}
}

// Probe returns the node name, OS name and architecture of this host.
// Missing values fall back to the Go runtime so detection always has input.
func (p *HostProbe) Probe(ctx context.Context) (gateways.HostInfo, error) {
	info := gateways.HostInfo{
		OSName: runtime.GOOS,
		OSArch: runtime.GOARCH,
	}

	hi, err := host.InfoWithContext(ctx)
	if err == nil && hi != nil {
		if hi.OS != "" {
			info.OSName = hi.OS
		}
		if hi.KernelArch != "" {
			info.OSArch = hi.KernelArch
		}
		info.NodeName = hi.Hostname
	}

	if info.NodeName == "" {
		if name, hostErr := os.Hostname(); hostErr == nil {
			info.NodeName = name
		}
	}

	return info, nil
}
