package gateways

import (
	"context"
	"testing"

	"github.com/ochairo/scangate/internal/domain/services"
)

func TestHostProbe_Probe(t *testing.T) {
	info, err := NewHostProbe().Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.OSName == "" || info.OSArch == "" {
		t.Errorf("Probe() = %+v, want OS name and arch", info)
	}
}

func TestHostProbe_DetectsSupportedPlatform(t *testing.T) {
	info, err := NewHostProbe().Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	switch info.OSName {
	case "linux", "darwin", "windows":
	default:
		t.Skipf("host OS %q is not a scanner target", info.OSName)
	}

	if _, err := services.DetectPlatform(info.OSName, info.OSArch); err != nil {
		t.Errorf("DetectPlatform(%q, %q) error = %v", info.OSName, info.OSArch, err)
	}
}
