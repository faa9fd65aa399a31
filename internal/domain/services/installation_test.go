package services

import (
	"path/filepath"
	"testing"

	"github.com/ochairo/scangate/internal/domain/entities"
)

func TestForNodeThenForEnvironment(t *testing.T) {
	rec := entities.InstallationRecord{
		Name:     "snyk-latest",
		HomePath: "/tools/snyk",
		NodeHomes: map[string]string{
			"agent-1": "$TOOLS_HOME/snyk",
		},
	}

	node := ForNode(rec, "agent-1")
	if node.HomePath != "$TOOLS_HOME/snyk" {
		t.Errorf("ForNode() HomePath = %q", node.HomePath)
	}
	if rec.HomePath != "/tools/snyk" {
		t.Errorf("ForNode() mutated its input: %q", rec.HomePath)
	}

	resolved := ForEnvironment(node, map[string]string{"TOOLS_HOME": "/srv/agent"})
	if resolved.HomePath != "/srv/agent/snyk" {
		t.Errorf("ForEnvironment() HomePath = %q, want /srv/agent/snyk", resolved.HomePath)
	}

	other := ForNode(rec, "agent-2")
	if other.HomePath != "/tools/snyk" {
		t.Errorf("ForNode() for unknown node HomePath = %q, want default", other.HomePath)
	}
}

func TestDefaultHome(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "snyk-latest", want: filepath.Join("/root", "snyk-latest")},
		{name: "snyk latest/../x", want: filepath.Join("/root", "snyk_latest_.._x")},
		{name: "..", want: filepath.Join("/root", "_")},
	}

	for _, tt := range tests {
		if got := DefaultHome("/root", tt.name); got != tt.want {
			t.Errorf("DefaultHome(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
