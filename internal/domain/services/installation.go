package services

import (
	"path/filepath"
	"regexp"

	"github.com/ochairo/scangate/internal/domain/entities"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DefaultHome is the installation directory used when none is configured
func DefaultHome(toolsRoot, installationName string) string {
	name := unsafeNameChars.ReplaceAllString(installationName, "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return filepath.Join(toolsRoot, name)
}

// ForNode specializes an installation for an execution node. A node-specific
// home, when configured, replaces the default one.
func ForNode(rec entities.InstallationRecord, nodeName string) entities.InstallationRecord {
	if home, ok := rec.NodeHomes[nodeName]; ok && home != "" {
		rec.HomePath = home
	}
	return rec
}

// ForEnvironment resolves variable references in the installation home
// against the run environment
func ForEnvironment(rec entities.InstallationRecord, env map[string]string) entities.InstallationRecord {
	rec.HomePath = Expand(rec.HomePath, env)
	return rec
}
