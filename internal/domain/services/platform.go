// Package services implements domain business logic and use cases.
package services

import (
	"fmt"
	"strings"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// DetectPlatform maps host OS name and architecture strings to a platform
// profile. Matching is case-insensitive on substrings; an unknown OS is an
// error, never a default.
func DetectPlatform(osName, osArch string) (entities.PlatformProfile, error) {
	name := strings.ToLower(osName)
	arch := strings.ToLower(osArch)

	switch {
	case strings.Contains(name, "linux"):
		if strings.Contains(arch, "64") {
			return entities.Platforms[entities.PlatformLinux], nil
		}
		return entities.Platforms[entities.PlatformLinuxAlpine], nil
	case strings.Contains(name, "mac os x"), strings.Contains(name, "darwin"), strings.Contains(name, "osx"):
		return entities.Platforms[entities.PlatformMacOS], nil
	case strings.Contains(name, "windows"):
		return entities.Platforms[entities.PlatformWindows], nil
	}

	return entities.PlatformProfile{}, &entities.ConfigurationError{
		Reason: fmt.Sprintf("os.name=%q os.arch=%q", osName, osArch),
		Err:    entities.ErrUnsupportedPlatform,
	}
}

// PlatformByID parses an explicit platform identifier such as "linux-alpine"
// or "MACOS"
func PlatformByID(id string) (entities.PlatformProfile, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(id), "-", "_"))
	if p, ok := entities.Platforms[entities.PlatformID(key)]; ok {
		return p, nil
	}
	return entities.PlatformProfile{}, &entities.ConfigurationError{
		Reason: fmt.Sprintf("platform override %q", id),
		Err:    entities.ErrUnsupportedPlatform,
	}
}

// ResolvePlatform picks the override when set, otherwise detects from the host strings
func ResolvePlatform(override, osName, osArch string) (entities.PlatformProfile, error) {
	if strings.TrimSpace(override) != "" {
		return PlatformByID(override)
	}
	return DetectPlatform(osName, osArch)
}
