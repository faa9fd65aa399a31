package yaml

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ochairo/scangate/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// CredentialsFile implements gateways.CredentialStore over a YAML map of
// credential id to secret value
type CredentialsFile struct {
	secrets map[string]string
}

// LoadCredentialsFile reads a credentials file. Group or world readable files
// are rejected on platforms with POSIX permissions.
func LoadCredentialsFile(path string) (*CredentialsFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat credentials file: %w", err)
	}
	if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm&0o077 != 0 {
		return nil, fmt.Errorf("credentials file %s has permissions %o, want 0600", path, perm)
	}

	//nolint:gosec // G304: path is the credentials file named in the step configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	return ParseCredentials(data)
}

// ParseCredentials parses YAML credentials content
func ParseCredentials(data []byte) (*CredentialsFile, error) {
	secrets := make(map[string]string)
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		// The parser error may quote file content; keep secrets out of it
		return nil, fmt.Errorf("failed to parse credentials file: invalid YAML mapping")
	}
	return &CredentialsFile{secrets: secrets}, nil
}

// Lookup returns the secret stored under ref
func (c *CredentialsFile) Lookup(_ context.Context, ref string) (string, error) {
	if v := strings.TrimSpace(c.secrets[ref]); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q not in credentials file", entities.ErrMissingCredential, ref)
}
