package gateways

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
)

// EnvCredentialStore resolves a credential reference as an environment variable name
type EnvCredentialStore struct {
	env map[string]string
}

// NewEnvCredentialStore creates a store over a run environment snapshot
func NewEnvCredentialStore(env map[string]string) *EnvCredentialStore {
	return &EnvCredentialStore{env: env}
}

// Lookup returns the non-blank value of the variable named ref
func (s *EnvCredentialStore) Lookup(_ context.Context, ref string) (string, error) {
	if v := strings.TrimSpace(s.env[ref]); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s not set", entities.ErrMissingCredential, ref)
}

// credentialChain asks each store in turn until one knows the reference
type credentialChain struct {
	stores []gateways.CredentialStore
}

// NewCredentialChain creates a CredentialStore that falls through the given
// stores on ErrMissingCredential and stops on any other error
func NewCredentialChain(stores ...gateways.CredentialStore) gateways.CredentialStore {
	return &credentialChain{stores: stores}
}

// Lookup resolves ref against the chain
func (c *credentialChain) Lookup(ctx context.Context, ref string) (string, error) {
	for _, s := range c.stores {
		secret, err := s.Lookup(ctx, ref)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, entities.ErrMissingCredential) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", entities.ErrMissingCredential, ref)
}
