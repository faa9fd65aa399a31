package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/scangate/internal/external-adapters/gpg"
)

// SignatureSuffix is appended to a download URL to locate its detached signature
const SignatureSuffix = ".asc"

// gpgVerifier wraps the external GPG adapter to implement the BinaryVerifier gateway
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a signature verifier trusting the keys in keyFile
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier(keyFile string) (*gpgVerifier, error) {
	v := gpg.NewVerifier()
	if err := v.ImportKeyFromFile(keyFile); err != nil {
		return nil, fmt.Errorf("failed to import GPG key from file: %w", err)
	}
	return &gpgVerifier{verifier: v}, nil
}

// Verify checks filePath against the detached signature at <sourceURL>.asc
func (g *gpgVerifier) Verify(ctx context.Context, filePath, sourceURL string) error {
	if err := g.verifier.VerifySignature(ctx, filePath, sourceURL+SignatureSuffix); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}
