package gateways

import (
	"context"

	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
)

// compositeVerifier implements BinaryVerifier by running every configured
// verifier in order and stopping at the first failure
type compositeVerifier struct {
	verifiers []gateways.BinaryVerifier
}

// NewCompositeVerifier creates a verifier chain; nil entries are skipped
func NewCompositeVerifier(verifiers ...gateways.BinaryVerifier) gateways.BinaryVerifier {
	c := &compositeVerifier{}
	for _, v := range verifiers {
		if v != nil {
			c.verifiers = append(c.verifiers, v)
		}
	}
	return c
}

// Verify runs the chain against one downloaded file
func (c *compositeVerifier) Verify(ctx context.Context, filePath, sourceURL string) error {
	for _, v := range c.verifiers {
		if err := v.Verify(ctx, filePath, sourceURL); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of active verifiers
func (c *compositeVerifier) Len() int {
	return len(c.verifiers)
}
