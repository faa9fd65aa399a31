package gateways

import (
	"github.com/ochairo/scangate/internal/domain/entities"
	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
)

// VerifierFactory builds the download verification chain an installation asks for
type VerifierFactory struct{}

// NewVerifierFactory creates a new verifier factory
func NewVerifierFactory() *VerifierFactory {
	return &VerifierFactory{}
}

// VerifierFor returns nil when the installation requests no verification
func (f *VerifierFactory) VerifierFor(rec entities.InstallationRecord) (gateways.BinaryVerifier, error) {
	var chain []gateways.BinaryVerifier
	if rec.VerifyChecksum {
		chain = append(chain, NewChecksumVerifier())
	}
	if rec.GPGKeyFile != "" {
		gpg, err := NewGPGVerifier(rec.GPGKeyFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, gpg)
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return NewCompositeVerifier(chain...), nil
}
