package gateways

import (
	"testing"

	"github.com/ochairo/scangate/internal/domain/entities"
)

func TestVerifierFactory_VerifierFor(t *testing.T) {
	f := NewVerifierFactory()

	v, err := f.VerifierFor(entities.InstallationRecord{Name: "plain"})
	if err != nil || v != nil {
		t.Errorf("VerifierFor(no verification) = %v, %v; want nil, nil", v, err)
	}

	v, err = f.VerifierFor(entities.InstallationRecord{Name: "sum", VerifyChecksum: true})
	if err != nil {
		t.Fatalf("VerifierFor(checksum) error = %v", err)
	}
	if n := v.(*compositeVerifier).Len(); n != 1 {
		t.Errorf("chain length = %d, want 1", n)
	}

	if _, err := f.VerifierFor(entities.InstallationRecord{Name: "gpg", GPGKeyFile: "/nonexistent/key.asc"}); err == nil {
		t.Error("VerifierFor() should fail when the key file is missing")
	}
}
