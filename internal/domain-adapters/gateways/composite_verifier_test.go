package gateways

import (
	"context"
	"errors"
	"testing"
)

type stubVerifier struct {
	err   error
	calls int
}

func (s *stubVerifier) Verify(_ context.Context, _, _ string) error {
	s.calls++
	return s.err
}

func TestCompositeVerifier_Verify(t *testing.T) {
	first := &stubVerifier{}
	second := &stubVerifier{}

	c := NewCompositeVerifier(first, nil, second)
	if err := c.Verify(context.Background(), "/tmp/snyk-linux", "https://example.com/snyk-linux"); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
	if n := c.(*compositeVerifier).Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}

func TestCompositeVerifier_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("checksum mismatch")
	failing := &stubVerifier{err: boom}
	after := &stubVerifier{}

	c := NewCompositeVerifier(failing, after)
	err := c.Verify(context.Background(), "/tmp/f", "https://example.com/f")
	if !errors.Is(err, boom) {
		t.Errorf("Verify() error = %v, want %v", err, boom)
	}
	if after.calls != 0 {
		t.Error("verifiers after a failure must not run")
	}
}

func TestCompositeVerifier_Empty(t *testing.T) {
	if err := NewCompositeVerifier().Verify(context.Background(), "/tmp/f", "u"); err != nil {
		t.Errorf("empty chain Verify() error = %v", err)
	}
}
