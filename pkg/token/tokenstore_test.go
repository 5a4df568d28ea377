package tokenstore

import (
	"testing"
	"time"
)

func TestRevokeToken(t *testing.T) {
	if IsRevoked("jti-1") {
		t.Fatalf("expected unknown jti to be valid")
	}
	RevokeToken("jti-1", time.Now().Add(time.Hour))
	if !IsRevoked("jti-1") {
		t.Fatalf("expected revoked jti to be reported")
	}
	if IsRevoked("") {
		t.Fatalf("empty jti is never revoked")
	}
}

func TestExpiredRevocationsArePurged(t *testing.T) {
	RevokeToken("old", time.Now().Add(-time.Minute))
	RevokeToken("fresh", time.Now().Add(time.Hour))
	if IsRevoked("old") {
		t.Fatalf("expected expired revocation to be purged")
	}
	if !IsRevoked("fresh") {
		t.Fatalf("expected fresh revocation to remain")
	}
}
