package identity

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestGeneratePKCEChallengeMatchesVerifier(t *testing.T) {
	pkce, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("pkce generation failed: %v", err)
	}

	if len(pkce.CodeVerifier) < 43 {
		t.Fatalf("code verifier too short: %d chars", len(pkce.CodeVerifier))
	}
	if pkce.State == "" {
		t.Fatalf("expected a non-empty state")
	}

	sum := sha256.Sum256([]byte(pkce.CodeVerifier))
	want := base64.RawURLEncoding.EncodeToString(sum[:])
	if pkce.CodeChallenge != want {
		t.Fatalf("challenge mismatch. got=%q want=%q", pkce.CodeChallenge, want)
	}
}

func TestGeneratePKCEIsUnique(t *testing.T) {
	a, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("pkce generation failed: %v", err)
	}
	b, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("pkce generation failed: %v", err)
	}
	if a.CodeVerifier == b.CodeVerifier {
		t.Fatalf("expected distinct verifiers")
	}
}
