package config

import (
	"strings"
	"testing"
)

func TestAPIBaseURLDefault(t *testing.T) {
	t.Setenv("CVIA_API_URL", "")

	if got := APIBaseURL(); got != DefaultAPIBaseURL {
		t.Fatalf("unexpected default base URL %q", got)
	}
}

func TestAPIBaseURLOverrideStripsTrailingSlash(t *testing.T) {
	t.Setenv("CVIA_API_URL", "http://localhost:8000/")

	if got := APIBaseURL(); got != "http://localhost:8000" {
		t.Fatalf("unexpected base URL %q", got)
	}
}

func TestInboxDirOverride(t *testing.T) {
	t.Setenv("CVIA_INBOX_DIR", "/tmp/custom-inbox/")

	if got := InboxDir(); got != "/tmp/custom-inbox" {
		t.Fatalf("unexpected inbox dir %q", got)
	}
}

func TestInboxDirDefaultUsesDocuments(t *testing.T) {
	t.Setenv("CVIA_INBOX_DIR", "")

	got := InboxDir()
	if !strings.HasSuffix(got, InboxDirName) {
		t.Fatalf("default inbox dir should end with %q, got %q", InboxDirName, got)
	}
}
