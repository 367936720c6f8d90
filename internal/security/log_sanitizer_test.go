package security

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsCredentials(t *testing.T) {
	sanitizer := NewLogSanitizer()

	cases := []struct {
		name   string
		input  string
		secret string
	}{
		{"bearer header", "request failed: Authorization: Bearer abc.def.ghi", "abc.def.ghi"},
		{"jwt in body", `response body: {"access_token":"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig-part"}`, "eyJhbGciOiJIUzI1NiJ9"},
		{"password field", `payload password: "hunter22"`, "hunter22"},
		{"cookie header", "set-cookie: session=deadbeef; Path=/", "deadbeef"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clean := sanitizer.Sanitize(tc.input)
			if strings.Contains(clean, tc.secret) {
				t.Fatalf("secret leaked through sanitizer: %q", clean)
			}
			if !strings.Contains(clean, "[REDACTED]") {
				t.Fatalf("expected a redaction marker, got %q", clean)
			}
		})
	}
}

func TestSanitizeKeepsPlainMessages(t *testing.T) {
	sanitizer := NewLogSanitizer()

	message := "upload failed: file too large"
	if got := sanitizer.Sanitize(message); got != message {
		t.Fatalf("plain message was altered: %q", got)
	}
}

func TestSanitizeNilReceiver(t *testing.T) {
	var sanitizer *LogSanitizer
	if got := sanitizer.Sanitize("anything"); got != "anything" {
		t.Fatalf("nil sanitizer must be a passthrough, got %q", got)
	}
}
