package redact_test

import (
	"strings"
	"testing"

	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
)

func TestSecrets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		leaks   string
		keepsIn string
	}{
		{name: "bearer", in: "Authorization: Bearer abc.def.ghi", leaks: "abc.def.ghi", keepsIn: "Bearer <redacted>"},
		{name: "kv", in: "request failed api_key=supersecret", leaks: "supersecret", keepsIn: "<redacted_kv>"},
		{name: "groq kv", in: "GROQ_API_KEY: topsecret", leaks: "topsecret", keepsIn: "<redacted_kv>"},
		{name: "groq prefix", in: "invalid key gsk_ABCDEFGH12345678 provided", leaks: "ABCDEFGH12345678", keepsIn: "gsk_<redacted>"},
		{name: "query key", in: "GET /v1?key=AIzaSyXXXX&alt=json", leaks: "AIzaSyXXXX", keepsIn: "alt=json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := redact.Secrets(tt.in)
			if strings.Contains(got, tt.leaks) {
				t.Fatalf("secret leaked: %q", got)
			}
			if !strings.Contains(got, tt.keepsIn) {
				t.Fatalf("expected %q in %q", tt.keepsIn, got)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	if got := redact.Snippet(nil, 10); got != "" {
		t.Fatalf("expected empty snippet, got %q", got)
	}
	if got := redact.Snippet([]byte("line one\nline two"), 0); got != "line one line two" {
		t.Fatalf("unexpected snippet: %q", got)
	}
	if got := redact.Snippet([]byte("0123456789abcdef"), 10); got != "0123456789..." {
		t.Fatalf("unexpected truncated snippet: %q", got)
	}
}
