package mockupstream_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shpitdev/vc-enricher/internal/mockupstream"
)

func TestMockUpstream_ReaderKeepsTargetURL(t *testing.T) {
	t.Parallel()

	srv := mockupstream.New()
	srv.SetPage("https://acme.test/", "Acme")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/https://acme.test/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(b) != "Acme" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, b)
	}

	calls := srv.Calls()
	if len(calls) != 1 || calls[0].Path != "/https://acme.test/" {
		t.Fatalf("unexpected calls: %#v", calls)
	}
}

func TestMockUpstream_CompletionRequiresToken(t *testing.T) {
	t.Parallel()

	srv := mockupstream.New()
	srv.RequireBearerToken("secret")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/chat/completions", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(srv.Completions()) != 0 {
		t.Fatalf("unauthorized call must not be recorded as a completion")
	}
}

func TestMockUpstream_DefaultPage(t *testing.T) {
	t.Parallel()

	srv := mockupstream.New()
	srv.SetDefaultPage("fallback")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/https://unknown.test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(b) != "fallback" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, b)
	}
}

func TestCannedReply(t *testing.T) {
	t.Parallel()

	if got := mockupstream.CannedReply(`Return {"score": 85}`); !strings.Contains(got, `"score": 72`) {
		t.Fatalf("unexpected scoring reply: %s", got)
	}
	if got := mockupstream.CannedReply("Analyze this website"); !strings.HasPrefix(got, "```json") {
		t.Fatalf("unexpected extraction reply: %s", got)
	}
}
