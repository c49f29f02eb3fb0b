package profile_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

func TestProfile_RoundTrip(t *testing.T) {
	t.Parallel()

	scrapedAt := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	tests := []struct {
		name string
		in   profile.Profile
	}{
		{
			name: "headline signals",
			in: profile.Profile{
				Summary:    "Acme builds rockets.",
				WhatTheyDo: []string{"rockets"},
				Keywords:   []string{"space"},
				Signals:    []profile.Signal{profile.Headline("Hiring 12 engineers")},
				Source:     "https://acme.test",
				ScrapedAt:  scrapedAt,
			},
		},
		{
			name: "assessed signals with thesis match",
			in: profile.Profile{
				Summary:    "Devtools for AI infra.",
				WhatTheyDo: []string{"a", "b"},
				Keywords:   []string{},
				Signals: []profile.Signal{
					profile.Assessed("Public pricing page", profile.SignalPositive, "commercial traction"),
					profile.Assessed("No changelog", profile.SignalRisk, "slow shipping"),
				},
				Source:      "https://devtools.test",
				ScrapedAt:   scrapedAt,
				ThesisMatch: &profile.ThesisMatch{Score: 85, Reasoning: "fits"},
			},
		},
		{
			name: "mixed signals keep order",
			in: profile.Profile{
				Summary:    "",
				WhatTheyDo: []string{},
				Keywords:   []string{},
				Signals: []profile.Signal{
					profile.Headline("first"),
					profile.Assessed("second", profile.SignalNeutral, ""),
					profile.Headline("third"),
				},
				Source:    "https://mixed.test",
				ScrapedAt: scrapedAt,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got profile.Profile
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal: %v (json=%s)", err, b)
			}
			if diff := cmp.Diff(tt.in, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSignal_WireShapes(t *testing.T) {
	t.Parallel()

	in := `["legacy",{"text":"Careers page","type":"positive","reasoning":"hiring"}]`
	var sigs []profile.Signal
	if err := json.Unmarshal([]byte(in), &sigs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []profile.Signal{
		profile.Headline("legacy"),
		profile.Assessed("Careers page", profile.SignalPositive, "hiring"),
	}
	if diff := cmp.Diff(want, sigs); diff != "" {
		t.Fatalf("unexpected signals (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(sigs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", out, in)
	}
}

func TestSignal_RejectsUnknownShapes(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`42`, `{"text":"x","type":"great","reasoning":""}`, `[]`} {
		var s profile.Signal
		if err := json.Unmarshal([]byte(in), &s); err == nil {
			t.Fatalf("expected error for %s, got %#v", in, s)
		}
	}
}

func TestProfile_OmitsAbsentThesisMatch(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(profile.Profile{Source: "https://a.test"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "thesisMatch") {
		t.Fatalf("thesisMatch should be omitted: %s", b)
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	for in, want := range map[int]int{-5: 0, 0: 0, 55: 55, 100: 100, 140: 100} {
		if got := profile.ClampScore(in); got != want {
			t.Fatalf("ClampScore(%d)=%d want %d", in, got, want)
		}
	}
}
