package extract_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shpitdev/vc-enricher/internal/extract"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

func TestObject_CascadeOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		reply        string
		wantStrategy extract.Strategy
		wantSummary  string
	}{
		{name: "raw json", reply: `{"summary":"x"}`, wantStrategy: extract.StrategyWhole, wantSummary: "x"},
		{name: "raw json with whitespace", reply: "\n  {\"summary\":\"x\"}\n", wantStrategy: extract.StrategyWhole, wantSummary: "x"},
		{name: "json fence", reply: "Here you go:\n```json\n{\"summary\":\"y\"}\n```", wantStrategy: extract.StrategyFenced, wantSummary: "y"},
		{name: "bare fence", reply: "```\n{\"summary\":\"y\"}\n```\nthanks", wantStrategy: extract.StrategyFenced, wantSummary: "y"},
		{name: "upper-case fence tag", reply: "```JSON\n{\"summary\":\"y\"}```", wantStrategy: extract.StrategyFenced, wantSummary: "y"},
		{name: "prose around object", reply: "Sure! {\"summary\":\"z\"} hope that helps", wantStrategy: extract.StrategyBraces, wantSummary: "z"},
		{name: "invalid fence falls through to braces", reply: "```json\nnot json\n``` but {\"summary\":\"b\"}", wantStrategy: extract.StrategyBraces, wantSummary: "b"},
		{name: "nested braces use outer span", reply: "result: {\"summary\":\"n\",\"x\":{\"y\":1}} done", wantStrategy: extract.StrategyBraces, wantSummary: "n"},
		{name: "trailing comma is lenient", reply: "{\"summary\": \"l\",}", wantStrategy: extract.StrategyLenient, wantSummary: "l"},
		{name: "single quotes are lenient", reply: "Answer: {summary: 'q'}", wantStrategy: extract.StrategyLenient, wantSummary: "q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, strategy, ok := extract.Object(tt.reply)
			if !ok {
				t.Fatalf("expected a record from %q", tt.reply)
			}
			if strategy != tt.wantStrategy {
				t.Fatalf("strategy=%s want %s", strategy, tt.wantStrategy)
			}
			if got := rec.String("summary"); got != tt.wantSummary {
				t.Fatalf("summary=%q want %q", got, tt.wantSummary)
			}

			// Same input, same outcome.
			rec2, strategy2, ok2 := extract.Object(tt.reply)
			if !ok2 || strategy2 != strategy || !cmp.Equal(rec, rec2) {
				t.Fatalf("cascade is not deterministic for %q", tt.reply)
			}
		})
	}
}

func TestObject_NoRecord(t *testing.T) {
	t.Parallel()

	for _, reply := range []string{
		"no json here",
		"",
		"[1,2,3]",
		`"just a string"`,
		"} backwards {",
		"{ this is not json at all }",
	} {
		if rec, strategy, ok := extract.Object(reply); ok {
			t.Fatalf("expected no record for %q, got %v via %s", reply, rec, strategy)
		}
	}
}

func TestProfile_DefaultsMissingFields(t *testing.T) {
	t.Parallel()

	got, strategy, ok := extract.Profile(`{"summary":"x"}`)
	if !ok || strategy != extract.StrategyWhole {
		t.Fatalf("unexpected result ok=%v strategy=%s", ok, strategy)
	}
	want := extract.Fields{
		Summary:    "x",
		WhatTheyDo: []string{},
		Keywords:   []string{},
		Signals:    []profile.Signal{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestProfile_CoercesMalformedFields(t *testing.T) {
	t.Parallel()

	reply := `{
		"summary": 42,
		"whatTheyDo": ["builds rockets", 7, "  ", "sells launches"],
		"keywords": "space",
		"signals": [
			"Careers page lists 12 roles",
			{"text": "Public pricing", "type": "positive", "reasoning": "traction"},
			{"text": "Odd type", "type": "amazing"},
			{"type": "risk", "reasoning": "no text"},
			{"text": "Upper type", "type": "RISK", "reasoning": 3},
			17
		]
	}`
	got, _, ok := extract.Profile(reply)
	if !ok {
		t.Fatalf("expected record")
	}
	want := extract.Fields{
		Summary:    "",
		WhatTheyDo: []string{"builds rockets", "sells launches"},
		Keywords:   []string{},
		Signals: []profile.Signal{
			profile.Headline("Careers page lists 12 roles"),
			profile.Assessed("Public pricing", profile.SignalPositive, "traction"),
			profile.Assessed("Odd type", profile.SignalNeutral, ""),
			profile.Assessed("Upper type", profile.SignalRisk, ""),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reply  string
		want   profile.ThesisMatch
		wantOK bool
	}{
		{name: "valid", reply: `{"score": 85, "reasoning": "Strong fit"}`, want: profile.ThesisMatch{Score: 85, Reasoning: "Strong fit"}, wantOK: true},
		{name: "fenced", reply: "```json\n{\"score\": 40, \"reasoning\": \"meh\"}\n```", want: profile.ThesisMatch{Score: 40, Reasoning: "meh"}, wantOK: true},
		{name: "clamped high", reply: `{"score": 250, "reasoning": "r"}`, want: profile.ThesisMatch{Score: 100, Reasoning: "r"}, wantOK: true},
		{name: "clamped low", reply: `{"score": -3, "reasoning": "r"}`, want: profile.ThesisMatch{Score: 0, Reasoning: "r"}, wantOK: true},
		{name: "rounded", reply: `{"score": 72.5, "reasoning": "r"}`, want: profile.ThesisMatch{Score: 73, Reasoning: "r"}, wantOK: true},
		{name: "string score", reply: `{"score": "85", "reasoning": "r"}`},
		{name: "missing reasoning", reply: `{"score": 85}`},
		{name: "not json", reply: "I cannot score this company."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := extract.Score(tt.reply)
			if ok != tt.wantOK {
				t.Fatalf("ok=%v want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("got %#v want %#v", got, tt.want)
			}
		})
	}
}
