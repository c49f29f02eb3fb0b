package extract

import (
	"math"
	"strings"

	"github.com/shpitdev/vc-enricher/pkg/profile"
)

// Fields are the model-produced parts of a profile.
type Fields struct {
	Summary    string
	WhatTheyDo []string
	Keywords   []string
	Signals    []profile.Signal
}

// Profile recovers profile fields from a reply. Every field is coerced on its
// own: absent or mistyped fields become empty values and never fail the record.
func Profile(reply string) (Fields, Strategy, bool) {
	rec, strategy, ok := Object(reply)
	if !ok {
		return Fields{}, StrategyNone, false
	}
	return Fields{
		Summary:    rec.String("summary"),
		WhatTheyDo: rec.Strings("whatTheyDo"),
		Keywords:   rec.Strings("keywords"),
		Signals:    rec.Signals("signals"),
	}, strategy, true
}

// Score recovers a thesis match. The reply must carry a numeric score and a
// string reasoning; anything else is reported as not ok.
func Score(reply string) (profile.ThesisMatch, bool) {
	rec, _, ok := Object(reply)
	if !ok {
		return profile.ThesisMatch{}, false
	}
	score, ok := rec["score"].(float64)
	if !ok {
		return profile.ThesisMatch{}, false
	}
	reasoning, ok := rec["reasoning"].(string)
	if !ok {
		return profile.ThesisMatch{}, false
	}
	score = math.Max(0, math.Min(100, math.Round(score)))
	return profile.ThesisMatch{
		Score:     profile.ClampScore(int(score)),
		Reasoning: strings.TrimSpace(reasoning),
	}, true
}

// String returns the trimmed string at key, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return strings.TrimSpace(s)
}

// Strings returns the non-empty string entries of the array at key, in order.
// Non-string entries are dropped.
func (r Record) Strings(key string) []string {
	out := []string{}
	items, _ := r[key].([]any)
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Signals decodes the array at key, keeping order. Strings become headlines,
// objects with a text become assessed signals, anything else is dropped.
func (r Record) Signals(key string) []profile.Signal {
	out := []profile.Signal{}
	items, _ := r[key].([]any)
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, profile.Headline(s))
			}
		case map[string]any:
			sig := Record(v)
			text := sig.String("text")
			if text == "" {
				continue
			}
			typ := profile.SignalType(strings.ToLower(sig.String("type")))
			if !typ.Valid() {
				typ = profile.SignalNeutral
			}
			out = append(out, profile.Assessed(text, typ, sig.String("reasoning")))
		}
	}
	return out
}
