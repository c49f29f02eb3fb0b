// Package profile defines the enrichment output contract shared with callers.
//
// The JSON encoding of Profile is the wire format returned by the HTTP API and
// written by batch runs; it must stay stable across releases.
package profile

import "time"

// Profile is the structured enrichment of one company website.
type Profile struct {
	Summary     string       `json:"summary"`
	WhatTheyDo  []string     `json:"whatTheyDo"`
	Keywords    []string     `json:"keywords"`
	Signals     []Signal     `json:"signals"`
	Source      string       `json:"source"`
	ScrapedAt   time.Time    `json:"scrapedAt"`
	ThesisMatch *ThesisMatch `json:"thesisMatch,omitempty"`
}

// ThesisMatch scores how well a company fits the configured investment thesis.
type ThesisMatch struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// DefaultThesisMatch is substituted whenever scoring fails.
func DefaultThesisMatch() ThesisMatch {
	return ThesisMatch{Score: 0, Reasoning: "Evaluation failed or data unavailable."}
}

// ClampScore bounds a score to 0..100.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Company is the caller-supplied context used for thesis scoring.
//
// Only Name and Description are embedded in the scoring prompt; the rest is
// carried through batch runs untouched.
type Company struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Website     string   `json:"website,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Stage       string   `json:"stage,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}
