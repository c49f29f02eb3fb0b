// Package extract recovers structured records from free-form LLM replies.
//
// Models are told to answer with raw JSON but often wrap it in prose or code
// fences. Object tries an ordered list of strategies and returns the first
// JSON object any of them yields. A strategy that finds an invalid candidate
// simply fails; the next one is always tried.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Strategy identifies which cascade step produced a record.
type Strategy int

const (
	StrategyNone Strategy = iota
	// StrategyWhole parses the entire reply.
	StrategyWhole
	// StrategyFenced parses the first ``` or ```json fenced block.
	StrategyFenced
	// StrategyBraces parses the span from the first '{' to the last '}'.
	StrategyBraces
	// StrategyLenient parses the brace span as JSON5 (trailing commas,
	// single quotes, unquoted keys, comments).
	StrategyLenient
)

func (s Strategy) String() string {
	switch s {
	case StrategyWhole:
		return "whole"
	case StrategyFenced:
		return "fenced"
	case StrategyBraces:
		return "braces"
	case StrategyLenient:
		return "lenient"
	default:
		return "none"
	}
}

// Record is a decoded JSON object.
type Record map[string]any

type step struct {
	strategy Strategy
	parse    func(reply string) (Record, bool)
}

var cascade = []step{
	{StrategyWhole, parseWhole},
	{StrategyFenced, parseFenced},
	{StrategyBraces, parseBraces},
	{StrategyLenient, parseLenient},
}

// Object returns the first JSON object recovered from reply and the strategy
// that found it. ok is false when every strategy fails.
func Object(reply string) (rec Record, strategy Strategy, ok bool) {
	for _, s := range cascade {
		if rec, ok := s.parse(reply); ok {
			return rec, s.strategy, true
		}
	}
	return nil, StrategyNone, false
}

var fenceRe = regexp.MustCompile("(?s)```(?i:json)?\\s*(.*?)\\s*```")

func parseWhole(reply string) (Record, bool) {
	return decodeObject(reply)
}

func parseFenced(reply string) (Record, bool) {
	m := fenceRe.FindStringSubmatch(reply)
	if m == nil {
		return nil, false
	}
	return decodeObject(m[1])
}

func parseBraces(reply string) (Record, bool) {
	span, ok := braceSpan(reply)
	if !ok {
		return nil, false
	}
	return decodeObject(span)
}

func parseLenient(reply string) (Record, bool) {
	span, ok := braceSpan(reply)
	if !ok {
		return nil, false
	}
	var v any
	if err := json5.Unmarshal([]byte(span), &v); err != nil {
		return nil, false
	}
	return asRecord(v)
}

func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func decodeObject(s string) (Record, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return asRecord(v)
}

// Valid JSON that is not an object does not count as a record.
func asRecord(v any) (Record, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return Record(m), true
}
