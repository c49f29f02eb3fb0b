package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SignalKind tags which shape a Signal carries.
type SignalKind int

const (
	// SignalHeadline is the legacy bare-string signal.
	SignalHeadline SignalKind = iota
	// SignalAssessed is a typed signal with reasoning.
	SignalAssessed
)

func (k SignalKind) String() string {
	switch k {
	case SignalHeadline:
		return "headline"
	case SignalAssessed:
		return "assessed"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// SignalType classifies an assessed signal from an investor's point of view.
type SignalType string

const (
	SignalPositive SignalType = "positive"
	SignalNeutral  SignalType = "neutral"
	SignalRisk     SignalType = "risk"
)

// Valid reports whether t is one of the known signal types.
func (t SignalType) Valid() bool {
	switch t {
	case SignalPositive, SignalNeutral, SignalRisk:
		return true
	}
	return false
}

// Signal is a short investor-relevant observation. It is either a Headline
// (encoded as a JSON string) or Assessed (encoded as an object).
//
// Type and Reasoning are empty for headlines.
type Signal struct {
	Kind      SignalKind
	Text      string
	Type      SignalType
	Reasoning string
}

// Headline builds a legacy bare-string signal.
func Headline(text string) Signal {
	return Signal{Kind: SignalHeadline, Text: text}
}

// Assessed builds a typed signal.
func Assessed(text string, typ SignalType, reasoning string) Signal {
	return Signal{Kind: SignalAssessed, Text: text, Type: typ, Reasoning: reasoning}
}

type assessedWire struct {
	Text      string     `json:"text"`
	Type      SignalType `json:"type"`
	Reasoning string     `json:"reasoning"`
}

func (s Signal) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SignalHeadline:
		return json.Marshal(s.Text)
	case SignalAssessed:
		return json.Marshal(assessedWire{Text: s.Text, Type: s.Type, Reasoning: s.Reasoning})
	default:
		return nil, fmt.Errorf("profile: cannot encode signal of kind %s", s.Kind)
	}
}

func (s *Signal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("profile: empty signal")
	}
	switch b[0] {
	case '"':
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		*s = Headline(text)
		return nil
	case '{':
		var w assessedWire
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		if !w.Type.Valid() {
			return fmt.Errorf("profile: unknown signal type %q", w.Type)
		}
		*s = Assessed(w.Text, w.Type, w.Reasoning)
		return nil
	default:
		return fmt.Errorf("profile: signal must be a string or object, got %.20s", string(b))
	}
}
