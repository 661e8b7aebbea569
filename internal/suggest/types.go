// Package suggest produces treatment- and refining-charge pricing guidance.
//
// An Engine answers from a short-lived in-memory Cache when it can,
// otherwise it evaluates fixed market thresholds and, when a Generator is
// configured, asks a remote text model for a better-worded suggestion.
package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Source reports where a Result came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Request is the partial trading-term input the wizard posts.
type Request struct {
	Material        string `json:"material"`
	TreatmentCharge string `json:"treatment_charge"`
	RefiningCharge  string `json:"refining_charge"`
	DeliveryPoint   string `json:"delivery_point"`

	// Set when a charge arrived as JSON 0 or false. Such a value keys the
	// cache but does not count as the user editing.
	tcFalsy, rcFalsy bool
}

// Result is the payload returned to callers and stored in the cache.
type Result struct {
	TCSuggestion string `json:"tc_suggestion"`
	RCSuggestion string `json:"rc_suggestion"`
	Source       Source `json:"source"`
}

// Key joins the four fields with "_". Empty fields stay empty.
func (r Request) Key() string {
	return strings.Join([]string{r.Material, r.TreatmentCharge, r.RefiningCharge, r.DeliveryPoint}, "_")
}

// Editing reports whether the user has typed a charge value.
func (r Request) Editing() bool {
	return (r.TreatmentCharge != "" && !r.tcFalsy) || (r.RefiningCharge != "" && !r.rcFalsy)
}

// UnmarshalJSON accepts strings, numbers or null for every field, since
// the frontend posts select ids and number inputs as they come.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Material        flexString `json:"material"`
		TreatmentCharge flexString `json:"treatment_charge"`
		RefiningCharge  flexString `json:"refining_charge"`
		DeliveryPoint   flexString `json:"delivery_point"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Request{
		Material:        raw.Material.text,
		TreatmentCharge: raw.TreatmentCharge.text,
		RefiningCharge:  raw.RefiningCharge.text,
		DeliveryPoint:   raw.DeliveryPoint.text,
		tcFalsy:         raw.TreatmentCharge.falsy,
		rcFalsy:         raw.RefiningCharge.falsy,
	}
	return nil
}

// flexString renders a JSON scalar the way the wizard's backend always
// has: integers verbatim, floats in shortest form with a ".0" kept for
// whole numbers (4.20 → "4.2", 4.0 → "4.0"), booleans as True/False.
type flexString struct {
	text  string
	falsy bool
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = flexString{}
	switch {
	case bytes.Equal(data, []byte("null")):
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &f.text)
	case bytes.Equal(data, []byte("true")):
		f.text = "True"
	case bytes.Equal(data, []byte("false")):
		f.text, f.falsy = "False", true
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		text, zero, err := numberText(n)
		if err != nil {
			return err
		}
		f.text, f.falsy = text, zero
	}
	return nil
}

func numberText(n json.Number) (text string, zero bool, err error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		i, err := n.Int64()
		if err == nil {
			return strconv.FormatInt(i, 10), i == 0, nil
		}
	}
	v, err := n.Float64()
	if err != nil {
		return "", false, fmt.Errorf("invalid number %s: %w", n, err)
	}
	text = strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text, v == 0, nil
}
