package suggest

import "strings"

const (
	tcMarker = "TC:"
	rcMarker = "RC:"
	aiTag    = "AI: "
)

// ParseReply extracts the TC and RC suggestions from a model reply of the
// form "TC: ... RC: ...". Each suggestion is the text after the first
// occurrence of its marker, cut at the next occurrence of the same marker;
// TC is additionally cut at the first "RC:". ok is false when either
// marker is missing.
func ParseReply(reply string) (tc, rc string, ok bool) {
	if !strings.Contains(reply, tcMarker) || !strings.Contains(reply, rcMarker) {
		return "", "", false
	}
	tc = between(reply, tcMarker)
	tc, _, _ = strings.Cut(tc, rcMarker)
	rc = between(reply, rcMarker)
	return strings.TrimSpace(tc), strings.TrimSpace(rc), true
}

// between returns the text after the first marker up to the second one,
// or to the end when the marker appears once.
func between(s, marker string) string {
	_, after, _ := strings.Cut(s, marker)
	out, _, _ := strings.Cut(after, marker)
	return out
}

// applyReply turns a non-empty reply into tagged suggestions. A reply
// without both markers becomes the TC suggestion verbatim and the
// rule-based RC suggestion is kept.
func applyReply(reply, ruleRC string) (tc, rc string) {
	if t, r, ok := ParseReply(reply); ok {
		return aiTag + t, aiTag + r
	}
	return aiTag + reply, ruleRC
}
