package suggest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Treatment charge thresholds in USD per dry metric tonne.
const (
	tcHigh      = 350.0
	tcLow       = 280.0
	tcGoodFloor = 300.0
	tcGoodCeil  = 330.0
)

// Refining charge thresholds in USD per troy ounce.
const (
	rcHigh      = 5.00
	rcLow       = 3.50
	rcGoodFloor = 4.00
	rcGoodCeil  = 4.60
)

const (
	defaultTCMessage = "Industry average TC for Lead: $310-$325/dmt"
	defaultRCMessage = "Market average RC for Ag: $4.20-$4.50/toz"

	// errorRCMessage is what the endpoint answers when the whole
	// computation failed.
	errorRCMessage = "Your RC is higher than average, adjust to $4.50?"
)

// FallbackTC returns rule-based guidance for a treatment charge. material
// is accepted so thresholds can vary per material later; today they don't.
func FallbackTC(value, material string) string {
	tc := parseCharge(value)
	v := formatCharge(tc)

	switch {
	case tc == 0:
		return defaultTCMessage
	case tc > tcHigh:
		return fmt.Sprintf("⚠️ Your TC ($%s) is above market average. Consider $320-$330 for better competitiveness.", v)
	case tc < tcLow:
		return fmt.Sprintf("💡 Your TC ($%s) is below market. Consider $310-$320 for fair pricing.", v)
	case tc >= tcGoodFloor && tc <= tcGoodCeil:
		return fmt.Sprintf("✅ Your TC ($%s) is within market range. Good pricing!", v)
	default:
		return fmt.Sprintf("📊 Your TC ($%s) is competitive. Market range: $310-$325/dmt", v)
	}
}

// FallbackRC returns rule-based guidance for a refining charge.
func FallbackRC(value, material string) string {
	rc := parseCharge(value)
	v := formatCharge(rc)

	switch {
	case rc == 0:
		return defaultRCMessage
	case rc > rcHigh:
		return fmt.Sprintf("⚠️ Your RC ($%s) is high. Suggest $4.50 for market competitiveness.", v)
	case rc < rcLow:
		return fmt.Sprintf("💡 Your RC ($%s) is low. Consider $4.20 for fair pricing.", v)
	case rc >= rcGoodFloor && rc <= rcGoodCeil:
		return fmt.Sprintf("✅ Your RC ($%s) is within market range. Good pricing!", v)
	default:
		return fmt.Sprintf("📊 Your RC ($%s) is competitive. Market range: $4.20-$4.50/toz", v)
	}
}

// fallback computes both suggestions locally.
func fallback(req Request) Result {
	return Result{
		TCSuggestion: FallbackTC(req.TreatmentCharge, req.Material),
		RCSuggestion: FallbackRC(req.RefiningCharge, req.Material),
		Source:       SourceFallback,
	}
}

// Default is the payload served when suggestion computation failed.
func Default() Result {
	return Result{
		TCSuggestion: defaultTCMessage,
		RCSuggestion: errorRCMessage,
		Source:       SourceFallback,
	}
}

// parseCharge treats empty, unparsable and non-finite input as zero.
func parseCharge(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatCharge(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
