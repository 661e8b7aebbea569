// Package review runs the checks shown on the wizard's final step before a
// confirmation is submitted.
package review

import "github.com/openmineral/confirmation/internal/db"

type Severity string

const (
	Warning Severity = "warning"
	Error   Severity = "error"
)

type Finding struct {
	Type    Severity `json:"type"`
	Message string   `json:"message"`
	Field   string   `json:"field"`
}

const (
	// Treatment charges above this were 20% over last month's level.
	tcAlertThreshold = 350.0
	rcAlertThreshold = 5.0
)

// Check returns the findings for c in display order. An empty result
// means nothing needs attention.
func Check(c db.BusinessConfirmation) []Finding {
	out := []Finding{}
	if c.NominatedSurveyor == nil {
		out = append(out, Finding{Warning, "⚠️ Surveyor not selected", "nominated_surveyor"})
	}
	if c.FinalLocation == "" {
		out = append(out, Finding{Warning, "⚠️ Final location not specified", "final_location"})
	}
	if c.PaymentMethod == nil {
		out = append(out, Finding{Error, "❌ Payment method is required", "payment_method"})
	}
	if c.TreatmentCharge != nil && *c.TreatmentCharge > tcAlertThreshold {
		out = append(out, Finding{Warning, "⚠️ Treatment Charge is 20% higher than last month. Proceed?", "treatment_charge"})
	}
	if c.RefiningCharge != nil && *c.RefiningCharge > rcAlertThreshold {
		out = append(out, Finding{Warning, "⚠️ Refining Charge is above market average", "refining_charge"})
	}
	return out
}

// Blocking reports whether any finding is an error.
func Blocking(findings []Finding) bool {
	for _, f := range findings {
		if f.Type == Error {
			return true
		}
	}
	return false
}
