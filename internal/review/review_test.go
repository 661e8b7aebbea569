package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmineral/confirmation/internal/db"
)

func ptr[T any](v T) *T { return &v }

func fields(fs []Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Field)
	}
	return out
}

func TestCheckEmptyConfirmation(t *testing.T) {
	got := Check(db.BusinessConfirmation{})
	assert.Equal(t, []string{"nominated_surveyor", "final_location", "payment_method"}, fields(got))
	assert.True(t, Blocking(got))
	assert.Equal(t, Error, got[2].Type)
}

func TestCheckComplete(t *testing.T) {
	c := db.BusinessConfirmation{
		NominatedSurveyor: ptr[int64](1),
		FinalLocation:     "Lulea smelter",
		PaymentMethod:     ptr[int64](2),
		TreatmentCharge:   ptr(350.0),
		RefiningCharge:    ptr(5.0),
	}
	got := Check(c)
	assert.Empty(t, got)
	assert.False(t, Blocking(got))
}

func TestCheckPricing(t *testing.T) {
	c := db.BusinessConfirmation{
		NominatedSurveyor: ptr[int64](1),
		FinalLocation:     "Antwerp",
		PaymentMethod:     ptr[int64](2),
		TreatmentCharge:   ptr(350.01),
		RefiningCharge:    ptr(5.2),
	}
	got := Check(c)
	assert.Equal(t, []string{"treatment_charge", "refining_charge"}, fields(got))
	assert.False(t, Blocking(got))
	assert.Contains(t, got[0].Message, "20% higher than last month")
}
