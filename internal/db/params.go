package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The wizard posts numbers either as JSON numbers or as the raw text of
// an input box, and sends "" for untouched fields. These types accept all
// of those; "" and null leave Valid false.

type OptFloat struct {
	Float64 float64
	Valid   bool
}

type OptInt struct {
	Int64 int64
	Valid bool
}

type OptDate struct {
	Date  Date
	Valid bool
}

func (o *OptFloat) UnmarshalJSON(b []byte) error {
	raw, ok, err := scalarText(b)
	if err != nil || !ok {
		return err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("a valid number is required")
	}
	*o = OptFloat{Float64: v, Valid: true}
	return nil
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	raw, ok, err := scalarText(b)
	if err != nil || !ok {
		return err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Accept 12.0 from number inputs, reject 12.5.
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return errors.New("a valid integer is required")
		}
		v = int64(f)
	}
	*o = OptInt{Int64: v, Valid: true}
	return nil
}

func (o *OptDate) UnmarshalJSON(b []byte) error {
	raw, ok, err := scalarText(b)
	if err != nil || !ok {
		return err
	}
	d, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*o = OptDate{Date: d, Valid: true}
	return nil
}

func (o OptFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Float64
	return &v
}

func (o OptInt) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Int64
	return &v
}

func (o OptDate) Ptr() *Date {
	if !o.Valid {
		return nil
	}
	d := o.Date
	return &d
}

// scalarText returns the trimmed text of a JSON number or string. ok is
// false for null and blank strings.
func scalarText(b []byte) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	if b[0] == '{' || b[0] == '[' || b[0] == 't' || b[0] == 'f' {
		return "", false, fmt.Errorf("unexpected JSON value %s", b)
	}
	return string(b), true, nil
}

// CreateConfirmationParams is the create payload. Absent fields take the
// column defaults.
type CreateConfirmationParams struct {
	Seller            *string  `json:"seller"`
	Buyer             OptInt   `json:"buyer"`
	Material          OptInt   `json:"material"`
	Quantity          OptFloat `json:"quantity"`
	QuantityTolerance OptFloat `json:"quantity_tolerance"`

	DeliveryTerm               OptInt  `json:"delivery_term"`
	DeliveryPoint              OptInt  `json:"delivery_point"`
	Packaging                  OptInt  `json:"packaging"`
	TransportMode              OptInt  `json:"transport_mode"`
	InlandFreightBuyer         bool    `json:"inland_freight_buyer"`
	ShipmentPeriodFrom         OptDate `json:"shipment_period_from"`
	ShipmentPeriodTo           OptDate `json:"shipment_period_to"`
	ShipmentsEvenlyDistributed bool    `json:"shipments_evenly_distributed"`

	AssayPb                 OptFloat `json:"assay_pb"`
	AssayZn                 OptFloat `json:"assay_zn"`
	AssayCu                 OptFloat `json:"assay_cu"`
	AssayAg                 OptFloat `json:"assay_ag"`
	ChinaImportCompliant    bool     `json:"china_import_compliant"`
	FreeOfHarmfulImpurities bool     `json:"free_of_harmful_impurities"`

	TreatmentCharge OptFloat `json:"treatment_charge"`
	RefiningCharge  OptFloat `json:"refining_charge"`

	PaymentMethod        OptInt  `json:"payment_method"`
	Currency             OptInt  `json:"currency"`
	TriggeringEvent      OptInt  `json:"triggering_event"`
	PrepaymentPercentage OptInt  `json:"prepayment_percentage"`
	ProvisionalPayment   string  `json:"provisional_payment"`
	FinalPayment         string  `json:"final_payment"`
	FinalLocation        string  `json:"final_location"`
	CostSharingBuyer     OptInt  `json:"cost_sharing_buyer"`
	CostSharingSeller    OptInt  `json:"cost_sharing_seller"`
	NominatedSurveyor    OptInt  `json:"nominated_surveyor"`
	PaymentClause        *string `json:"payment_clause"`
	SurveyorClause       *string `json:"surveyor_clause"`
	WSMDClause           *string `json:"wsmd_clause"`
}

const (
	DefaultSeller            = "Open Mineral Ltd"
	DefaultQuantityTolerance = 5.0
	DefaultCostSharing       = 50
	DefaultPaymentClause     = "Payment shall be made within 30 days of invoice date"
	DefaultSurveyorClause    = "Surveyor shall be mutually agreed upon by both parties"
	DefaultWSMDClause        = "Weighing, sampling, moisture determination and analysis shall be carried out at final destination"
)

// Build applies defaults and validates. The result has no id or
// timestamps.
func (p CreateConfirmationParams) Build() (BusinessConfirmation, error) {
	c := BusinessConfirmation{
		Seller:            DefaultSeller,
		QuantityTolerance: DefaultQuantityTolerance,
		CostSharingBuyer:  DefaultCostSharing,
		CostSharingSeller: DefaultCostSharing,
		PaymentClause:     DefaultPaymentClause,
		SurveyorClause:    DefaultSurveyorClause,
		WSMDClause:        DefaultWSMDClause,

		Buyer:                      p.Buyer.Ptr(),
		Material:                   p.Material.Ptr(),
		Quantity:                   p.Quantity.Ptr(),
		DeliveryTerm:               p.DeliveryTerm.Ptr(),
		DeliveryPoint:              p.DeliveryPoint.Ptr(),
		Packaging:                  p.Packaging.Ptr(),
		TransportMode:              p.TransportMode.Ptr(),
		InlandFreightBuyer:         p.InlandFreightBuyer,
		ShipmentPeriodFrom:         p.ShipmentPeriodFrom.Ptr(),
		ShipmentPeriodTo:           p.ShipmentPeriodTo.Ptr(),
		ShipmentsEvenlyDistributed: p.ShipmentsEvenlyDistributed,
		AssayPb:                    p.AssayPb.Ptr(),
		AssayZn:                    p.AssayZn.Ptr(),
		AssayCu:                    p.AssayCu.Ptr(),
		AssayAg:                    p.AssayAg.Ptr(),
		ChinaImportCompliant:       p.ChinaImportCompliant,
		FreeOfHarmfulImpurities:    p.FreeOfHarmfulImpurities,
		TreatmentCharge:            p.TreatmentCharge.Ptr(),
		RefiningCharge:             p.RefiningCharge.Ptr(),
		PaymentMethod:              p.PaymentMethod.Ptr(),
		Currency:                   p.Currency.Ptr(),
		TriggeringEvent:            p.TriggeringEvent.Ptr(),
		ProvisionalPayment:         p.ProvisionalPayment,
		FinalPayment:               p.FinalPayment,
		FinalLocation:              p.FinalLocation,
		NominatedSurveyor:          p.NominatedSurveyor.Ptr(),
	}
	if p.Seller != nil {
		c.Seller = *p.Seller
	}
	if p.QuantityTolerance.Valid {
		c.QuantityTolerance = p.QuantityTolerance.Float64
	}
	if p.PrepaymentPercentage.Valid {
		c.PrepaymentPercentage = int(p.PrepaymentPercentage.Int64)
	}
	if p.CostSharingBuyer.Valid {
		c.CostSharingBuyer = int(p.CostSharingBuyer.Int64)
	}
	if p.CostSharingSeller.Valid {
		c.CostSharingSeller = int(p.CostSharingSeller.Int64)
	}
	if p.PaymentClause != nil {
		c.PaymentClause = *p.PaymentClause
	}
	if p.SurveyorClause != nil {
		c.SurveyorClause = *p.SurveyorClause
	}
	if p.WSMDClause != nil {
		c.WSMDClause = *p.WSMDClause
	}
	return c, c.Validate()
}

// Validate checks ranges and lengths the schema does not enforce on every
// driver.
func (c BusinessConfirmation) Validate() error {
	if strings.TrimSpace(c.Seller) == "" {
		return &ValidationError{Field: "seller", Message: "This field may not be blank."}
	}
	if err := maxLen("seller", c.Seller, 100); err != nil {
		return err
	}
	if err := maxLen("final_location", c.FinalLocation, 200); err != nil {
		return err
	}

	// Digits and places mirror the NUMERIC(p,2) columns.
	for _, f := range []struct {
		name   string
		v      *float64
		digits int
	}{
		{"quantity", c.Quantity, 10},
		{"quantity_tolerance", &c.QuantityTolerance, 5},
		{"assay_pb", c.AssayPb, 5},
		{"assay_zn", c.AssayZn, 5},
		{"assay_cu", c.AssayCu, 5},
		{"assay_ag", c.AssayAg, 8},
		{"treatment_charge", c.TreatmentCharge, 10},
		{"refining_charge", c.RefiningCharge, 10},
	} {
		if f.v == nil {
			continue
		}
		if *f.v < 0 {
			return &ValidationError{Field: f.name, Message: "Ensure this value is greater than or equal to 0."}
		}
		if err := checkDecimal(f.name, *f.v, f.digits, 2); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		name string
		v    int
	}{
		{"prepayment_percentage", c.PrepaymentPercentage},
		{"cost_sharing_buyer", c.CostSharingBuyer},
		{"cost_sharing_seller", c.CostSharingSeller},
	} {
		if f.v < 0 || f.v > 100 {
			return &ValidationError{Field: f.name, Message: "Ensure this value is between 0 and 100."}
		}
	}

	if c.ShipmentPeriodFrom != nil && c.ShipmentPeriodTo != nil && c.ShipmentPeriodTo.Before(c.ShipmentPeriodFrom.Time) {
		return &ValidationError{Field: "shipment_period_to", Message: "Shipment period end must not be before its start."}
	}
	return nil
}

// checkDecimal rejects values that do not fit a decimal column with
// maxDigits total digits and places fractional digits. v is read in its
// shortest decimal form, so 1.10 counts one place.
func checkDecimal(field string, v float64, maxDigits, places int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Message: "A valid number is required."}
	}
	whole, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
	wholeDigits := len(whole)
	if whole == "0" {
		wholeDigits = 0
	}
	switch {
	case wholeDigits+len(frac) > maxDigits:
		return &ValidationError{Field: field, Message: fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits)}
	case len(frac) > places:
		return &ValidationError{Field: field, Message: fmt.Sprintf("Ensure that there are no more than %d decimal places.", places)}
	case wholeDigits > maxDigits-places:
		return &ValidationError{Field: field, Message: fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxDigits-places)}
	}
	return nil
}
