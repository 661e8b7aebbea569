package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var confirmationColumns = []string{
	"seller", "buyer", "material", "quantity", "quantity_tolerance",
	"delivery_term", "delivery_point", "packaging", "transport_mode",
	"inland_freight_buyer", "shipment_period_from", "shipment_period_to", "shipments_evenly_distributed",
	"assay_pb", "assay_zn", "assay_cu", "assay_ag",
	"china_import_compliant", "free_of_harmful_impurities",
	"treatment_charge", "refining_charge",
	"payment_method", "currency", "triggering_event",
	"prepayment_percentage", "provisional_payment", "final_payment",
	"final_location", "cost_sharing_buyer", "cost_sharing_seller", "nominated_surveyor",
	"payment_clause", "surveyor_clause", "wsmd_clause",
	"created_at", "updated_at",
}

func (c *BusinessConfirmation) values() []any {
	return []any{
		c.Seller, c.Buyer, c.Material, c.Quantity, c.QuantityTolerance,
		c.DeliveryTerm, c.DeliveryPoint, c.Packaging, c.TransportMode,
		c.InlandFreightBuyer, c.ShipmentPeriodFrom, c.ShipmentPeriodTo, c.ShipmentsEvenlyDistributed,
		c.AssayPb, c.AssayZn, c.AssayCu, c.AssayAg,
		c.ChinaImportCompliant, c.FreeOfHarmfulImpurities,
		c.TreatmentCharge, c.RefiningCharge,
		c.PaymentMethod, c.Currency, c.TriggeringEvent,
		c.PrepaymentPercentage, c.ProvisionalPayment, c.FinalPayment,
		c.FinalLocation, c.CostSharingBuyer, c.CostSharingSeller, c.NominatedSurveyor,
		c.PaymentClause, c.SurveyorClause, c.WSMDClause,
		c.CreatedAt, c.UpdatedAt,
	}
}

func (c *BusinessConfirmation) dest() []any {
	return []any{
		&c.ID,
		&c.Seller, &c.Buyer, &c.Material, &c.Quantity, &c.QuantityTolerance,
		&c.DeliveryTerm, &c.DeliveryPoint, &c.Packaging, &c.TransportMode,
		&c.InlandFreightBuyer, &c.ShipmentPeriodFrom, &c.ShipmentPeriodTo, &c.ShipmentsEvenlyDistributed,
		&c.AssayPb, &c.AssayZn, &c.AssayCu, &c.AssayAg,
		&c.ChinaImportCompliant, &c.FreeOfHarmfulImpurities,
		&c.TreatmentCharge, &c.RefiningCharge,
		&c.PaymentMethod, &c.Currency, &c.TriggeringEvent,
		&c.PrepaymentPercentage, &c.ProvisionalPayment, &c.FinalPayment,
		&c.FinalLocation, &c.CostSharingBuyer, &c.CostSharingSeller, &c.NominatedSurveyor,
		&c.PaymentClause, &c.SurveyorClause, &c.WSMDClause,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

// CreateConfirmation builds, validates and inserts a confirmation. An
// unknown reference id yields ErrForeignKey.
func (q *Queries) CreateConfirmation(ctx context.Context, p CreateConfirmationParams) (BusinessConfirmation, error) {
	c, err := p.Build()
	if err != nil {
		return BusinessConfirmation{}, err
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	query, args, err := q.sb.Insert("business_confirmations").
		Columns(confirmationColumns...).
		Values(c.values()...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return BusinessConfirmation{}, fmt.Errorf("build insert confirmation: %w", err)
	}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		return BusinessConfirmation{}, fmt.Errorf("insert confirmation: %w", mapError(err))
	}
	return c, nil
}

func (q *Queries) GetConfirmation(ctx context.Context, id int64) (BusinessConfirmation, error) {
	query, args, err := q.sb.Select(append([]string{"id"}, confirmationColumns...)...).
		From("business_confirmations").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return BusinessConfirmation{}, fmt.Errorf("build get confirmation: %w", err)
	}
	var c BusinessConfirmation
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(c.dest()...); err != nil {
		return BusinessConfirmation{}, fmt.Errorf("get confirmation %d: %w", id, mapError(err))
	}
	return c, nil
}
