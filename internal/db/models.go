package db

import (
	"time"
)

type Material struct {
	ID   int64  `json:"id" yaml:"-"`
	Name string `json:"name" yaml:"name"`
}

type Buyer struct {
	ID   int64  `json:"id" yaml:"-"`
	Name string `json:"name" yaml:"name"`
}

type DeliveryTerm struct {
	ID          int64   `json:"id" yaml:"-"`
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description" yaml:"description"`
}

type DeliveryPoint struct {
	ID      int64   `json:"id" yaml:"-"`
	Name    string  `json:"name" yaml:"name"`
	Country *string `json:"country" yaml:"country"`
}

type Packaging struct {
	ID   int64  `json:"id" yaml:"-"`
	Name string `json:"name" yaml:"name"`
}

type TransportMode struct {
	ID   int64  `json:"id" yaml:"-"`
	Name string `json:"name" yaml:"name"`
}

type PaymentMethod struct {
	ID          int64  `json:"id" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type Currency struct {
	ID     int64  `json:"id" yaml:"-"`
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

type TriggeringEvent struct {
	ID          int64  `json:"id" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type Surveyor struct {
	ID          int64  `json:"id" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Company     string `json:"company" yaml:"company"`
	ContactInfo string `json:"contact_info" yaml:"contact_info"`
}

// BusinessConfirmation is one deal captured by the wizard. Foreign keys
// and optional quantities are nil when unset.
type BusinessConfirmation struct {
	ID int64 `json:"id"`

	Seller            string   `json:"seller"`
	Buyer             *int64   `json:"buyer"`
	Material          *int64   `json:"material"`
	Quantity          *float64 `json:"quantity"`
	QuantityTolerance float64  `json:"quantity_tolerance"`

	DeliveryTerm               *int64 `json:"delivery_term"`
	DeliveryPoint              *int64 `json:"delivery_point"`
	Packaging                  *int64 `json:"packaging"`
	TransportMode              *int64 `json:"transport_mode"`
	InlandFreightBuyer         bool   `json:"inland_freight_buyer"`
	ShipmentPeriodFrom         *Date  `json:"shipment_period_from"`
	ShipmentPeriodTo           *Date  `json:"shipment_period_to"`
	ShipmentsEvenlyDistributed bool   `json:"shipments_evenly_distributed"`

	AssayPb                 *float64 `json:"assay_pb"`
	AssayZn                 *float64 `json:"assay_zn"`
	AssayCu                 *float64 `json:"assay_cu"`
	AssayAg                 *float64 `json:"assay_ag"`
	ChinaImportCompliant    bool     `json:"china_import_compliant"`
	FreeOfHarmfulImpurities bool     `json:"free_of_harmful_impurities"`

	TreatmentCharge *float64 `json:"treatment_charge"`
	RefiningCharge  *float64 `json:"refining_charge"`

	PaymentMethod        *int64 `json:"payment_method"`
	Currency             *int64 `json:"currency"`
	TriggeringEvent      *int64 `json:"triggering_event"`
	PrepaymentPercentage int    `json:"prepayment_percentage"`
	ProvisionalPayment   string `json:"provisional_payment"`
	FinalPayment         string `json:"final_payment"`

	FinalLocation     string `json:"final_location"`
	CostSharingBuyer  int    `json:"cost_sharing_buyer"`
	CostSharingSeller int    `json:"cost_sharing_seller"`
	NominatedSurveyor *int64 `json:"nominated_surveyor"`

	PaymentClause  string `json:"payment_clause"`
	SurveyorClause string `json:"surveyor_clause"`
	WSMDClause     string `json:"wsmd_clause"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// ProcessingTask tracks one background processing run. CeleryTaskID keeps
// the name the wizard polls on; it holds the queue task id.
type ProcessingTask struct {
	ID                   int64      `json:"id"`
	BusinessConfirmation int64      `json:"business_confirmation"`
	CeleryTaskID         string     `json:"celery_task_id"`
	Status               TaskStatus `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	CompletedAt          *time.Time `json:"completed_at"`
}
