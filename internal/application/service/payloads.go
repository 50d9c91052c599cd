package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
	"github.com/jmarquez/insurance-billing/internal/domain/finance"
	"github.com/jmarquez/insurance-billing/internal/domain/workflow"
)

// StagePayload is the tagged union of per-stage submission payloads. The
// engine dispatches on the concrete type; the Stage discriminant decides
// permission checks and the status outcome.
type StagePayload interface {
	Stage() workflow.Stage
}

// ReceptionPayload registers a bill's arrival. Submitting it with an empty
// bill ID creates the record.
type ReceptionPayload struct {
	ArrivalDate        *time.Time `json:"arrival_date"`
	ProviderID         string     `json:"provider_id" validate:"required"`
	ClaimNumber        string     `json:"claim_number" validate:"required"`
	BillingType        string     `json:"billing_type" validate:"required,oneof=INVOICE CREDIT_NOTE"`
	InvoiceNumber      string     `json:"invoice_number" validate:"required"`
	ControlNumber      string     `json:"control_number"`
	Currency           string     `json:"currency" validate:"required,oneof=USD LOCAL"`
	TotalBilled        float64    `json:"total_billed" validate:"required,gt=0"`
	ReceivingAnalystID string     `json:"receiving_analyst_id" validate:"required"`
}

// LiquidationPayload records the claim classification and expense breakdown.
// The administrative amount, retention and indemnifiable amount are always
// recomputed server-side, never taken from the caller.
type LiquidationPayload struct {
	LiquidationDate      *time.Time `json:"liquidation_date"`
	ClaimType            string     `json:"claim_type" validate:"required"`
	BilledAmount         float64    `json:"billed_amount" validate:"required,gt=0"`
	GeneralExpenses      float64    `json:"general_expenses" validate:"gte=0"`
	MedicalFees          float64    `json:"medical_fees" validate:"gte=0"`
	ClinicalServices     float64    `json:"clinical_services" validate:"gte=0"`
	BatchTag             string     `json:"batch_tag" validate:"required"`
	LiquidatingAnalystID string     `json:"liquidating_analyst_id" validate:"required"`
}

// AuditPayload records the audit sign-off.
type AuditPayload struct {
	AuditDate *time.Time `json:"audit_date"`
	AuditorID string     `json:"auditor_id" validate:"required"`
}

// SchedulingPayload records the administrative decision. A RETURNED decision
// halts forward edits for non-admin roles until an admin resubmits this
// stage with decision SCHEDULED.
type SchedulingPayload struct {
	ScheduledDate          *time.Time `json:"scheduled_date"`
	AdministrativeDecision string     `json:"administrative_decision" validate:"required,oneof=SCHEDULED RETURNED"`
	SchedulingAnalystID    string     `json:"scheduling_analyst_id" validate:"required"`
}

// PaymentPayload records the payment execution. Exactly one of the two
// linked amounts is authoritative per edit, named by LastEdited; the other
// is derived when the exchange rate is non-zero.
type PaymentPayload struct {
	PaymentDate            *time.Time          `json:"payment_date"`
	AmountLocal            float64             `json:"amount_local" validate:"gte=0"`
	AmountForeign          float64             `json:"amount_foreign" validate:"gte=0"`
	ExchangeRate           float64             `json:"exchange_rate" validate:"gte=0"`
	LastEdited             finance.EditedField `json:"last_edited" validate:"required,oneof=amountLocal amountForeign"`
	BankReference          string              `json:"bank_reference" validate:"required"`
	CompanyVarianceAmount  float64             `json:"company_variance_amount"`
	ProviderVarianceAmount float64             `json:"provider_variance_amount"`
	PayingAnalystID        string              `json:"paying_analyst_id" validate:"required"`
}

// SettlementPayload closes out the bill.
type SettlementPayload struct {
	SettlementDate    *time.Time `json:"settlement_date"`
	SettlingAnalystID string     `json:"settling_analyst_id" validate:"required"`
}

func (ReceptionPayload) Stage() workflow.Stage { return workflow.StageReception }

func (LiquidationPayload) Stage() workflow.Stage { return workflow.StageLiquidation }

func (AuditPayload) Stage() workflow.Stage { return workflow.StageAudit }

func (SchedulingPayload) Stage() workflow.Stage { return workflow.StageScheduling }

func (PaymentPayload) Stage() workflow.Stage { return workflow.StagePaymentExecution }

func (SettlementPayload) Stage() workflow.Stage { return workflow.StageSettlement }

// validatePayload runs struct-tag validation plus the checks tags cannot
// express, translating failures into the workflow error taxonomy.
func validatePayload(v *validator.Validate, payload StagePayload) error {
	if err := v.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return workflow.NewValidationError(first.Field(), "failed rule "+first.Tag())
		}
		return workflow.NewValidationError("payload", err.Error())
	}

	if p, ok := payload.(LiquidationPayload); ok {
		if !entity.IsValidClaimType(p.ClaimType) {
			return workflow.NewValidationError("ClaimType", "unknown claim category")
		}
	}

	return nil
}
