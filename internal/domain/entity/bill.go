package entity

import "time"

// Bill represents one insurance claim's billing record as it moves through
// the six-stage lifecycle. Fields are grouped by the stage that writes them.
type Bill struct {
	// Identity
	ID        string    `json:"id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Reception
	ArrivalDate        *time.Time `json:"arrival_date,omitempty"`
	ProviderID         string     `json:"provider_id"`
	ClaimNumber        string     `json:"claim_number"`
	BillingType        string     `json:"billing_type"`
	InvoiceNumber      string     `json:"invoice_number"`
	ControlNumber      string     `json:"control_number"`
	Currency           string     `json:"currency"`
	TotalBilled        float64    `json:"total_billed"`
	ReceivingAnalystID string     `json:"receiving_analyst_id"`

	// Liquidation
	LiquidationDate      *time.Time `json:"liquidation_date,omitempty"`
	ClaimType            string     `json:"claim_type"`
	BilledAmount         float64    `json:"billed_amount"`
	AdministrativeAmount float64    `json:"administrative_amount"`
	GeneralExpenses      float64    `json:"general_expenses"`
	MedicalFees          float64    `json:"medical_fees"`
	ClinicalServices     float64    `json:"clinical_services"`
	Retention            float64    `json:"retention"`
	IndemnifiableAmount  float64    `json:"indemnifiable_amount"`
	BatchTag             string     `json:"batch_tag"`
	LiquidatingAnalystID string     `json:"liquidating_analyst_id"`

	// Audit
	AuditDate *time.Time `json:"audit_date,omitempty"`
	AuditorID string     `json:"auditor_id"`

	// Scheduling
	ScheduledDate          *time.Time `json:"scheduled_date,omitempty"`
	AdministrativeDecision string     `json:"administrative_decision"`
	SchedulingAnalystID    string     `json:"scheduling_analyst_id"`

	// Payment execution
	PaymentDate            *time.Time `json:"payment_date,omitempty"`
	AmountLocal            float64    `json:"amount_local"`
	ExchangeRate           float64    `json:"exchange_rate"`
	AmountForeign          float64    `json:"amount_foreign"`
	BankReference          string     `json:"bank_reference"`
	CompanyVarianceAmount  float64    `json:"company_variance_amount"`
	ProviderVarianceAmount float64    `json:"provider_variance_amount"`
	PayingAnalystID        string     `json:"paying_analyst_id"`

	// Settlement
	SettlementDate    *time.Time `json:"settlement_date,omitempty"`
	SettlingAnalystID string     `json:"settling_analyst_id"`

	// Process status
	Status        string `json:"status"`         // coarse lifecycle label
	StageSequence string `json:"stage_sequence"` // which section was last written
}

// IsReturned reports whether forward edits are locked for non-admin roles.
func (b *Bill) IsReturned() bool {
	return b.Status == StatusReturned
}

// Clone returns an independent copy of the bill. Date pointers are
// duplicated too, so mutating the copy never reaches the original.
func (b *Bill) Clone() *Bill {
	c := *b
	c.ArrivalDate = cloneTime(b.ArrivalDate)
	c.LiquidationDate = cloneTime(b.LiquidationDate)
	c.AuditDate = cloneTime(b.AuditDate)
	c.ScheduledDate = cloneTime(b.ScheduledDate)
	c.PaymentDate = cloneTime(b.PaymentDate)
	c.SettlementDate = cloneTime(b.SettlementDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
