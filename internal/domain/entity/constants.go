package entity

// Status constants for Bill
const (
	StatusReceived  = "RECEIVED"
	StatusPending   = "PENDING"
	StatusScheduled = "SCHEDULED"
	StatusPaid      = "PAID"
	StatusReturned  = "RETURNED"
)

// Billing type constants
const (
	BillingTypeInvoice    = "INVOICE"
	BillingTypeCreditNote = "CREDIT_NOTE"
)

// Currency constants
const (
	CurrencyUSD   = "USD"
	CurrencyLocal = "LOCAL"
)

// Administrative decision constants for the Scheduling stage
const (
	DecisionScheduled = "SCHEDULED"
	DecisionReturned  = "RETURNED"
)

// Claim type constants for the Liquidation stage
const (
	ClaimTypeAmbulatorio     = "AMBULATORIO"     // outpatient care
	ClaimTypeHospitalizacion = "HOSPITALIZACION" // inpatient care
	ClaimTypeEmergencia      = "EMERGENCIA"      // emergency care
	ClaimTypeMaternidad      = "MATERNIDAD"      // maternity
	ClaimTypeOdontologico    = "ODONTOLOGICO"    // dental
	ClaimTypeOftalmologico   = "OFTALMOLOGICO"   // ophthalmology
	ClaimTypeFarmacia        = "FARMACIA"        // pharmacy
	ClaimTypeLaboratorio     = "LABORATORIO"     // laboratory
	ClaimTypeImagenologia    = "IMAGENOLOGIA"    // imaging
	ClaimTypeFunerario       = "FUNERARIO"       // funeral benefit
	ClaimTypeVida            = "VIDA"            // life benefit
	ClaimTypeOtros           = "OTROS"           // other
)

var validClaimTypes = map[string]bool{
	ClaimTypeAmbulatorio:     true,
	ClaimTypeHospitalizacion: true,
	ClaimTypeEmergencia:      true,
	ClaimTypeMaternidad:      true,
	ClaimTypeOdontologico:    true,
	ClaimTypeOftalmologico:   true,
	ClaimTypeFarmacia:        true,
	ClaimTypeLaboratorio:     true,
	ClaimTypeImagenologia:    true,
	ClaimTypeFunerario:       true,
	ClaimTypeVida:            true,
	ClaimTypeOtros:           true,
}

// IsValidClaimType reports whether s is one of the known claim categories.
func IsValidClaimType(s string) bool {
	return validClaimTypes[s]
}
