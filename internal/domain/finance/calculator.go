// Package finance holds the pure monetary derivations of the bill workflow.
// Nothing here touches storage or holds state; every function is a plain
// computation over its inputs so the invariants stay independently testable.
package finance

import "math"

// LiquidationResult holds the derived fields of the Liquidation stage.
type LiquidationResult struct {
	AdministrativeAmount float64 `json:"administrative_amount"`
	Retention            float64 `json:"retention"`
	IndemnifiableAmount  float64 `json:"indemnifiable_amount"`
}

// ExchangeResult holds the linked monetary pair of the Payment Execution stage.
type ExchangeResult struct {
	AmountLocal   float64 `json:"amount_local"`
	AmountForeign float64 `json:"amount_foreign"`
}

// EditedField identifies which of the two linked payment amounts the user
// last edited. The calculator only ever recomputes the other one.
type EditedField string

const (
	EditedAmountLocal   EditedField = "amountLocal"
	EditedAmountForeign EditedField = "amountForeign"
)

// retentionRate is the fixed 5% withholding applied to the billed amount
// during Liquidation.
const retentionRate = 0.05

// ComputeLiquidation derives the administrative amount, retention and
// indemnifiable amount. Inputs are taken as-is; negative or missing values
// arrive as zero from the payload layer, so the function never fails.
func ComputeLiquidation(billedAmount, generalExpenses, medicalFees, clinicalServices float64) LiquidationResult {
	administrative := round2(generalExpenses + medicalFees + clinicalServices)
	retention := round2(billedAmount * retentionRate)
	indemnifiable := round2(math.Max(administrative-retention, 0))

	return LiquidationResult{
		AdministrativeAmount: administrative,
		Retention:            retention,
		IndemnifiableAmount:  indemnifiable,
	}
}

// ComputeExchange recomputes whichever of the two linked amounts was not
// last edited by the user. A zero exchange rate leaves both amounts
// untouched; dividing by it is never attempted.
func ComputeExchange(amountLocal, amountForeign, exchangeRate float64, lastEdited EditedField) ExchangeResult {
	if exchangeRate == 0 {
		return ExchangeResult{AmountLocal: amountLocal, AmountForeign: amountForeign}
	}

	switch lastEdited {
	case EditedAmountForeign:
		amountLocal = round2(amountForeign * exchangeRate)
	default:
		// amountLocal is authoritative unless foreign was explicitly edited
		amountForeign = round2(amountLocal / exchangeRate)
	}

	return ExchangeResult{AmountLocal: amountLocal, AmountForeign: amountForeign}
}

// round2 rounds to 2 decimal places, the precision every monetary field is
// persisted with.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
