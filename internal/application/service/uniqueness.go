package service

import (
	"context"
	"fmt"

	"github.com/jmarquez/insurance-billing/internal/application/port"
)

// UniquenessValidator checks the two identifier invariants of Reception:
// claim numbers are unique across active bills, and so is each
// (invoice number, provider) pair. Both checks exclude the bill currently
// being edited so resubmitting unchanged identifiers never self-conflicts.
type UniquenessValidator struct {
	bills port.BillRepository
}

// NewUniquenessValidator creates a new UniquenessValidator
func NewUniquenessValidator(bills port.BillRepository) *UniquenessValidator {
	return &UniquenessValidator{bills: bills}
}

// CheckClaimNumberUnique reports whether claimNumber is free to use for the
// bill identified by excludingBillID. A lookup failure is returned as an
// error, never as a false duplicate.
func (v *UniquenessValidator) CheckClaimNumberUnique(ctx context.Context, claimNumber, excludingBillID string) (bool, error) {
	existing, err := v.bills.FindByClaimNumber(ctx, claimNumber)
	if err != nil {
		return false, fmt.Errorf("lookup claim number: %w", err)
	}
	if existing == nil {
		return true, nil
	}
	return existing.ID == excludingBillID, nil
}

// CheckInvoiceUniqueForProvider reports whether the (invoiceNumber,
// providerID) pair is free to use for the bill identified by excludingBillID.
func (v *UniquenessValidator) CheckInvoiceUniqueForProvider(ctx context.Context, invoiceNumber, providerID, excludingBillID string) (bool, error) {
	existing, err := v.bills.FindByInvoiceAndProvider(ctx, invoiceNumber, providerID)
	if err != nil {
		return false, fmt.Errorf("lookup invoice for provider: %w", err)
	}
	if existing == nil {
		return true, nil
	}
	return existing.ID == excludingBillID, nil
}
