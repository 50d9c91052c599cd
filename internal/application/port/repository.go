package port

import (
	"context"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

// BillRepository defines persistence operations for Bill. It is the only
// gateway the workflow engine writes through.
type BillRepository interface {
	// Create persists a new bill, assigning its ID and timestamps
	Create(ctx context.Context, bill *entity.Bill) error

	// Update persists the given bill's fields under its existing ID
	Update(ctx context.Context, bill *entity.Bill) error

	// GetByID retrieves a bill by ID; returns (nil, nil) when absent
	GetByID(ctx context.Context, id string) (*entity.Bill, error)

	// FindByClaimNumber retrieves the active bill carrying the claim number,
	// or (nil, nil) when none does
	FindByClaimNumber(ctx context.Context, claimNumber string) (*entity.Bill, error)

	// FindByInvoiceAndProvider retrieves the active bill carrying the
	// (invoice number, provider) pair, or (nil, nil) when none does
	FindByInvoiceAndProvider(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error)

	// List retrieves active bills ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*entity.Bill, error)

	// Deactivate soft-deletes a bill. Administrative side-channel only;
	// the workflow never hard-deletes.
	Deactivate(ctx context.Context, id string) error

	// Subscribe registers a best-effort change listener invoked after each
	// persisted create or update. Callers must treat notifications purely as
	// cache-invalidation signals. The returned function cancels the
	// subscription.
	Subscribe(onChange func(*entity.Bill)) (unsubscribe func())
}

// ProviderRepository defines read-only lookups for Provider reference data
type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Provider, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Provider, error)
}

// AnalystRepository defines read-only lookups for Analyst reference data
type AnalystRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Analyst, error)
}

// TransactionManager executes a function within a storage transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
