package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmarquez/insurance-billing/internal/application/port"
	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

// ProviderRepository implements port.ProviderRepository. Providers are
// reference data for the workflow; they are never written here.
type ProviderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *sql.DB, logger *zap.Logger) port.ProviderRepository {
	return &ProviderRepository{db: db, logger: logger}
}

// GetByID retrieves a provider by ID; returns (nil, nil) when absent
func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	query := `SELECT id, name, tax_id, active, created_at FROM providers WHERE id = ?`

	var provider entity.Provider
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&provider.ID, &provider.Name, &provider.TaxID, &provider.Active, &provider.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get provider", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

// List retrieves active providers ordered by name
func (r *ProviderRepository) List(ctx context.Context, limit, offset int) ([]*entity.Provider, error) {
	query := `SELECT id, name, tax_id, active, created_at FROM providers WHERE active = 1 ORDER BY name LIMIT ? OFFSET ?`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list providers", zap.Error(err))
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	var providers []*entity.Provider
	for rows.Next() {
		var provider entity.Provider
		if err := rows.Scan(&provider.ID, &provider.Name, &provider.TaxID, &provider.Active, &provider.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, &provider)
	}
	return providers, rows.Err()
}
