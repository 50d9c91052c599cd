package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmarquez/insurance-billing/internal/application/port"
	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

// AnalystRepository implements port.AnalystRepository
type AnalystRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAnalystRepository creates a new analyst repository
func NewAnalystRepository(db *sql.DB, logger *zap.Logger) port.AnalystRepository {
	return &AnalystRepository{db: db, logger: logger}
}

// GetByID retrieves an analyst by ID; returns (nil, nil) when absent
func (r *AnalystRepository) GetByID(ctx context.Context, id string) (*entity.Analyst, error) {
	query := `SELECT id, full_name, email, role, active, created_at FROM analysts WHERE id = ?`

	var analyst entity.Analyst
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&analyst.ID, &analyst.FullName, &analyst.Email, &analyst.Role, &analyst.Active, &analyst.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get analyst", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get analyst: %w", err)
	}
	return &analyst, nil
}
