package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmarquez/insurance-billing/internal/application/port"
	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

// BillRepository implements port.BillRepository over sqlite. It doubles as
// the change-notification source: every persisted create or update is pushed
// to subscribers after the write commits.
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(*entity.Bill)
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) port.BillRepository {
	return &BillRepository{
		db:          db,
		logger:      logger,
		subscribers: make(map[int]func(*entity.Bill)),
	}
}

const billColumns = `
	id, active, created_at, updated_at,
	arrival_date, provider_id, claim_number, billing_type, invoice_number,
	control_number, currency, total_billed, receiving_analyst_id,
	liquidation_date, claim_type, billed_amount, administrative_amount,
	general_expenses, medical_fees, clinical_services, retention,
	indemnifiable_amount, batch_tag, liquidating_analyst_id,
	audit_date, auditor_id,
	scheduled_date, administrative_decision, scheduling_analyst_id,
	payment_date, amount_local, exchange_rate, amount_foreign, bank_reference,
	company_variance_amount, provider_variance_amount, paying_analyst_id,
	settlement_date, settling_analyst_id,
	status, stage_sequence`

// Create persists a new bill, assigning its ID and timestamps
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	now := time.Now().UTC()
	bill.ID = uuid.NewString()
	bill.CreatedAt = now
	bill.UpdatedAt = now

	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES (?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?,
			?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?,
			?, ?,
			?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, billArgs(bill)...)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("claim_number", bill.ClaimNumber), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}

	r.notify(bill)
	return nil
}

// Update persists the bill's fields under its existing ID
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	bill.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE bills SET
			active = ?, updated_at = ?,
			arrival_date = ?, provider_id = ?, claim_number = ?, billing_type = ?,
			invoice_number = ?, control_number = ?, currency = ?, total_billed = ?,
			receiving_analyst_id = ?,
			liquidation_date = ?, claim_type = ?, billed_amount = ?,
			administrative_amount = ?, general_expenses = ?, medical_fees = ?,
			clinical_services = ?, retention = ?, indemnifiable_amount = ?,
			batch_tag = ?, liquidating_analyst_id = ?,
			audit_date = ?, auditor_id = ?,
			scheduled_date = ?, administrative_decision = ?, scheduling_analyst_id = ?,
			payment_date = ?, amount_local = ?, exchange_rate = ?, amount_foreign = ?,
			bank_reference = ?, company_variance_amount = ?, provider_variance_amount = ?,
			paying_analyst_id = ?,
			settlement_date = ?, settling_analyst_id = ?,
			status = ?, stage_sequence = ?
		WHERE id = ?
	`

	args := []interface{}{
		bill.Active, bill.UpdatedAt,
		nullTime(bill.ArrivalDate), bill.ProviderID, bill.ClaimNumber, bill.BillingType,
		bill.InvoiceNumber, bill.ControlNumber, bill.Currency, bill.TotalBilled,
		bill.ReceivingAnalystID,
		nullTime(bill.LiquidationDate), bill.ClaimType, bill.BilledAmount,
		bill.AdministrativeAmount, bill.GeneralExpenses, bill.MedicalFees,
		bill.ClinicalServices, bill.Retention, bill.IndemnifiableAmount,
		bill.BatchTag, bill.LiquidatingAnalystID,
		nullTime(bill.AuditDate), bill.AuditorID,
		nullTime(bill.ScheduledDate), bill.AdministrativeDecision, bill.SchedulingAnalystID,
		nullTime(bill.PaymentDate), bill.AmountLocal, bill.ExchangeRate, bill.AmountForeign,
		bill.BankReference, bill.CompanyVarianceAmount, bill.ProviderVarianceAmount,
		bill.PayingAnalystID,
		nullTime(bill.SettlementDate), bill.SettlingAnalystID,
		bill.Status, bill.StageSequence,
		bill.ID,
	}

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %s does not exist", bill.ID)
	}

	r.notify(bill)
	return nil
}

// GetByID retrieves a bill by ID; returns (nil, nil) when absent
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`
	return r.queryOne(ctx, query, id)
}

// FindByClaimNumber retrieves the active bill carrying the claim number
func (r *BillRepository) FindByClaimNumber(ctx context.Context, claimNumber string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE claim_number = ? AND active = 1 LIMIT 1`
	return r.queryOne(ctx, query, claimNumber)
}

// FindByInvoiceAndProvider retrieves the active bill carrying the
// (invoice number, provider) pair
func (r *BillRepository) FindByInvoiceAndProvider(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE invoice_number = ? AND provider_id = ? AND active = 1 LIMIT 1`
	return r.queryOne(ctx, query, invoiceNumber, providerID)
}

// List retrieves active bills ordered by creation time, newest first
func (r *BillRepository) List(ctx context.Context, limit, offset int) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE active = 1 ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*entity.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// Deactivate soft-deletes a bill
func (r *BillRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE bills SET active = 0, updated_at = ? WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to deactivate bill", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate bill: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %s does not exist", id)
	}

	// Notification is best effort; a failed re-read never fails the delete
	bill, err := r.GetByID(ctx, id)
	if err != nil {
		r.logger.Debug("Skipping deactivate notification", zap.String("id", id), zap.Error(err))
		return nil
	}
	if bill != nil {
		r.notify(bill)
	}
	return nil
}

// Subscribe registers a best-effort change listener
func (r *BillRepository) Subscribe(onChange func(*entity.Bill)) func() {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = onChange

	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subscribers, id)
	}
}

func (r *BillRepository) notify(bill *entity.Bill) {
	r.subMu.Lock()
	listeners := make([]func(*entity.Bill), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		listeners = append(listeners, fn)
	}
	r.subMu.Unlock()

	for _, fn := range listeners {
		fn(bill)
	}
}

func (r *BillRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*entity.Bill, error) {
	bill, err := scanBill(getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to query bill", zap.Error(err))
		return nil, fmt.Errorf("failed to query bill: %w", err)
	}
	return bill, nil
}

// billArgs returns the insert arguments in billColumns order
func billArgs(bill *entity.Bill) []interface{} {
	return []interface{}{
		bill.ID, bill.Active, bill.CreatedAt, bill.UpdatedAt,
		nullTime(bill.ArrivalDate), bill.ProviderID, bill.ClaimNumber, bill.BillingType,
		bill.InvoiceNumber, bill.ControlNumber, bill.Currency, bill.TotalBilled,
		bill.ReceivingAnalystID,
		nullTime(bill.LiquidationDate), bill.ClaimType, bill.BilledAmount,
		bill.AdministrativeAmount, bill.GeneralExpenses, bill.MedicalFees,
		bill.ClinicalServices, bill.Retention, bill.IndemnifiableAmount,
		bill.BatchTag, bill.LiquidatingAnalystID,
		nullTime(bill.AuditDate), bill.AuditorID,
		nullTime(bill.ScheduledDate), bill.AdministrativeDecision, bill.SchedulingAnalystID,
		nullTime(bill.PaymentDate), bill.AmountLocal, bill.ExchangeRate, bill.AmountForeign,
		bill.BankReference, bill.CompanyVarianceAmount, bill.ProviderVarianceAmount,
		bill.PayingAnalystID,
		nullTime(bill.SettlementDate), bill.SettlingAnalystID,
		bill.Status, bill.StageSequence,
	}
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*entity.Bill, error) {
	var bill entity.Bill
	var arrival, liquidation, audit, scheduled, payment, settlement sql.NullTime

	err := row.Scan(
		&bill.ID, &bill.Active, &bill.CreatedAt, &bill.UpdatedAt,
		&arrival, &bill.ProviderID, &bill.ClaimNumber, &bill.BillingType,
		&bill.InvoiceNumber, &bill.ControlNumber, &bill.Currency, &bill.TotalBilled,
		&bill.ReceivingAnalystID,
		&liquidation, &bill.ClaimType, &bill.BilledAmount,
		&bill.AdministrativeAmount, &bill.GeneralExpenses, &bill.MedicalFees,
		&bill.ClinicalServices, &bill.Retention, &bill.IndemnifiableAmount,
		&bill.BatchTag, &bill.LiquidatingAnalystID,
		&audit, &bill.AuditorID,
		&scheduled, &bill.AdministrativeDecision, &bill.SchedulingAnalystID,
		&payment, &bill.AmountLocal, &bill.ExchangeRate, &bill.AmountForeign,
		&bill.BankReference, &bill.CompanyVarianceAmount, &bill.ProviderVarianceAmount,
		&bill.PayingAnalystID,
		&settlement, &bill.SettlingAnalystID,
		&bill.Status, &bill.StageSequence,
	)
	if err != nil {
		return nil, err
	}

	bill.ArrivalDate = timePtr(arrival)
	bill.LiquidationDate = timePtr(liquidation)
	bill.AuditDate = timePtr(audit)
	bill.ScheduledDate = timePtr(scheduled)
	bill.PaymentDate = timePtr(payment)
	bill.SettlementDate = timePtr(settlement)

	return &bill, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
