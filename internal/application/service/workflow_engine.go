package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jmarquez/insurance-billing/internal/application/port"
	"github.com/jmarquez/insurance-billing/internal/domain/entity"
	"github.com/jmarquez/insurance-billing/internal/domain/finance"
	"github.com/jmarquez/insurance-billing/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorkflowEngine is the single authority for advancing a bill through its
// lifecycle. It is also the contract any presentation layer programs
// against: load a record, submit a stage, query editability, and preview
// derived fields without persisting.
type WorkflowEngine interface {
	// LoadBill retrieves a bill for display, serving repeated reads from a
	// notification-invalidated cache
	LoadBill(ctx context.Context, id string) (*entity.Bill, error)

	// SubmitStage validates and persists one stage submission. An empty
	// billID is only legal for Reception, which creates the record.
	SubmitStage(ctx context.Context, role workflow.Role, billID string, payload StagePayload) (*entity.Bill, error)

	// CanEdit reports whether role may write the stage given the bill's
	// current status, so UIs can gate inputs without attempting a write
	CanEdit(role workflow.Role, stage workflow.Stage, billStatus string) bool

	// PreviewLiquidation computes the derived liquidation fields without
	// touching storage
	PreviewLiquidation(billedAmount, generalExpenses, medicalFees, clinicalServices float64) finance.LiquidationResult

	// PreviewExchange computes the linked payment amounts without touching
	// storage
	PreviewExchange(amountLocal, amountForeign, exchangeRate float64, lastEdited finance.EditedField) finance.ExchangeResult
}

type workflowEngineImpl struct {
	bills      port.BillRepository
	providers  port.ProviderRepository
	uniqueness *UniquenessValidator
	txManager  port.TransactionManager
	validate   *validator.Validate
	logger     Logger

	// read cache for LoadBill, invalidated by gateway change notifications.
	// Never consulted during SubmitStage validation.
	mu    sync.RWMutex
	cache map[string]*entity.Bill
}

// NewWorkflowEngine creates a new WorkflowEngine. It subscribes to the bill
// repository's change feed to keep its read cache honest; notifications are
// best effort and correctness never depends on them.
func NewWorkflowEngine(
	bills port.BillRepository,
	providers port.ProviderRepository,
	uniqueness *UniquenessValidator,
	txManager port.TransactionManager,
	logger Logger,
) WorkflowEngine {
	e := &workflowEngineImpl{
		bills:      bills,
		providers:  providers,
		uniqueness: uniqueness,
		txManager:  txManager,
		validate:   validator.New(),
		logger:     logger,
		cache:      make(map[string]*entity.Bill),
	}

	bills.Subscribe(func(changed *entity.Bill) {
		e.mu.Lock()
		delete(e.cache, changed.ID)
		e.mu.Unlock()
	})

	return e
}

// LoadBill retrieves a bill by ID. The cache keeps its own copy and callers
// get theirs, so nobody can mutate a record another caller is reading.
func (e *workflowEngineImpl) LoadBill(ctx context.Context, id string) (*entity.Bill, error) {
	e.mu.RLock()
	cached, ok := e.cache[id]
	e.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	bill, err := e.bills.GetByID(ctx, id)
	if err != nil {
		e.logger.Error("Failed to load bill", "bill_id", id, "error", err)
		return nil, workflow.NewInfrastructureError("load bill", err)
	}
	if bill == nil {
		return nil, workflow.ErrNotFound
	}

	e.mu.Lock()
	e.cache[id] = bill.Clone()
	e.mu.Unlock()

	return bill, nil
}

// SubmitStage validates and persists one stage submission
func (e *workflowEngineImpl) SubmitStage(ctx context.Context, role workflow.Role, billID string, payload StagePayload) (*entity.Bill, error) {
	stage := payload.Stage()

	// Resolve the current record snapshot. Every stage but Reception
	// requires the bill to exist already.
	var bill *entity.Bill
	if billID != "" {
		existing, err := e.bills.GetByID(ctx, billID)
		if err != nil {
			e.logger.Error("Failed to load bill for submission", "bill_id", billID, "error", err)
			return nil, workflow.NewInfrastructureError("load bill", err)
		}
		bill = existing
	}
	if bill == nil {
		if stage != workflow.StageReception {
			return nil, workflow.ErrPrerequisiteMissing
		}
		if billID != "" {
			return nil, workflow.ErrNotFound
		}
	}

	// Permission before payload: a forbidden actor learns nothing about
	// field-level problems.
	status := ""
	if bill != nil {
		status = bill.Status
	}
	if !e.CanEdit(role, stage, status) {
		e.logger.Info("Stage edit rejected", "role", role.String(), "stage", stage.String(), "bill_id", billID)
		return nil, workflow.ErrForbidden
	}

	if err := validatePayload(e.validate, payload); err != nil {
		return nil, err
	}

	creating := bill == nil
	if creating {
		bill = &entity.Bill{Active: true}
	}

	// The stage checks that touch storage and the single write run in one
	// transaction, so a concurrent submission cannot slip a duplicate in
	// between the uniqueness lookups and the insert.
	err := e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.applyStage(ctx, bill, payload); err != nil {
			return err
		}

		bill.StageSequence = stage.String()
		bill.Status = stage.OutcomeStatus(bill.AdministrativeDecision)

		// All validation and derivation succeeded; this is the only write.
		if creating {
			if err := e.bills.Create(ctx, bill); err != nil {
				e.logger.Error("Failed to create bill", "claim_number", bill.ClaimNumber, "error", err)
				return workflow.NewInfrastructureError("create bill", err)
			}
		} else {
			if err := e.bills.Update(ctx, bill); err != nil {
				e.logger.Error("Failed to update bill", "bill_id", bill.ID, "error", err)
				return workflow.NewInfrastructureError("update bill", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[bill.ID] = bill.Clone()
	e.mu.Unlock()

	e.logger.Info("Stage submitted",
		"bill_id", bill.ID,
		"stage", stage.String(),
		"status", bill.Status,
		"role", role.String())

	return bill, nil
}

// CanEdit reports whether role may write the stage on a bill in billStatus
func (e *workflowEngineImpl) CanEdit(role workflow.Role, stage workflow.Stage, billStatus string) bool {
	return workflow.CanEditBill(role, stage, billStatus)
}

// PreviewLiquidation computes liquidation derivations without persisting
func (e *workflowEngineImpl) PreviewLiquidation(billedAmount, generalExpenses, medicalFees, clinicalServices float64) finance.LiquidationResult {
	return finance.ComputeLiquidation(billedAmount, generalExpenses, medicalFees, clinicalServices)
}

// PreviewExchange computes the linked payment amounts without persisting
func (e *workflowEngineImpl) PreviewExchange(amountLocal, amountForeign, exchangeRate float64, lastEdited finance.EditedField) finance.ExchangeResult {
	return finance.ComputeExchange(amountLocal, amountForeign, exchangeRate, lastEdited)
}

// applyStage copies a validated payload onto the bill, running the
// stage-specific checks that need I/O: provider existence and identifier
// uniqueness for Reception, derived-field computation for Liquidation and
// Payment Execution. Uniqueness must pass before any write is issued.
func (e *workflowEngineImpl) applyStage(ctx context.Context, bill *entity.Bill, payload StagePayload) error {
	switch p := payload.(type) {
	case ReceptionPayload:
		return e.applyReception(ctx, bill, p)

	case LiquidationPayload:
		result := finance.ComputeLiquidation(p.BilledAmount, p.GeneralExpenses, p.MedicalFees, p.ClinicalServices)
		bill.LiquidationDate = p.LiquidationDate
		bill.ClaimType = p.ClaimType
		bill.BilledAmount = p.BilledAmount
		bill.GeneralExpenses = p.GeneralExpenses
		bill.MedicalFees = p.MedicalFees
		bill.ClinicalServices = p.ClinicalServices
		bill.AdministrativeAmount = result.AdministrativeAmount
		bill.Retention = result.Retention
		bill.IndemnifiableAmount = result.IndemnifiableAmount
		bill.BatchTag = p.BatchTag
		bill.LiquidatingAnalystID = p.LiquidatingAnalystID

	case AuditPayload:
		bill.AuditDate = p.AuditDate
		bill.AuditorID = p.AuditorID

	case SchedulingPayload:
		bill.ScheduledDate = p.ScheduledDate
		bill.AdministrativeDecision = p.AdministrativeDecision
		bill.SchedulingAnalystID = p.SchedulingAnalystID

	case PaymentPayload:
		result := finance.ComputeExchange(p.AmountLocal, p.AmountForeign, p.ExchangeRate, p.LastEdited)
		bill.PaymentDate = p.PaymentDate
		bill.AmountLocal = result.AmountLocal
		bill.AmountForeign = result.AmountForeign
		bill.ExchangeRate = p.ExchangeRate
		bill.BankReference = p.BankReference
		bill.CompanyVarianceAmount = p.CompanyVarianceAmount
		bill.ProviderVarianceAmount = p.ProviderVarianceAmount
		bill.PayingAnalystID = p.PayingAnalystID

	case SettlementPayload:
		bill.SettlementDate = p.SettlementDate
		bill.SettlingAnalystID = p.SettlingAnalystID

	default:
		return workflow.NewValidationError("payload", "unknown stage payload")
	}

	return nil
}

func (e *workflowEngineImpl) applyReception(ctx context.Context, bill *entity.Bill, p ReceptionPayload) error {
	provider, err := e.providers.GetByID(ctx, p.ProviderID)
	if err != nil {
		e.logger.Error("Failed to look up provider", "provider_id", p.ProviderID, "error", err)
		return workflow.NewInfrastructureError("lookup provider", err)
	}
	if provider == nil || !provider.Active {
		return workflow.NewValidationError("ProviderID", "unknown or inactive provider")
	}

	unique, err := e.uniqueness.CheckClaimNumberUnique(ctx, p.ClaimNumber, bill.ID)
	if err != nil {
		return workflow.NewInfrastructureError("claim number uniqueness check", err)
	}
	if !unique {
		return workflow.ErrDuplicateClaimNumber
	}

	unique, err = e.uniqueness.CheckInvoiceUniqueForProvider(ctx, p.InvoiceNumber, p.ProviderID, bill.ID)
	if err != nil {
		return workflow.NewInfrastructureError("invoice uniqueness check", err)
	}
	if !unique {
		return workflow.ErrDuplicateInvoiceForProvider
	}

	bill.ArrivalDate = p.ArrivalDate
	bill.ProviderID = p.ProviderID
	bill.ClaimNumber = p.ClaimNumber
	bill.BillingType = p.BillingType
	bill.InvoiceNumber = p.InvoiceNumber
	bill.ControlNumber = p.ControlNumber
	bill.Currency = p.Currency
	bill.TotalBilled = p.TotalBilled
	bill.ReceivingAnalystID = p.ReceivingAnalystID

	return nil
}
