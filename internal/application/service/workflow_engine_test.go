package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
	"github.com/jmarquez/insurance-billing/internal/domain/finance"
	"github.com/jmarquez/insurance-billing/internal/domain/workflow"
)

func newTestEngine(bills *mockBillRepo, providers *mockProviderRepo) WorkflowEngine {
	if providers == nil {
		providers = &mockProviderRepo{}
	}
	return NewWorkflowEngine(bills, providers, NewUniquenessValidator(bills), &mockTxManager{}, &mockLogger{})
}

func validReception() ReceptionPayload {
	return ReceptionPayload{
		ProviderID:         "P1",
		ClaimNumber:        "C-001",
		BillingType:        entity.BillingTypeInvoice,
		InvoiceNumber:      "F-100",
		Currency:           entity.CurrencyLocal,
		TotalBilled:        1500.00,
		ReceivingAnalystID: "U1",
	}
}

func TestSubmitStage_ReceptionCreatesBill(t *testing.T) {
	bills := &mockBillRepo{}
	engine := newTestEngine(bills, nil)

	bill, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", validReception())

	require.NoError(t, err)
	require.Len(t, bills.created, 1)
	assert.Equal(t, entity.StatusReceived, bill.Status)
	assert.Equal(t, "reception", bill.StageSequence)
	assert.Equal(t, 1500.00, bill.TotalBilled)
	assert.True(t, bill.Active)
}

func TestSubmitStage_DuplicateClaimNumberIssuesNoWrite(t *testing.T) {
	bills := &mockBillRepo{
		findByClaimNumberFunc: func(ctx context.Context, claimNumber string) (*entity.Bill, error) {
			return &entity.Bill{ID: "B-other", ClaimNumber: claimNumber}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	_, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", validReception())

	assert.ErrorIs(t, err, workflow.ErrDuplicateClaimNumber)
	assert.Empty(t, bills.created)
	assert.Empty(t, bills.updated)
}

func TestSubmitStage_DuplicateInvoiceForProvider(t *testing.T) {
	bills := &mockBillRepo{
		findByInvoiceAndProviderFunc: func(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error) {
			return &entity.Bill{ID: "B-other"}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	_, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", validReception())

	assert.ErrorIs(t, err, workflow.ErrDuplicateInvoiceForProvider)
	assert.Empty(t, bills.created)
}

func TestSubmitStage_SelfExclusionOnResubmit(t *testing.T) {
	existing := &entity.Bill{
		ID:          "B-1",
		Active:      true,
		ClaimNumber: "C-001",
		Status:      entity.StatusReceived,
	}
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return existing, nil
		},
		findByClaimNumberFunc: func(ctx context.Context, claimNumber string) (*entity.Bill, error) {
			return existing, nil
		},
		findByInvoiceAndProviderFunc: func(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error) {
			return existing, nil
		},
	}
	engine := newTestEngine(bills, nil)

	bill, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "B-1", validReception())

	require.NoError(t, err)
	require.Len(t, bills.updated, 1)
	assert.Equal(t, "B-1", bill.ID)
}

func TestSubmitStage_ForbiddenRole(t *testing.T) {
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Status: entity.StatusReceived}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	payload := LiquidationPayload{
		ClaimType:            entity.ClaimTypeAmbulatorio,
		BilledAmount:         1500,
		BatchTag:             "LOTE-1",
		LiquidatingAnalystID: "U2",
	}

	for _, role := range []workflow.Role{workflow.RoleAudit, workflow.RoleReception, workflow.RolePayments} {
		_, err := engine.SubmitStage(context.Background(), role, "B-1", payload)
		assert.ErrorIs(t, err, workflow.ErrForbidden, "role %s", role)
	}
	assert.Empty(t, bills.updated)
}

func TestSubmitStage_PrerequisiteMissing(t *testing.T) {
	engine := newTestEngine(&mockBillRepo{}, nil)

	payload := LiquidationPayload{
		ClaimType:            entity.ClaimTypeAmbulatorio,
		BilledAmount:         1500,
		BatchTag:             "LOTE-1",
		LiquidatingAnalystID: "U2",
	}

	_, err := engine.SubmitStage(context.Background(), workflow.RoleLiquidation, "", payload)
	assert.ErrorIs(t, err, workflow.ErrPrerequisiteMissing)
}

func TestSubmitStage_ReceptionWithStaleIDNotFound(t *testing.T) {
	engine := newTestEngine(&mockBillRepo{}, nil)

	_, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "B-gone", validReception())
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestSubmitStage_ValidationFailed(t *testing.T) {
	engine := newTestEngine(&mockBillRepo{}, nil)

	payload := validReception()
	payload.TotalBilled = 0

	_, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", payload)

	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "TotalBilled", verr.Field)
}

func TestSubmitStage_LiquidationDerivesAmounts(t *testing.T) {
	bills := &mockBillRepo{}
	engine := newTestEngine(bills, nil)

	created, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", validReception())
	require.NoError(t, err)

	bills.getByIDFunc = func(ctx context.Context, id string) (*entity.Bill, error) {
		return created, nil
	}

	bill, err := engine.SubmitStage(context.Background(), workflow.RoleLiquidation, created.ID, LiquidationPayload{
		ClaimType:            entity.ClaimTypeAmbulatorio,
		BilledAmount:         1500,
		GeneralExpenses:      100,
		MedicalFees:          50,
		ClinicalServices:     25,
		BatchTag:             "LOTE-1",
		LiquidatingAnalystID: "U2",
	})

	require.NoError(t, err)
	assert.Equal(t, 175.00, bill.AdministrativeAmount)
	assert.Equal(t, 75.00, bill.Retention)
	assert.Equal(t, 100.00, bill.IndemnifiableAmount)
	assert.Equal(t, entity.StatusPending, bill.Status)
	assert.Equal(t, "liquidation", bill.StageSequence)
}

func TestSubmitStage_UnknownClaimType(t *testing.T) {
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Status: entity.StatusReceived}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	_, err := engine.SubmitStage(context.Background(), workflow.RoleLiquidation, "B-1", LiquidationPayload{
		ClaimType:            "PODOLOGIA",
		BilledAmount:         100,
		BatchTag:             "LOTE-1",
		LiquidatingAnalystID: "U2",
	})

	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ClaimType", verr.Field)
}

func TestSubmitStage_PaymentDerivesLinkedAmount(t *testing.T) {
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Status: entity.StatusScheduled}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	bill, err := engine.SubmitStage(context.Background(), workflow.RolePayments, "B-1", PaymentPayload{
		AmountLocal:     3650,
		ExchangeRate:    36.5,
		LastEdited:      finance.EditedAmountLocal,
		BankReference:   "TRX-9",
		PayingAnalystID: "U5",
	})

	require.NoError(t, err)
	assert.Equal(t, 3650.00, bill.AmountLocal)
	assert.Equal(t, 100.00, bill.AmountForeign)
	assert.Equal(t, entity.StatusPaid, bill.Status)
}

func TestSubmitStage_ReturnedBillLockout(t *testing.T) {
	returned := &entity.Bill{ID: "B-1", Status: entity.StatusReturned}
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return returned, nil
		},
	}
	engine := newTestEngine(bills, nil)

	// The owning role cannot touch its own stage while the bill is RETURNED
	_, err := engine.SubmitStage(context.Background(), workflow.RoleScheduling, "B-1", SchedulingPayload{
		AdministrativeDecision: entity.DecisionScheduled,
		SchedulingAnalystID:    "U4",
	})
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	// An admin reopens by resubmitting Scheduling with decision SCHEDULED
	bill, err := engine.SubmitStage(context.Background(), workflow.RoleAdmin, "B-1", SchedulingPayload{
		AdministrativeDecision: entity.DecisionScheduled,
		SchedulingAnalystID:    "U4",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusScheduled, bill.Status)
}

func TestSubmitStage_SchedulingReturnedDecision(t *testing.T) {
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Status: entity.StatusPending}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	bill, err := engine.SubmitStage(context.Background(), workflow.RoleScheduling, "B-1", SchedulingPayload{
		AdministrativeDecision: entity.DecisionReturned,
		SchedulingAnalystID:    "U4",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusReturned, bill.Status)
}

func TestSubmitStage_SettlementMapsToPaid(t *testing.T) {
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			return &entity.Bill{ID: id, Status: entity.StatusPaid}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	bill, err := engine.SubmitStage(context.Background(), workflow.RoleSettlement, "B-1", SettlementPayload{
		SettlingAnalystID: "U6",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, bill.Status)
	assert.Equal(t, "settlement", bill.StageSequence)
}

func TestSubmitStage_UniquenessLookupFailure(t *testing.T) {
	bills := &mockBillRepo{
		findByClaimNumberFunc: func(ctx context.Context, claimNumber string) (*entity.Bill, error) {
			return nil, errors.New("connection reset")
		},
	}
	engine := newTestEngine(bills, nil)

	_, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", validReception())

	var infraErr *workflow.InfrastructureError
	require.ErrorAs(t, err, &infraErr)
	assert.Empty(t, bills.created)
}

func TestSubmitStage_UnknownProvider(t *testing.T) {
	providers := &mockProviderRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Provider, error) {
			return nil, nil
		},
	}
	engine := newTestEngine(&mockBillRepo{}, providers)

	_, err := engine.SubmitStage(context.Background(), workflow.RoleReception, "", validReception())

	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ProviderID", verr.Field)
}

func TestLoadBill_NotFound(t *testing.T) {
	engine := newTestEngine(&mockBillRepo{}, nil)

	_, err := engine.LoadBill(context.Background(), "B-missing")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestLoadBill_CacheInvalidatedByNotification(t *testing.T) {
	calls := 0
	stored := &entity.Bill{ID: "B-1", Status: entity.StatusReceived}
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			calls++
			return stored, nil
		},
	}
	engine := newTestEngine(bills, nil)

	_, err := engine.LoadBill(context.Background(), "B-1")
	require.NoError(t, err)
	_, err = engine.LoadBill(context.Background(), "B-1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read should hit the cache")

	bills.publish(stored)

	_, err = engine.LoadBill(context.Background(), "B-1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "notification should invalidate the cache")
}

func TestLoadBill_CallerMutationDoesNotReachCache(t *testing.T) {
	calls := 0
	bills := &mockBillRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Bill, error) {
			calls++
			return &entity.Bill{ID: "B-1", Status: entity.StatusReceived, ClaimNumber: "C-001"}, nil
		},
	}
	engine := newTestEngine(bills, nil)

	first, err := engine.LoadBill(context.Background(), "B-1")
	require.NoError(t, err)

	first.Status = entity.StatusPaid
	first.ClaimNumber = "C-MANGLED"

	second, err := engine.LoadBill(context.Background(), "B-1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read should still hit the cache")
	assert.Equal(t, entity.StatusReceived, second.Status)
	assert.Equal(t, "C-001", second.ClaimNumber)
}

func TestCanEdit_DelegatesToPolicy(t *testing.T) {
	engine := newTestEngine(&mockBillRepo{}, nil)

	assert.True(t, engine.CanEdit(workflow.RoleLiquidation, workflow.StageLiquidation, entity.StatusReceived))
	assert.False(t, engine.CanEdit(workflow.RoleLiquidation, workflow.StageAudit, entity.StatusReceived))
	assert.False(t, engine.CanEdit(workflow.RoleLiquidation, workflow.StageLiquidation, entity.StatusReturned))
	assert.True(t, engine.CanEdit(workflow.RoleAdmin, workflow.StageLiquidation, entity.StatusReturned))
}

func TestPreviews_DoNotPersist(t *testing.T) {
	bills := &mockBillRepo{}
	engine := newTestEngine(bills, nil)

	liq := engine.PreviewLiquidation(1500, 100, 50, 25)
	assert.Equal(t, 175.00, liq.AdministrativeAmount)
	assert.Equal(t, 75.00, liq.Retention)
	assert.Equal(t, 100.00, liq.IndemnifiableAmount)

	ex := engine.PreviewExchange(3650, 0, 36.5, finance.EditedAmountLocal)
	assert.Equal(t, 100.00, ex.AmountForeign)

	assert.Empty(t, bills.created)
	assert.Empty(t, bills.updated)
}
