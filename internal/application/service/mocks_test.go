package service

import (
	"context"
	"time"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

// Mock repositories
type mockBillRepo struct {
	createFunc                   func(ctx context.Context, bill *entity.Bill) error
	updateFunc                   func(ctx context.Context, bill *entity.Bill) error
	getByIDFunc                  func(ctx context.Context, id string) (*entity.Bill, error)
	findByClaimNumberFunc        func(ctx context.Context, claimNumber string) (*entity.Bill, error)
	findByInvoiceAndProviderFunc func(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error)
	listFunc                     func(ctx context.Context, limit, offset int) ([]*entity.Bill, error)

	created   []*entity.Bill
	updated   []*entity.Bill
	listeners []func(*entity.Bill)
}

func (m *mockBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, bill)
	}
	bill.ID = "B-1"
	bill.CreatedAt = time.Now()
	bill.UpdatedAt = bill.CreatedAt
	m.created = append(m.created, bill)
	return nil
}

func (m *mockBillRepo) Update(ctx context.Context, bill *entity.Bill) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, bill)
	}
	bill.UpdatedAt = time.Now()
	m.updated = append(m.updated, bill)
	return nil
}

func (m *mockBillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBillRepo) FindByClaimNumber(ctx context.Context, claimNumber string) (*entity.Bill, error) {
	if m.findByClaimNumberFunc != nil {
		return m.findByClaimNumberFunc(ctx, claimNumber)
	}
	return nil, nil
}

func (m *mockBillRepo) FindByInvoiceAndProvider(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error) {
	if m.findByInvoiceAndProviderFunc != nil {
		return m.findByInvoiceAndProviderFunc(ctx, invoiceNumber, providerID)
	}
	return nil, nil
}

func (m *mockBillRepo) List(ctx context.Context, limit, offset int) ([]*entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockBillRepo) Deactivate(ctx context.Context, id string) error {
	return nil
}

func (m *mockBillRepo) Subscribe(onChange func(*entity.Bill)) func() {
	m.listeners = append(m.listeners, onChange)
	return func() {}
}

func (m *mockBillRepo) publish(bill *entity.Bill) {
	for _, fn := range m.listeners {
		fn(bill)
	}
}

type mockProviderRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Provider, error)
}

func (m *mockProviderRepo) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Provider{ID: id, Name: "Clinica Central", Active: true}, nil
}

func (m *mockProviderRepo) List(ctx context.Context, limit, offset int) ([]*entity.Provider, error) {
	return nil, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
