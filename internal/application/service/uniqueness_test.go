package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

func TestCheckClaimNumberUnique(t *testing.T) {
	tests := []struct {
		name      string
		existing  *entity.Bill
		excluding string
		expectOK  bool
	}{
		{"no existing bill", nil, "", true},
		{"held by another bill", &entity.Bill{ID: "B-other"}, "B-1", false},
		{"held by the bill being edited", &entity.Bill{ID: "B-1"}, "B-1", true},
		{"held by another bill while creating", &entity.Bill{ID: "B-other"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBillRepo{
				findByClaimNumberFunc: func(ctx context.Context, claimNumber string) (*entity.Bill, error) {
					return tt.existing, nil
				},
			}
			v := NewUniquenessValidator(repo)

			ok, err := v.CheckClaimNumberUnique(context.Background(), "C-001", tt.excluding)
			require.NoError(t, err)
			assert.Equal(t, tt.expectOK, ok)
		})
	}
}

func TestCheckInvoiceUniqueForProvider(t *testing.T) {
	repo := &mockBillRepo{
		findByInvoiceAndProviderFunc: func(ctx context.Context, invoiceNumber, providerID string) (*entity.Bill, error) {
			if invoiceNumber == "F-100" && providerID == "P1" {
				return &entity.Bill{ID: "B-held"}, nil
			}
			return nil, nil
		},
	}
	v := NewUniquenessValidator(repo)

	ok, err := v.CheckInvoiceUniqueForProvider(context.Background(), "F-100", "P1", "")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same invoice number is fine for a different provider
	ok, err = v.CheckInvoiceUniqueForProvider(context.Background(), "F-100", "P2", "")
	require.NoError(t, err)
	assert.True(t, ok)

	// Self-exclusion
	ok, err = v.CheckInvoiceUniqueForProvider(context.Background(), "F-100", "P1", "B-held")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUniqueness_LookupFailureIsNotADuplicate(t *testing.T) {
	repo := &mockBillRepo{
		findByClaimNumberFunc: func(ctx context.Context, claimNumber string) (*entity.Bill, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	v := NewUniquenessValidator(repo)

	_, err := v.CheckClaimNumberUnique(context.Background(), "C-001", "")
	assert.Error(t, err)
}
