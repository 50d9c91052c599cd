package workflow

import (
	"testing"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

func TestCanEdit(t *testing.T) {
	tests := []struct {
		role     Role
		stage    Stage
		expected bool
	}{
		{RoleReception, StageReception, true},
		{RoleLiquidation, StageLiquidation, true},
		{RoleAudit, StageAudit, true},
		{RoleScheduling, StageScheduling, true},
		{RolePayments, StagePaymentExecution, true},
		{RoleSettlement, StageSettlement, true},

		{RoleReception, StageLiquidation, false},
		{RoleLiquidation, StageReception, false},
		{RoleAudit, StageLiquidation, false},
		{RolePayments, StageSettlement, false},
		{RoleSettlement, StagePaymentExecution, false},
		{Role("contabilidad"), StageReception, false},

		{RoleAdmin, StageReception, true},
		{RoleAdmin, StageLiquidation, true},
		{RoleAdmin, StageAudit, true},
		{RoleAdmin, StageScheduling, true},
		{RoleAdmin, StagePaymentExecution, true},
		{RoleAdmin, StageSettlement, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.stage), func(t *testing.T) {
			if got := CanEdit(tt.role, tt.stage); got != tt.expected {
				t.Errorf("CanEdit(%s, %s) = %v, want %v", tt.role, tt.stage, got, tt.expected)
			}
		})
	}
}

func TestCanEditBill_ReturnedLockout(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		stage    Stage
		status   string
		expected bool
	}{
		{"owning role on returned bill", RoleScheduling, StageScheduling, entity.StatusReturned, false},
		{"other role on returned bill", RoleLiquidation, StageLiquidation, entity.StatusReturned, false},
		{"admin on returned bill", RoleAdmin, StageScheduling, entity.StatusReturned, true},
		{"owning role on pending bill", RoleScheduling, StageScheduling, entity.StatusPending, true},
		{"owning role on new bill", RoleReception, StageReception, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEditBill(tt.role, tt.stage, tt.status); got != tt.expected {
				t.Errorf("CanEditBill(%s, %s, %s) = %v, want %v", tt.role, tt.stage, tt.status, got, tt.expected)
			}
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleReception, RoleLiquidation, RoleAudit, RoleScheduling, RolePayments, RoleSettlement} {
		if !role.IsValid() {
			t.Errorf("Role(%s).IsValid() = false, want true", role)
		}
	}
	if Role("gerencia").IsValid() {
		t.Error("unknown role must not be valid")
	}
	if Role("").IsValid() {
		t.Error("empty role must not be valid")
	}
}
