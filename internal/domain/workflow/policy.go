package workflow

import "github.com/jmarquez/insurance-billing/internal/domain/entity"

// stageRoles assigns to each stage the single non-admin role allowed to
// write it. Everyone else is read-only for that stage.
var stageRoles = map[Stage][]Role{
	StageReception:        {RoleReception},
	StageLiquidation:      {RoleLiquidation},
	StageAudit:            {RoleAudit},
	StageScheduling:       {RoleScheduling},
	StagePaymentExecution: {RolePayments},
	StageSettlement:       {RoleSettlement},
}

// CanEdit reports whether role may write the given stage. Admin bypasses
// every stage restriction.
func CanEdit(role Role, stage Stage) bool {
	if role == RoleAdmin {
		return true
	}
	for _, r := range stageRoles[stage] {
		if r == role {
			return true
		}
	}
	return false
}

// CanEditBill extends CanEdit with the record's status: a RETURNED bill is
// locked for every non-admin role until an admin reopens it by resubmitting
// Scheduling with a SCHEDULED decision.
func CanEditBill(role Role, stage Stage, billStatus string) bool {
	if billStatus == entity.StatusReturned && role != RoleAdmin {
		return false
	}
	return CanEdit(role, stage)
}
