package workflow

import "github.com/jmarquez/insurance-billing/internal/domain/entity"

// Stage represents one of the six ordered sections of the bill lifecycle
type Stage string

const (
	StageReception        Stage = "reception"
	StageLiquidation      Stage = "liquidation"
	StageAudit            Stage = "audit"
	StageScheduling       Stage = "scheduling"
	StagePaymentExecution Stage = "paymentExecution"
	StageSettlement       Stage = "settlement"
)

// Stages lists the stages in their official order. The engine does not
// enforce forward-only progression; the order matters for presentation and
// for deciding which stage was last written.
var Stages = []Stage{
	StageReception,
	StageLiquidation,
	StageAudit,
	StageScheduling,
	StagePaymentExecution,
	StageSettlement,
}

var validStages = map[Stage]bool{
	StageReception:        true,
	StageLiquidation:      true,
	StageAudit:            true,
	StageScheduling:       true,
	StagePaymentExecution: true,
	StageSettlement:       true,
}

// stageStatus maps each stage to the coarse status its submission produces.
// Scheduling is absent: its outcome depends on the administrative decision.
// Settlement maps to PAID, same as payment execution; the source system never
// distinguished a settled bill from a paid one and downstream reporting
// depends on that.
var stageStatus = map[Stage]string{
	StageReception:        entity.StatusReceived,
	StageLiquidation:      entity.StatusPending,
	StageAudit:            entity.StatusPending,
	StagePaymentExecution: entity.StatusPaid,
	StageSettlement:       entity.StatusPaid,
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if the stage is one of the six lifecycle stages
func (s Stage) IsValid() bool {
	return validStages[s]
}

// OutcomeStatus returns the coarse status a submission of this stage yields.
// For Scheduling the outcome follows the administrative decision; for every
// other stage it comes from the fixed stage→status table.
func (s Stage) OutcomeStatus(decision string) string {
	if s == StageScheduling {
		if decision == entity.DecisionReturned {
			return entity.StatusReturned
		}
		return entity.StatusScheduled
	}
	return stageStatus[s]
}
