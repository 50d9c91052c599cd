package workflow

import (
	"testing"

	"github.com/jmarquez/insurance-billing/internal/domain/entity"
)

func TestStage_IsValid(t *testing.T) {
	for _, stage := range Stages {
		if !stage.IsValid() {
			t.Errorf("Stage(%s).IsValid() = false, want true", stage)
		}
	}
	if Stage("archival").IsValid() {
		t.Error("unknown stage must not be valid")
	}
	if Stage("").IsValid() {
		t.Error("empty stage must not be valid")
	}
}

func TestStage_OutcomeStatus(t *testing.T) {
	tests := []struct {
		stage    Stage
		decision string
		expected string
	}{
		{StageReception, "", entity.StatusReceived},
		{StageLiquidation, "", entity.StatusPending},
		{StageAudit, "", entity.StatusPending},
		{StageScheduling, entity.DecisionScheduled, entity.StatusScheduled},
		{StageScheduling, entity.DecisionReturned, entity.StatusReturned},
		{StagePaymentExecution, "", entity.StatusPaid},
		// Settlement shares payment execution's terminal status
		{StageSettlement, "", entity.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.OutcomeStatus(tt.decision); got != tt.expected {
				t.Errorf("OutcomeStatus(%s, %s) = %s, want %s", tt.stage, tt.decision, got, tt.expected)
			}
		})
	}
}

func TestStages_Order(t *testing.T) {
	expected := []Stage{
		StageReception,
		StageLiquidation,
		StageAudit,
		StageScheduling,
		StagePaymentExecution,
		StageSettlement,
	}

	if len(Stages) != len(expected) {
		t.Fatalf("Stages has %d entries, want %d", len(Stages), len(expected))
	}
	for i, stage := range expected {
		if Stages[i] != stage {
			t.Errorf("Stages[%d] = %s, want %s", i, Stages[i], stage)
		}
	}
}
