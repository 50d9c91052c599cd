package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmarquez/insurance-billing/internal/application/port"
	"github.com/jmarquez/insurance-billing/internal/application/service"
	"github.com/jmarquez/insurance-billing/internal/domain/finance"
	"github.com/jmarquez/insurance-billing/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// roleHeader carries the authenticated actor's role. Authentication itself
// is handled by the fronting session provider; this service only enforces
// stage-level permissions.
const roleHeader = "X-Actor-Role"

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine    service.WorkflowEngine
	reports   service.ReportService
	bills     port.BillRepository
	providers port.ProviderRepository
	analysts  port.AnalystRepository
	logger    Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine service.WorkflowEngine,
	reports service.ReportService,
	bills port.BillRepository,
	providers port.ProviderRepository,
	analysts port.AnalystRepository,
	logger Logger,
) *Handlers {
	return &Handlers{
		engine:    engine,
		reports:   reports,
		bills:     bills,
		providers: providers,
		analysts:  analysts,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmitStageRequest is the envelope for stage submissions. Payload is
// decoded into the stage's concrete struct after the stage is known.
type SubmitStageRequest struct {
	BillID  string          `json:"bill_id"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// ListBillsRequest represents query parameters for listing bills
type ListBillsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListBills handles GET /api/bills
func (h *Handlers) ListBills(c *gin.Context) {
	var req ListBillsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	bills, err := h.bills.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list bills", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve bills"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bills})
}

// GetBill handles GET /api/bills/:id
func (h *Handlers) GetBill(c *gin.Context) {
	bill, err := h.engine.LoadBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: bill})
}

// SubmitStage handles POST /api/bills/stages/:stage
func (h *Handlers) SubmitStage(c *gin.Context) {
	stage := workflow.Stage(c.Param("stage"))
	if !stage.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown stage"})
		return
	}

	role := workflow.Role(c.GetHeader(roleHeader))
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing or unknown actor role"})
		return
	}

	var req SubmitStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	payload, err := decodePayload(stage, req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "malformed stage payload"})
		return
	}

	bill, err := h.engine.SubmitStage(c.Request.Context(), role, req.BillID, payload)
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bill})
}

// GetPermissions handles GET /api/bills/:id/permissions
func (h *Handlers) GetPermissions(c *gin.Context) {
	role := workflow.Role(c.Query("role"))
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing or unknown role"})
		return
	}

	bill, err := h.engine.LoadBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}

	permissions := make(map[string]bool, len(workflow.Stages))
	for _, stage := range workflow.Stages {
		permissions[stage.String()] = h.engine.CanEdit(role, stage, bill.Status)
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: permissions})
}

// LiquidationPreviewRequest mirrors the editable liquidation inputs
type LiquidationPreviewRequest struct {
	BilledAmount     float64 `json:"billed_amount"`
	GeneralExpenses  float64 `json:"general_expenses"`
	MedicalFees      float64 `json:"medical_fees"`
	ClinicalServices float64 `json:"clinical_services"`
}

// PreviewLiquidation handles POST /api/previews/liquidation
func (h *Handlers) PreviewLiquidation(c *gin.Context) {
	var req LiquidationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result := h.engine.PreviewLiquidation(req.BilledAmount, req.GeneralExpenses, req.MedicalFees, req.ClinicalServices)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ExchangePreviewRequest mirrors the linked payment amount inputs
type ExchangePreviewRequest struct {
	AmountLocal   float64             `json:"amount_local"`
	AmountForeign float64             `json:"amount_foreign"`
	ExchangeRate  float64             `json:"exchange_rate"`
	LastEdited    finance.EditedField `json:"last_edited"`
}

// PreviewExchange handles POST /api/previews/exchange
func (h *Handlers) PreviewExchange(c *gin.Context) {
	var req ExchangePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result := h.engine.PreviewExchange(req.AmountLocal, req.AmountForeign, req.ExchangeRate, req.LastEdited)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ListProviders handles GET /api/providers
func (h *Handlers) ListProviders(c *gin.Context) {
	var req ListBillsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}

	providers, err := h.providers.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list providers", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve providers"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: providers})
}

// GetAnalyst handles GET /api/analysts/:id
func (h *Handlers) GetAnalyst(c *gin.Context) {
	analyst, err := h.analysts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get analyst", "analyst_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve analyst"})
		return
	}
	if analyst == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "analyst not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: analyst})
}

// ExportBillRegistry handles GET /api/reports/bills
func (h *Handlers) ExportBillRegistry(c *gin.Context) {
	f, err := h.reports.ExportBillRegistry(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to export bill registry", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to export bill registry"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bill-registry.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream bill registry", "error", err)
	}
}

// DeactivateBill handles DELETE /api/bills/:id. This is the administrative
// side-channel; the workflow itself never deletes.
func (h *Handlers) DeactivateBill(c *gin.Context) {
	role := workflow.Role(c.GetHeader(roleHeader))
	if role != workflow.RoleAdmin {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "only administrators can deactivate bills"})
		return
	}

	if err := h.bills.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("Failed to deactivate bill", "bill_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to deactivate bill"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// decodePayload turns the raw payload into the stage's concrete struct
func decodePayload(stage workflow.Stage, raw json.RawMessage) (service.StagePayload, error) {
	switch stage {
	case workflow.StageReception:
		var p service.ReceptionPayload
		return p, json.Unmarshal(raw, &p)
	case workflow.StageLiquidation:
		var p service.LiquidationPayload
		return p, json.Unmarshal(raw, &p)
	case workflow.StageAudit:
		var p service.AuditPayload
		return p, json.Unmarshal(raw, &p)
	case workflow.StageScheduling:
		var p service.SchedulingPayload
		return p, json.Unmarshal(raw, &p)
	case workflow.StagePaymentExecution:
		var p service.PaymentPayload
		return p, json.Unmarshal(raw, &p)
	default:
		var p service.SettlementPayload
		return p, json.Unmarshal(raw, &p)
	}
}

// respondWorkflowError maps the workflow error taxonomy onto HTTP statuses
// with fixed, role-agnostic messages.
func (h *Handlers) respondWorkflowError(c *gin.Context, err error) {
	var validationErr *workflow.ValidationError
	var infraErr *workflow.InfrastructureError

	switch {
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "your role cannot edit this stage"})
	case errors.Is(err, workflow.ErrPrerequisiteMissing):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "complete reception before submitting this stage"})
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "bill not found"})
	case errors.Is(err, workflow.ErrDuplicateClaimNumber):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "claim number already registered on another bill"})
	case errors.Is(err, workflow.ErrDuplicateInvoiceForProvider):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "invoice number already registered for this provider"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validationErr.Error()})
	case errors.As(err, &infraErr):
		h.logger.Error("Gateway failure", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "storage temporarily unavailable, retry later"})
	default:
		h.logger.Error("Unexpected workflow error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
