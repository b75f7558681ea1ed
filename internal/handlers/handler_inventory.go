package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// inventoryHandler handles HTTP requests for the inventory ledger.
type inventoryHandler struct {
	inventoryService    portssvc.InventorySvcFacade
	availabilityService portssvc.AvailabilitySvc
	expiryService       portssvc.ExpirySvc
}

// RegisterInventoryRoutes registers the ledger, availability and expiry routes.
func RegisterInventoryRoutes(rg *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade, availabilityService portssvc.AvailabilitySvc, expiryService portssvc.ExpirySvc) {
	h := &inventoryHandler{
		inventoryService:    inventoryService,
		availabilityService: availabilityService,
		expiryService:       expiryService,
	}

	inventory := rg.Group("/inventory")
	{
		inventory.POST("", h.recordTransaction)
		inventory.GET("", h.listTransactions)
		inventory.GET("/availability", h.getAvailability)
		inventory.GET("/availability/summary", h.getAvailabilitySummary)
		inventory.POST("/expiry-sweep", h.sweepExpired)
		inventory.GET("/:transactionID", h.getTransaction)
	}
}

// recordTransaction godoc
// @Summary Record an inventory transaction
// @Description Records blood entering (in) or leaving (out) an organisation's book.
// @Tags inventory
// @Accept json
// @Produce json
// @Param transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} InsufficientInventoryResponse "Validation error or insufficient inventory"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Role may not record this direction"
// @Failure 404 {object} ErrorResponse "Organisation not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /inventory [post]
func (h *inventoryHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transaction request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.inventoryService.RecordTransaction(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to record transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List inventory transactions
// @Description Lists the ledger entries visible to the caller, newest first by default.
// @Tags inventory
// @Produce json
// @Param bloodType query string false "Blood type"
// @Param direction query string false "in or out"
// @Param from query string false "Created at or after (RFC3339)"
// @Param to query string false "Created at or before (RFC3339)"
// @Param organisationId query string false "Organisation filter (admin only)"
// @Param donorId query string false "Donor filter (admin only)"
// @Param hospitalId query string false "Hospital filter (admin only)"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size (max 100)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /inventory [get]
func (h *inventoryHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind list query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.inventoryService.ListTransactions(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get an inventory transaction
// @Tags inventory
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /inventory/{transactionID} [get]
func (h *inventoryHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.inventoryService.GetTransaction(c.Request.Context(), actor, c.Param("transactionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getAvailability godoc
// @Summary Availability of one blood type
// @Description Computes total in minus total out for a scope. Expired units are reported, not subtracted.
// @Tags inventory
// @Produce json
// @Param bloodType query string true "Blood type"
// @Param scope query string false "Organisation ID, or global"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Scope not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /inventory/availability [get]
func (h *inventoryHandler) getAvailability(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AvailabilityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bloodType is required"})
		return
	}

	availability, err := h.availabilityService.GetAvailability(c.Request.Context(), params.BloodType, params.Scope)
	if err != nil {
		respondError(c, logger, err, "Failed to compute availability")
		return
	}
	c.JSON(http.StatusOK, dto.ToAvailabilityResponse(*availability))
}

// getAvailabilitySummary godoc
// @Summary Availability of every blood type
// @Tags inventory
// @Produce json
// @Param scope query string false "Organisation ID, or global"
// @Success 200 {object} dto.AvailabilitySummaryResponse
// @Failure 404 {object} ErrorResponse "Scope not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /inventory/availability/summary [get]
func (h *inventoryHandler) getAvailabilitySummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	summary, err := h.availabilityService.GetSummary(c.Request.Context(), c.Query("scope"))
	if err != nil {
		respondError(c, logger, err, "Failed to compute availability summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToAvailabilitySummaryResponse(summary))
}

// sweepExpired godoc
// @Summary Flag expired donations
// @Description Marks in entries older than the shelf life as expired. Admin only.
// @Tags inventory
// @Produce json
// @Success 200 {object} dto.ExpirySweepResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /inventory/expiry-sweep [post]
func (h *inventoryHandler) sweepExpired(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.expiryService.SweepExpired(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to run expiry sweep")
		return
	}
	c.JSON(http.StatusOK, resp)
}
