package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
	"github.com/stocklot/stocklot_erp_app/internal/middleware"
)

// accountHeadHandler handles HTTP requests related to the chart of accounts.
type accountHeadHandler struct {
	accountHeadService portssvc.AccountHeadSvcFacade
}

func newAccountHeadHandler(svc portssvc.AccountHeadSvcFacade) *accountHeadHandler {
	return &accountHeadHandler{accountHeadService: svc}
}

// registerAccountHeadRoutes registers routes related to account heads.
func registerAccountHeadRoutes(rg *gin.RouterGroup, svc portssvc.AccountHeadSvcFacade) {
	h := newAccountHeadHandler(svc)

	accountHeads := rg.Group("/account-heads")
	{
		accountHeads.POST("", h.createAccountHead)
		accountHeads.GET("/:id", h.getAccountHead)
		accountHeads.GET("", h.listAccountHeads)
		accountHeads.POST("/seed-defaults", h.seedDefaultAccountHeads)
	}
}

// seedDefaultAccountHeads godoc
// @Summary Seed the default chart of accounts
// @Description Creates the starter chart of accounts for the tenant, skipping codes that already exist
// @Tags account-heads
// @Produce  json
// @Success 201 {object} dto.ListAccountHeadsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to seed chart of accounts"
// @Security BearerAuth
// @Router /account-heads/seed-defaults [post]
func (h *accountHeadHandler) seedDefaultAccountHeads(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	created, err := h.accountHeadService.SeedDefaultAccountHeads(c.Request.Context(), creatorUserID)
	if err != nil {
		logger.Error("Failed to seed chart of accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed chart of accounts"})
		return
	}

	c.JSON(http.StatusCreated, dto.ListAccountHeadsResponse{AccountHeads: dto.ToAccountHeadResponses(created)})
}

// createAccountHead godoc
// @Summary Create a new account head
// @Description Creates a new ledger account in the tenant's chart of accounts
// @Tags account-heads
// @Accept  json
// @Produce  json
// @Param   accountHead body dto.CreateAccountHeadRequest true "Account head details"
// @Success 201 {object} dto.AccountHeadResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account code already in use"
// @Failure 500 {object} map[string]string "Failed to create account head"
// @Security BearerAuth
// @Router /account-heads [post]
func (h *accountHeadHandler) createAccountHead(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccountHead", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to create account head", slog.String("code", req.Code), slog.String("name", req.Name))

	newAccountHead, err := h.accountHeadService.CreateAccountHead(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating account head", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Account code already in use", slog.String("code", req.Code))
			c.JSON(http.StatusConflict, gin.H{"error": "Account code already in use"})
		} else {
			logger.Error("Failed to create account head in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account head"})
		}
		return
	}

	logger.Info("Account head created successfully", slog.String("account_head_id", newAccountHead.AccountHeadID))
	c.JSON(http.StatusCreated, dto.ToAccountHeadResponse(newAccountHead))
}

// getAccountHead godoc
// @Summary Get an account head by ID
// @Description Retrieves a single ledger account with its running balance
// @Tags account-heads
// @Produce  json
// @Param   id path string true "Account head ID"
// @Success 200 {object} dto.AccountHeadResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account head not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account head"
// @Security BearerAuth
// @Router /account-heads/{id} [get]
func (h *accountHeadHandler) getAccountHead(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountHeadID := c.Param("id")

	logger = logger.With(slog.String("target_account_head_id", accountHeadID))

	accountHead, err := h.accountHeadService.GetAccountHeadByID(c.Request.Context(), accountHeadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account head not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account head not found"})
		} else {
			logger.Error("Failed to get account head from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account head"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountHeadResponse(accountHead))
}

// listAccountHeads godoc
// @Summary List account heads
// @Description Retrieves the tenant's chart of accounts
// @Tags account-heads
// @Produce  json
// @Param   limit query int false "Limit number of results" default(100)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListAccountHeadsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list account heads"
// @Security BearerAuth
// @Router /account-heads [get]
func (h *accountHeadHandler) listAccountHeads(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListAccountHeadsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAccountHeads", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accountHeads, err := h.accountHeadService.ListAccountHeads(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list account heads from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list account heads"})
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountHeadsResponse{AccountHeads: dto.ToAccountHeadResponses(accountHeads)})
}
