package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
	"github.com/stocklot/stocklot_erp_app/internal/core/services"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
	"github.com/stocklot/stocklot_erp_app/internal/middleware"
)

// autoJournalHandler exposes the automatic posting endpoints used by the
// invoice, payment, expense and inventory modules.
type autoJournalHandler struct {
	autoJournalService portssvc.AutoJournalSvcFacade
}

func newAutoJournalHandler(svc portssvc.AutoJournalSvcFacade) *autoJournalHandler {
	return &autoJournalHandler{autoJournalService: svc}
}

// registerAutoJournalRoutes registers the business-event posting routes.
func registerAutoJournalRoutes(rg *gin.RouterGroup, svc portssvc.AutoJournalSvcFacade) {
	h := newAutoJournalHandler(svc)

	postings := rg.Group("/postings")
	{
		postings.POST("/invoice-issued", h.invoiceIssued)
		postings.POST("/payment-received", h.paymentReceived)
		postings.POST("/expense-recorded", h.expenseRecorded)
		postings.POST("/goods-received", h.goodsReceived)
	}
}

// invoiceIssued godoc
// @Summary Post the ledger entry for an issued invoice
// @Description Records receivable, revenue, tax and cost-of-goods legs for a finalized invoice
// @Tags postings
// @Accept  json
// @Produce  json
// @Param   event body dto.InvoiceIssuedEvent true "Invoice issued event"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to post"
// @Security BearerAuth
// @Router /postings/invoice-issued [post]
func (h *autoJournalHandler) invoiceIssued(c *gin.Context) {
	var ev dto.InvoiceIssuedEvent
	handleAutoPosting(c, &ev, func(actorUserID string) (*domain.JournalEntry, error) {
		return h.autoJournalService.RecordInvoiceIssued(c.Request.Context(), ev, actorUserID)
	})
}

// paymentReceived godoc
// @Summary Post the ledger entry for a received payment
// @Description Records the bank debit and receivable credit for a client payment
// @Tags postings
// @Accept  json
// @Produce  json
// @Param   event body dto.PaymentReceivedEvent true "Payment received event"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to post"
// @Security BearerAuth
// @Router /postings/payment-received [post]
func (h *autoJournalHandler) paymentReceived(c *gin.Context) {
	var ev dto.PaymentReceivedEvent
	handleAutoPosting(c, &ev, func(actorUserID string) (*domain.JournalEntry, error) {
		return h.autoJournalService.RecordPaymentReceived(c.Request.Context(), ev, actorUserID)
	})
}

// expenseRecorded godoc
// @Summary Post the ledger entry for a recorded expense
// @Description Records the expense debit and bank credit for an operating expense
// @Tags postings
// @Accept  json
// @Produce  json
// @Param   event body dto.ExpenseRecordedEvent true "Expense recorded event"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to post"
// @Security BearerAuth
// @Router /postings/expense-recorded [post]
func (h *autoJournalHandler) expenseRecorded(c *gin.Context) {
	var ev dto.ExpenseRecordedEvent
	handleAutoPosting(c, &ev, func(actorUserID string) (*domain.JournalEntry, error) {
		return h.autoJournalService.RecordExpense(c.Request.Context(), ev, actorUserID)
	})
}

// goodsReceived godoc
// @Summary Post the ledger entry for a goods receipt
// @Description Records inventory and input tax against accounts payable for a confirmed goods-received note
// @Tags postings
// @Accept  json
// @Produce  json
// @Param   event body dto.GoodsReceivedEvent true "Goods received event"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to post"
// @Security BearerAuth
// @Router /postings/goods-received [post]
func (h *autoJournalHandler) goodsReceived(c *gin.Context) {
	var ev dto.GoodsReceivedEvent
	handleAutoPosting(c, &ev, func(actorUserID string) (*domain.JournalEntry, error) {
		return h.autoJournalService.RecordGoodsReceipt(c.Request.Context(), ev, actorUserID)
	})
}

// handleAutoPosting binds the event payload, resolves the actor and maps
// service errors onto HTTP statuses for all four posting endpoints.
func handleAutoPosting(c *gin.Context, ev any, record func(actorUserID string) (*domain.JournalEntry, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if err := c.ShouldBindJSON(ev); err != nil {
		logger.Warn("Failed to bind JSON for auto posting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Actor user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := record(actorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, services.ErrAccountNotFound),
			errors.Is(err, services.ErrAccountInactive),
			errors.Is(err, services.ErrEntryUnbalanced):
			logger.Warn("Auto posting rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Auto posting failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post"})
		}
		return
	}

	logger.Info("Auto posting created", slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}
