package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
	"github.com/stocklot/stocklot_erp_app/internal/middleware"
)

// expenseAccountByCategory maps expense categories onto chart codes.
var expenseAccountByCategory = map[string]string{
	"RENT":        "5200",
	"UTILITIES":   "5300",
	"SALARIES":    "5400",
	"TRANSPORT":   "5500",
	"SUPPLIES":    "5900",
	"MAINTENANCE": "5900",
	"MARKETING":   "5900",
	"MISC":        "5900",
}

// autoJournalService turns business mutations into balanced ledger postings.
// Each Record* method runs synchronously inside the caller's write path; an
// error means the caller must abort its own operation, since the posting and
// the business mutation stand or fall together.
type autoJournalService struct {
	ledgerSvc portssvc.LedgerSvcFacade
}

// NewAutoJournalService creates a new AutoJournalService.
func NewAutoJournalService(ledgerSvc portssvc.LedgerSvcFacade) portssvc.AutoJournalSvcFacade {
	return &autoJournalService{ledgerSvc: ledgerSvc}
}

var _ portssvc.AutoJournalSvcFacade = (*autoJournalService)(nil)

// RecordInvoiceIssued posts receivable, revenue, tax and cost-of-goods legs
// for a finalized sales invoice.
func (s *autoJournalService) RecordInvoiceIssued(ctx context.Context, ev dto.InvoiceIssuedEvent, actorUserID string) (*domain.JournalEntry, error) {
	if !ev.Subtotal.IsPositive() {
		return nil, fmt.Errorf("%w: invoice subtotal must be positive", apperrors.ErrValidation)
	}

	gross := ev.Subtotal.Add(ev.TaxAmount)
	lines := []dto.PostLineRequest{
		{AccountCode: domain.CodeAccountsReceivable, Debit: gross, Description: "Invoice " + ev.InvoiceNumber},
		{AccountCode: domain.CodeSalesRevenue, Credit: ev.Subtotal, Description: "Sales revenue"},
	}
	if ev.TaxAmount.IsPositive() {
		lines = append(lines, dto.PostLineRequest{AccountCode: domain.CodeTaxPayable, Credit: ev.TaxAmount, Description: "Sales tax"})
	}
	if ev.CostOfGoods.IsPositive() {
		lines = append(lines,
			dto.PostLineRequest{AccountCode: domain.CodeCOGS, Debit: ev.CostOfGoods, Description: "Cost of goods sold"},
			dto.PostLineRequest{AccountCode: domain.CodeInventory, Credit: ev.CostOfGoods, Description: "Inventory relieved"},
		)
	}

	return s.post(ctx, dto.PostEntryRequest{
		Date:          ev.Date,
		Description:   "Invoice issued: " + ev.InvoiceNumber,
		ReferenceType: domain.RefInvoice,
		ReferenceID:   ev.InvoiceID,
		Lines:         lines,
	}, actorUserID)
}

// RecordPaymentReceived posts a bank/receivable swap for a client payment.
func (s *autoJournalService) RecordPaymentReceived(ctx context.Context, ev dto.PaymentReceivedEvent, actorUserID string) (*domain.JournalEntry, error) {
	if !ev.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	bankCode := ev.BankAccountCode
	if bankCode == "" {
		bankCode = domain.CodeMainBank
	}

	return s.post(ctx, dto.PostEntryRequest{
		Date:          ev.Date,
		Description:   "Payment received: " + ev.PaymentNumber,
		ReferenceType: domain.RefPayment,
		ReferenceID:   ev.PaymentID,
		Lines: []dto.PostLineRequest{
			{AccountCode: bankCode, Debit: ev.Amount, Description: "Payment " + ev.PaymentNumber},
			{AccountCode: domain.CodeAccountsReceivable, Credit: ev.Amount, Description: "Receivable settled"},
		},
	}, actorUserID)
}

// RecordExpense posts an expense against the category's chart account.
func (s *autoJournalService) RecordExpense(ctx context.Context, ev dto.ExpenseRecordedEvent, actorUserID string) (*domain.JournalEntry, error) {
	if !ev.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}

	expenseCode, ok := expenseAccountByCategory[ev.Category]
	if !ok {
		expenseCode = expenseAccountByCategory["MISC"]
	}
	bankCode := ev.BankAccountCode
	if bankCode == "" {
		bankCode = domain.CodeMainBank
	}

	description := ev.Description
	if description == "" {
		description = "Expense: " + ev.Category
	}

	return s.post(ctx, dto.PostEntryRequest{
		Date:          ev.Date,
		Description:   description,
		ReferenceType: domain.RefExpense,
		ReferenceID:   ev.ExpenseID,
		Lines: []dto.PostLineRequest{
			{AccountCode: expenseCode, Debit: ev.Amount, Description: ev.Category},
			{AccountCode: bankCode, Credit: ev.Amount, Description: "Paid from bank"},
		},
	}, actorUserID)
}

// RecordGoodsReceipt posts inventory and input tax against accounts payable
// for a confirmed goods-received note.
func (s *autoJournalService) RecordGoodsReceipt(ctx context.Context, ev dto.GoodsReceivedEvent, actorUserID string) (*domain.JournalEntry, error) {
	if !ev.GoodsCost.IsPositive() {
		return nil, fmt.Errorf("%w: goods cost must be positive", apperrors.ErrValidation)
	}

	payable := ev.GoodsCost.Add(ev.InputTax)
	lines := []dto.PostLineRequest{
		{AccountCode: domain.CodeInventory, Debit: ev.GoodsCost, Description: "Goods received " + ev.GRNNumber},
	}
	if ev.InputTax.IsPositive() {
		lines = append(lines, dto.PostLineRequest{AccountCode: domain.CodeInputTax, Debit: ev.InputTax, Description: "Input tax"})
	}
	lines = append(lines, dto.PostLineRequest{AccountCode: domain.CodeAccountsPayable, Credit: payable, Description: "Supplier payable"})

	return s.post(ctx, dto.PostEntryRequest{
		Date:          ev.Date,
		Description:   "Goods received: " + ev.GRNNumber,
		ReferenceType: domain.RefGoodsReceipt,
		ReferenceID:   ev.GRNID,
		Lines:         lines,
	}, actorUserID)
}

func (s *autoJournalService) post(ctx context.Context, req dto.PostEntryRequest, actorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.ledgerSvc.PostEntry(ctx, req, actorUserID)
	if err != nil {
		logger.Error("Automatic posting failed",
			slog.String("reference_type", string(req.ReferenceType)),
			slog.String("reference_id", req.ReferenceID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("automatic posting for %s %s failed: %w", req.ReferenceType, req.ReferenceID, err)
	}

	logger.Info("Automatic posting created",
		slog.String("entry_number", entry.EntryNumber),
		slog.String("reference_type", string(req.ReferenceType)),
		slog.String("reference_id", req.ReferenceID),
	)
	return entry, nil
}
