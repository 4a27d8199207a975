package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Business events that trigger automatic ledger postings. The identifiers
// point back at the originating row so the resulting journal entry carries a
// reference trail.

// InvoiceIssuedEvent is raised when a sales invoice is finalized.
type InvoiceIssuedEvent struct {
	InvoiceID     string          `json:"invoiceID" binding:"required"`
	InvoiceNumber string          `json:"invoiceNumber" binding:"required"`
	Date          time.Time       `json:"date" binding:"required"`
	Subtotal      decimal.Decimal `json:"subtotal" binding:"required"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	CostOfGoods   decimal.Decimal `json:"costOfGoods"`
}

// PaymentReceivedEvent is raised when a client payment is recorded.
type PaymentReceivedEvent struct {
	PaymentID       string          `json:"paymentID" binding:"required"`
	PaymentNumber   string          `json:"paymentNumber" binding:"required"`
	Date            time.Time       `json:"date" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	BankAccountCode string          `json:"bankAccountCode"`
}

// ExpenseRecordedEvent is raised when an operating expense is recorded.
type ExpenseRecordedEvent struct {
	ExpenseID       string          `json:"expenseID" binding:"required"`
	Category        string          `json:"category" binding:"required"`
	Date            time.Time       `json:"date" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	BankAccountCode string          `json:"bankAccountCode"`
	Description     string          `json:"description"`
}

// GoodsReceivedEvent is raised when a goods-received note is confirmed
// against a purchase order.
type GoodsReceivedEvent struct {
	GRNID     string          `json:"grnID" binding:"required"`
	GRNNumber string          `json:"grnNumber" binding:"required"`
	Date      time.Time       `json:"date" binding:"required"`
	GoodsCost decimal.Decimal `json:"goodsCost" binding:"required"`
	InputTax  decimal.Decimal `json:"inputTax"`
}
