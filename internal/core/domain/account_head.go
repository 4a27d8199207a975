package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account head.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsDebitNormal reports whether the account type increases with debits.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// AccountHead represents a ledger account within the chart of accounts.
// CurrentBalance is maintained exclusively by the ledger posting engine; no
// other code path writes it.
type AccountHead struct {
	AccountHeadID  string          `json:"accountHeadID"` // Primary key (UUID)
	TenantID       string          `json:"tenantID"`      // Owning tenant (NON-NULL)
	Code           string          `json:"code"`          // Unique per tenant, e.g. "1101"
	Name           string          `json:"name"`          // User-facing name
	AccountType    AccountType     `json:"accountType"`   // ASSET, LIABILITY, etc.
	Description    string          `json:"description"`
	IsActive       bool            `json:"isActive"`
	CurrentBalance decimal.Decimal `json:"currentBalance"` // Running balance, 2dp
	AuditFields
}

// Well-known chart codes used by the automatic journal mappings.
const (
	CodeMainBank           = "1101"
	CodePettyCash          = "1102"
	CodeAccountsReceivable = "1200"
	CodeInventory          = "1300"
	CodeInputTax           = "1350"
	CodeAccountsPayable    = "2100"
	CodeTaxPayable         = "2200"
	CodeSalesRevenue       = "4100"
	CodeOtherIncome        = "4200"
	CodeCOGS               = "5100"
	CodeInventoryLoss      = "5150"
)
