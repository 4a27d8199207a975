package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
)

// SignedDelta computes the contribution of one line to its account's running
// balance, following the normal-balance convention:
//
//	DEBIT to ASSET/EXPENSE          -> positive
//	CREDIT to ASSET/EXPENSE         -> negative
//	DEBIT to LIABILITY/EQUITY/REVENUE  -> negative
//	CREDIT to LIABILITY/EQUITY/REVENUE -> positive
func SignedDelta(accountType domain.AccountType, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return credit.Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q", accountType)
	}
}

// Round2 rounds a monetary amount to 2 decimal places before it is recorded,
// so persisted values never carry more precision than the currency unit.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ValidateBalanced checks the fundamental double-entry invariant over a set of
// lines: sum of debits equals sum of credits. Amounts must be non-negative and
// each line must have exactly one active side.
func ValidateBalanced(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("line %d: debit and credit amounts must not be negative", i+1)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("line %d: a line cannot carry both a debit and a credit amount", i+1)
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("line %d: each line must carry a debit or a credit amount", i+1)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("entry is not balanced: debits %s, credits %s", debits.String(), credits.String())
	}
	return nil
}
