package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// CalculateSignedAmount applies the double-entry sign convention to an entry
// amount based on the account type it posts against:
// debit to ASSET/EXPENSE increases the balance, credit decreases it;
// debit to LIABILITY/EQUITY/REVENUE decreases the balance, credit increases it.
func CalculateSignedAmount(entry domain.JournalEntry, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := entry.Amount
	isDebit := entry.Side == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, entry.AccountID)
	}
	return signedAmount, nil
}

// SumSide totals the amounts of all entries on the given side.
func SumSide(entries []domain.JournalEntry, side domain.EntrySide) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Side == side {
			total = total.Add(e.Amount)
		}
	}
	return total
}
