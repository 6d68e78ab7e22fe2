package divide

import (
	domshopping "example.com/divide-account/internal/domain/shopping"
	domsplit "example.com/divide-account/internal/domain/split"
)

// Divide splits the list's total cost among emails. Each recipient gets the
// floor share; the first total mod n recipients, in input order, get one
// extra unit. emails must be non-empty, which Validate guarantees.
func Divide(items domshopping.List, emails domshopping.EmailList) domsplit.Allocation {
	total := items.Total()
	n := int64(len(emails))
	base := total / n
	remainder := total - base*n

	shares := make([]domsplit.Share, len(emails))
	for i, email := range emails {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		shares[i] = domsplit.Share{Email: email, Amount: amount}
	}

	return domsplit.Allocation{
		Total:     total,
		BaseShare: base,
		Remainder: remainder,
		Shares:    shares,
	}
}
