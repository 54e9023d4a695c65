package services

import "stoik/internal/domain"

// BulkMinQuantity is the unit count from which a new submission counts as bulk.
const BulkMinQuantity = 20

// Display grouping uses a looser rule than submission eligibility.
const (
	displayBulkDistinctItems = 2
	displayBulkItemQuantity  = 5
)

func TotalQuantity(lines []domain.OrderLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// IsBulkEligible gates bulk order submissions.
func IsBulkEligible(lines []domain.OrderLine) bool {
	return TotalQuantity(lines) >= BulkMinQuantity
}

func Classify(lines []domain.OrderLine) domain.OrderKind {
	if IsBulkEligible(lines) {
		return domain.KindBulk
	}
	return domain.KindRetail
}

// IsBulkForDisplay groups existing orders in lists: two or more distinct
// product/size lines, or any single line of five or more units.
func IsBulkForDisplay(items []domain.OrderItem) bool {
	distinct := map[[2]string]struct{}{}
	for _, it := range items {
		if it.Quantity >= displayBulkItemQuantity {
			return true
		}
		distinct[[2]string{it.ProductID, it.Size}] = struct{}{}
	}
	return len(distinct) >= displayBulkDistinctItems
}
