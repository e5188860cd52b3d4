package app

import "github.com/BryanTechnicalWriting/busticketsystem/internal/domain"

// Ticket prices in whole Namibian dollars. Pensioner and student tiers share
// the same reduced fare.
const (
	regularPrice  = 350
	discountPrice = 300
)

func priceFor(d domain.DiscountType) int {
	if d == domain.DiscountNone {
		return regularPrice
	}
	return discountPrice
}
