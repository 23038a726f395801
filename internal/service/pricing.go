package service

import (
	"fmt"

	"go-duka-pos/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeTotal resolves the price of a requested quantity against a
// product's billing mode. BY_WEIGHT takes a weight, BY_UNIT takes a whole
// count; a fractional count is rejected, never silently rounded.
func ComputeTotal(product *model.Product, quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.Sign() <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}

	switch product.PricingType {
	case model.PricingByWeight:
		// fractional weights are fine
	case model.PricingByUnit:
		if !quantity.IsInteger() {
			return decimal.Zero, fmt.Errorf("%w: unit-priced products take whole counts", ErrInvalidQuantity)
		}
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown pricing type %q", ErrInvalidQuantity, product.PricingType)
	}

	return quantity.Mul(product.Rate), nil
}
