/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSuggestion is the output of the pricing engine: a suggested ask price
// for an invoice together with the discount it implies and the annualized
// yield a buyer would earn.
type PriceSuggestion struct {
	Price    decimal.Decimal `json:"price"`
	Discount int64           `json:"discount"`
	Yield    decimal.Decimal `json:"yield"`
}

// suggestedDiscount is a step function of days until the invoice is due.
// Shorter holding periods warrant smaller discounts.
func suggestedDiscount(daysUntilDue int) int64 {
	switch {
	case daysUntilDue <= 14:
		return 1
	case daysUntilDue <= 30:
		return 2
	case daysUntilDue <= 45:
		return 3
	case daysUntilDue <= 60:
		return 4
	default:
		return 5
	}
}

// SuggestedPrice computes a discount percentage from the invoice's time to
// maturity, the ask price it implies (rounded to the nearest whole currency
// unit) and the annualized yield (one decimal place). Pure and deterministic
// given now.
func SuggestedPrice(amount decimal.Decimal, dueDate, now time.Time) PriceSuggestion {
	days := DaysUntilDue(dueDate, now)
	discount := suggestedDiscount(days)

	price := DiscountedPrice(amount, discount)
	yield := AnnualizedYield(decimal.NewFromInt(discount), days)

	return PriceSuggestion{Price: price, Discount: discount, Yield: yield}
}

// DiscountedPrice applies a whole-percent discount to an amount and rounds to
// the nearest currency unit.
func DiscountedPrice(amount decimal.Decimal, discount int64) decimal.Decimal {
	factor := decimal.NewFromInt(100 - discount).Div(decimal.NewFromInt(100))
	return amount.Mul(factor).Round(0)
}
