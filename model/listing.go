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

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidListingPrice is returned when a listing price is not a
	// strict discount on the invoice face amount.
	ErrInvalidListingPrice = errors.New("listing price must be greater than zero and less than the invoice amount")
)

// MarketplaceListing is an offer to sell a verified invoice at a discount.
// At most one active listing exists per invoice; a listing is removed from
// the active set the moment its invoice leaves the listed status.
type MarketplaceListing struct {
	InvoiceID string          `json:"invoice_id"`
	Seller    string          `json:"seller"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Yield     decimal.Decimal `json:"yield"`
	ListedAt  time.Time       `json:"listed_at"`
	Invoice   Invoice         `json:"invoice"`
}

// NewListing builds a listing for an invoice at the given ask price,
// computing the discount and annualized yield. A zero-discount or premium
// listing is rejected.
func NewListing(invoice Invoice, seller string, price decimal.Decimal, now time.Time) (*MarketplaceListing, error) {
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThanOrEqual(invoice.Amount) {
		return nil, ErrInvalidListingPrice
	}

	discount := invoice.Amount.Sub(price).Div(invoice.Amount).Mul(decimal.NewFromInt(100))

	return &MarketplaceListing{
		InvoiceID: invoice.InvoiceID,
		Seller:    seller,
		Price:     price,
		Discount:  discount,
		Yield:     AnnualizedYield(discount, DaysUntilDue(invoice.DueDate, now)),
		ListedAt:  now,
		Invoice:   invoice,
	}, nil
}

// AnnualizedYield converts a discount percentage over a holding period into
// an annualized percentage, rounded to one decimal place. Overdue periods
// yield zero rather than an undefined rate.
func AnnualizedYield(discount decimal.Decimal, daysUntilDue int) decimal.Decimal {
	if daysUntilDue <= 0 {
		return decimal.Zero
	}
	return discount.Div(decimal.NewFromInt(int64(daysUntilDue))).Mul(decimal.NewFromInt(365)).Round(1)
}
