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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListing(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	invoice := Invoice{
		InvoiceID: "inv_1",
		Amount:    decimal.NewFromInt(50000),
		DueDate:   now.Add(30 * 24 * time.Hour),
		Status:    StatusVerified,
	}

	listing, err := NewListing(invoice, "GSELLER", decimal.NewFromInt(48000), now)
	require.NoError(t, err)

	assert.Equal(t, "inv_1", listing.InvoiceID)
	assert.Equal(t, "GSELLER", listing.Seller)
	assert.True(t, listing.Discount.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "48.7", listing.Yield.String())
	assert.Equal(t, now, listing.ListedAt)
	assert.Equal(t, invoice, listing.Invoice)
}

func TestNewListingRejectsBadPrices(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	invoice := Invoice{
		InvoiceID: "inv_1",
		Amount:    decimal.NewFromInt(50000),
		DueDate:   now.Add(30 * 24 * time.Hour),
	}

	for _, price := range []int64{0, -100, 50000, 60000} {
		_, err := NewListing(invoice, "GSELLER", decimal.NewFromInt(price), now)
		assert.ErrorIs(t, err, ErrInvalidListingPrice, "price %d", price)
	}
}

func TestSortByPriority(t *testing.T) {
	recommendations := []AIRecommendation{
		{ID: "a", Priority: PriorityLow},
		{ID: "b", Priority: PriorityHigh},
		{ID: "c", Priority: PriorityMedium},
		{ID: "d", Priority: PriorityHigh},
		{ID: "e", Priority: PriorityLow},
	}

	SortByPriority(recommendations)

	var order []string
	for _, rec := range recommendations {
		order = append(order, rec.ID)
	}
	// Ties keep their original relative order.
	assert.Equal(t, []string{"b", "d", "c", "a", "e"}, order)
}
