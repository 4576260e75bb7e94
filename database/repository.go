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

package database

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	snapshot // Persisted invoice snapshots, keyed by identity
	listing  // The single global active-listing set
	balance  // Demo cash balances per identity
}

// snapshot defines methods for the persisted invoice snapshots. Every
// mutation writes the whole snapshot for an identity back atomically; there
// is no partial-field persistence.
type snapshot interface {
	SaveSnapshot(ctx context.Context, identity string, invoices []model.Invoice) error
	LoadSnapshot(ctx context.Context, identity string) ([]model.Invoice, error)
	HasSnapshot(ctx context.Context, identity string) (bool, error)
	// FindInvoiceAcrossIdentities scans every persisted identity's snapshot
	// for an invoice id. It backs the shareable verification link surface.
	FindInvoiceAcrossIdentities(ctx context.Context, invoiceID string) (*model.Invoice, string, error)
}

// listing defines methods for the active marketplace listing set.
type listing interface {
	SaveListing(ctx context.Context, listing model.MarketplaceListing) error
	DeleteListing(ctx context.Context, invoiceID string) error
	GetListing(ctx context.Context, invoiceID string) (*model.MarketplaceListing, error)
	GetAllListings(ctx context.Context) ([]model.MarketplaceListing, error)
}

// balance defines methods for demo-mode cash balances.
type balance interface {
	SaveBalance(ctx context.Context, identity string, amount decimal.Decimal) error
	GetBalance(ctx context.Context, identity string) (decimal.Decimal, bool, error)
}
