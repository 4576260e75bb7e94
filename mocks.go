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

package receivai

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// MockDataSource is an in-memory datasource with the same semantics as the
// sqlite-backed one: whole-snapshot writes, a global listing set, and
// per-identity balances. Used by tests across the module.
type MockDataSource struct {
	mu        sync.Mutex
	snapshots map[string][]model.Invoice
	listings  map[string]model.MarketplaceListing
	balances  map[string]decimal.Decimal
}

func NewMockDataSource() *MockDataSource {
	return &MockDataSource{
		snapshots: make(map[string][]model.Invoice),
		listings:  make(map[string]model.MarketplaceListing),
		balances:  make(map[string]decimal.Decimal),
	}
}

func (m *MockDataSource) SaveSnapshot(_ context.Context, identity string, invoices []model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]model.Invoice, len(invoices))
	copy(snapshot, invoices)
	m.snapshots[identity] = snapshot
	return nil
}

func (m *MockDataSource) LoadSnapshot(_ context.Context, identity string) ([]model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]model.Invoice, len(m.snapshots[identity]))
	copy(snapshot, m.snapshots[identity])
	return snapshot, nil
}

func (m *MockDataSource) HasSnapshot(_ context.Context, identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.snapshots[identity]
	return ok, nil
}

func (m *MockDataSource) FindInvoiceAcrossIdentities(_ context.Context, invoiceID string) (*model.Invoice, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for identity, invoices := range m.snapshots {
		for i := range invoices {
			if invoices[i].InvoiceID == invoiceID {
				inv := invoices[i]
				return &inv, identity, nil
			}
		}
	}
	return nil, "", apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" not found")
}

func (m *MockDataSource) SaveListing(_ context.Context, listing model.MarketplaceListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listing.InvoiceID] = listing
	return nil
}

func (m *MockDataSource) DeleteListing(_ context.Context, invoiceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, invoiceID)
	return nil
}

func (m *MockDataSource) GetListing(_ context.Context, invoiceID string) (*model.MarketplaceListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	listing, ok := m.listings[invoiceID]
	if !ok {
		return nil, nil
	}
	return &listing, nil
}

func (m *MockDataSource) GetAllListings(_ context.Context) ([]model.MarketplaceListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	listings := make([]model.MarketplaceListing, 0, len(m.listings))
	for _, listing := range m.listings {
		listings = append(listings, listing)
	}
	return listings, nil
}

func (m *MockDataSource) SaveBalance(_ context.Context, identity string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[identity] = amount
	return nil
}

func (m *MockDataSource) GetBalance(_ context.Context, identity string) (decimal.Decimal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, ok := m.balances[identity]
	if !ok {
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}
