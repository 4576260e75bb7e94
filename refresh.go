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

	"github.com/receivai/receivai/model"
)

// RefreshData re-reads the session identity's invoices and the marketplace
// from the ledger, reconciles them into the snapshot store, and returns the
// fresh view with listing discounts and yields recomputed. Ledger reads are
// best-effort; when they come back empty the persisted state stands.
func (r *Receivai) RefreshData(ctx context.Context, session Session) ([]model.Invoice, []model.MarketplaceListing, error) {
	ctx, span := tracer.Start(ctx, "RefreshData")
	defer span.End()

	if err := r.maybeSeed(ctx, session); err != nil {
		return nil, nil, logAndRecordError(span, "demo seed failed: ", err)
	}

	invoices, err := r.syncIssuerInvoices(ctx, session, nil)
	if err != nil {
		return nil, nil, logAndRecordError(span, "invoice sync failed: ", err)
	}

	listings, err := r.syncListings(ctx, invoices)
	if err != nil {
		return nil, nil, logAndRecordError(span, "listing sync failed: ", err)
	}

	return invoices, listings, nil
}

// syncListings reconciles the persisted active-listing set with the
// ledger's view. Listings the ledger no longer knows are retired; invoice
// details for the session's own invoices are attached from the fresh
// snapshot.
func (r *Receivai) syncListings(ctx context.Context, invoices []model.Invoice) ([]model.MarketplaceListing, error) {
	persisted, err := r.datasource.GetAllListings(ctx)
	if err != nil {
		return nil, err
	}

	fresh := r.ledger.GetAllListings(ctx)
	if fresh == nil {
		// Best-effort read came back empty; keep the persisted set.
		return r.decorateListings(persisted), nil
	}

	byID := make(map[string]model.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.InvoiceID] = inv
	}
	persistedByID := make(map[string]model.MarketplaceListing, len(persisted))
	for _, l := range persisted {
		persistedByID[l.InvoiceID] = l
	}

	freshIDs := make(map[string]struct{}, len(fresh))
	for i := range fresh {
		l := &fresh[i]
		freshIDs[l.InvoiceID] = struct{}{}
		if inv, ok := byID[l.InvoiceID]; ok {
			l.Invoice = inv
		} else if prev, ok := persistedByID[l.InvoiceID]; ok {
			l.Invoice = prev.Invoice
		}
		if err := r.datasource.SaveListing(ctx, *l); err != nil {
			return nil, err
		}
	}
	for id := range persistedByID {
		if _, stillListed := freshIDs[id]; !stillListed {
			if err := r.datasource.DeleteListing(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	return r.decorateListings(fresh), nil
}

// SeedDemo populates an identity with the showcase invoices unless it
// already has a snapshot, and returns the resulting portfolio.
func (r *Receivai) SeedDemo(ctx context.Context, session Session) ([]model.Invoice, error) {
	seeded, err := r.datasource.HasSnapshot(ctx, session.Identity)
	if err != nil {
		return nil, err
	}
	if !seeded {
		if err := r.datasource.SaveSnapshot(ctx, session.Identity, DemoInvoices(session.Identity, r.now())); err != nil {
			return nil, err
		}
	}
	return r.datasource.LoadSnapshot(ctx, session.Identity)
}

// maybeSeed populates a first-time identity with showcase invoices when the
// demo seed flag is on.
func (r *Receivai) maybeSeed(ctx context.Context, session Session) error {
	if !r.config.SeedDemoData || session.Identity == "" {
		return nil
	}
	seeded, err := r.datasource.HasSnapshot(ctx, session.Identity)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}
	return r.datasource.SaveSnapshot(ctx, session.Identity, DemoInvoices(session.Identity, r.now()))
}
