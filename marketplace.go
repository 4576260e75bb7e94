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

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// ListInvoice places a verified invoice on the marketplace at the given ask
// price. The price is validated before anything is signed; the ledger round
// trip completes before the listing becomes visible.
func (r *Receivai) ListInvoice(ctx context.Context, session Session, invoiceID string, price decimal.Decimal) (*model.MarketplaceListing, error) {
	ctx, span := tracer.Start(ctx, "ListInvoice")
	defer span.End()

	locker, err := r.acquireLock(ctx, invoiceID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire invoice lock: ", err)
	}
	defer r.releaseLock(ctx, locker)

	invoice, err := r.GetInvoice(ctx, session, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != model.StatusVerified {
		return nil, apierror.NewAPIError(apierror.ErrInvalidStatusTransition,
			"invoice "+invoiceID+" must be verified before listing, is "+string(invoice.Status))
	}
	// Validates the ask price against the face amount before anything is
	// signed.
	if _, err := model.NewListing(*invoice, session.Identity, price, r.now()); err != nil {
		return nil, err
	}

	tx, err := r.ledger.List(ctx, invoiceID, session.Identity, price)
	if err != nil {
		return nil, logAndRecordError(span, "failed to build listing transaction: ", err)
	}
	if err := r.signAndSubmit(ctx, session, tx); err != nil {
		return nil, logAndRecordError(span, "listing submission failed: ", err)
	}

	if err := r.syncInvoice(ctx, session.Identity, invoiceID, invoice.DebtorName); err != nil {
		return nil, logAndRecordError(span, "failed to sync listed invoice: ", err)
	}
	listed, err := r.GetInvoice(ctx, session, invoiceID)
	if err != nil {
		return nil, err
	}

	listing, err := model.NewListing(*listed, session.Identity, price, r.now())
	if err != nil {
		return nil, err
	}
	if listed.ListedAt != nil {
		listing.ListedAt = *listed.ListedAt
	}
	if err := r.datasource.SaveListing(ctx, *listing); err != nil {
		return nil, logAndRecordError(span, "failed to persist listing: ", err)
	}
	return listing, nil
}

// BuyInvoice purchases a listed invoice for the session identity. The
// listing must be in the active set; once the purchase is confirmed the
// invoice is marked sold and the listing leaves the marketplace.
func (r *Receivai) BuyInvoice(ctx context.Context, session Session, invoiceID string) (*model.Invoice, error) {
	ctx, span := tracer.Start(ctx, "BuyInvoice")
	defer span.End()

	locker, err := r.acquireLock(ctx, invoiceID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire invoice lock: ", err)
	}
	defer r.releaseLock(ctx, locker)

	listing, err := r.datasource.GetListing(ctx, invoiceID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to load listing: ", err)
	}
	if listing == nil {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" is not listed")
	}

	_, owner, err := r.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	tx, err := r.ledger.Buy(ctx, invoiceID, session.Identity)
	if err != nil {
		return nil, logAndRecordError(span, "failed to build purchase transaction: ", err)
	}
	if err := r.signAndSubmit(ctx, session, tx); err != nil {
		return nil, logAndRecordError(span, "purchase submission failed: ", err)
	}

	if err := r.syncInvoice(ctx, owner, invoiceID, ""); err != nil {
		return nil, logAndRecordError(span, "failed to sync sold invoice: ", err)
	}

	invoice, _, err := r.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.SoldPrice == nil {
		price := listing.Price
		invoice.SoldPrice = &price
	}
	invoice.Stamp(model.StatusSold, r.now())
	if err := r.storeInvoice(ctx, owner, *invoice); err != nil {
		return nil, logAndRecordError(span, "failed to persist sold invoice: ", err)
	}
	// The buyer holds the invoice now; their snapshot gets a copy so it
	// shows up in their portfolio without a ledger round trip.
	if session.Identity != owner {
		if err := r.storeInvoice(ctx, session.Identity, *invoice); err != nil {
			return nil, logAndRecordError(span, "failed to persist buyer snapshot: ", err)
		}
	}
	if err := r.datasource.DeleteListing(ctx, invoiceID); err != nil {
		return nil, logAndRecordError(span, "failed to retire listing: ", err)
	}
	return invoice, nil
}

// Listings returns the active marketplace set with discount and yield
// recomputed against the current clock, so a listing's quoted yield tracks
// the shrinking time to maturity.
func (r *Receivai) Listings(ctx context.Context) ([]model.MarketplaceListing, error) {
	listings, err := r.datasource.GetAllListings(ctx)
	if err != nil {
		return nil, err
	}
	return r.decorateListings(listings), nil
}

func (r *Receivai) decorateListings(listings []model.MarketplaceListing) []model.MarketplaceListing {
	now := r.now()
	for i := range listings {
		l := &listings[i]
		if l.Invoice.Amount.IsZero() {
			continue
		}
		l.Discount = l.Invoice.Amount.Sub(l.Price).
			Div(l.Invoice.Amount).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		l.Yield = model.AnnualizedYield(l.Discount, model.DaysUntilDue(l.Invoice.DueDate, now))
	}
	return listings
}
