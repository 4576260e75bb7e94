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
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/internal/notification"
	"github.com/receivai/receivai/ledger"
	"github.com/receivai/receivai/model"
)

// CreateInvoiceResult is the outcome of invoice creation. Fallback marks an
// invoice that was synthesized locally because the ledger round trip failed;
// the caller surfaces it, never hides it.
type CreateInvoiceResult struct {
	Invoice  model.Invoice `json:"invoice"`
	Fallback bool          `json:"fallback,omitempty"`
}

// CreateInvoice records a new receivable for the session identity. When a
// debtor address is known the invoice is minted through the ledger; without
// one there is nothing to put on chain, so the invoice is synthesized
// locally in pending state. A failed ledger round trip also falls back to
// local synthesis, flagged and reported, so creation never blocks the user.
func (r *Receivai) CreateInvoice(ctx context.Context, session Session, debtorName string, amount decimal.Decimal, dueDate time.Time, debtorAddress string) (*CreateInvoiceResult, error) {
	ctx, span := tracer.Start(ctx, "CreateInvoice")
	defer span.End()

	if err := validateNewInvoice(debtorName, amount, dueDate, r.now()); err != nil {
		return nil, err
	}

	if debtorAddress == "" {
		invoice, err := r.synthesizeInvoice(ctx, session, debtorName, amount, dueDate, "")
		if err != nil {
			return nil, logAndRecordError(span, "failed to persist invoice: ", err)
		}
		return &CreateInvoiceResult{Invoice: *invoice}, nil
	}

	invoice, err := r.mintInvoice(ctx, session, debtorName, amount, dueDate, debtorAddress)
	if err == nil {
		return &CreateInvoiceResult{Invoice: *invoice}, nil
	}

	span.RecordError(err)
	notification.NotifyError(fmt.Errorf("invoice mint failed, falling back to local record: %w", err))

	invoice, fErr := r.synthesizeInvoice(ctx, session, debtorName, amount, dueDate, debtorAddress)
	if fErr != nil {
		return nil, logAndRecordError(span, "fallback persistence failed: ", fErr)
	}
	return &CreateInvoiceResult{Invoice: *invoice, Fallback: true}, nil
}

func validateNewInvoice(debtorName string, amount decimal.Decimal, dueDate, now time.Time) error {
	if debtorName == "" {
		return apierror.NewAPIError(apierror.ErrMissingRequiredField, "debtor name is required")
	}
	if !amount.IsPositive() {
		return apierror.NewAPIError(apierror.ErrInvalidAmount, "invoice amount must be positive, got "+amount.String())
	}
	if !dueDate.After(now) {
		return apierror.NewAPIError(apierror.ErrInvalidDate, "due date must be in the future")
	}
	return nil
}

// mintInvoice runs the full ledger round trip: mint, sign, submit, then
// reload the authoritative record.
func (r *Receivai) mintInvoice(ctx context.Context, session Session, debtorName string, amount decimal.Decimal, dueDate time.Time, debtorAddress string) (*model.Invoice, error) {
	tx, err := r.ledger.Mint(ctx, ledger.MintParams{
		Issuer:        session.Identity,
		DebtorName:    debtorName,
		DebtorAddress: debtorAddress,
		Amount:        amount,
		DueDate:       dueDate,
	})
	if err != nil {
		return nil, err
	}
	if err := r.signAndSubmit(ctx, session, tx); err != nil {
		return nil, err
	}

	invoice, err := r.reloadMinted(ctx, session, tx.InvoiceID, debtorName)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// reloadMinted fetches the invoice the confirmed mint created. The local
// strategy knows the id up front; the remote contract assigns it at
// confirmation, so without one we resync the issuer's invoices and take the
// newest.
func (r *Receivai) reloadMinted(ctx context.Context, session Session, invoiceID, debtorName string) (*model.Invoice, error) {
	if invoiceID != "" {
		if err := r.syncInvoice(ctx, session.Identity, invoiceID, debtorName); err != nil {
			return nil, err
		}
		return r.GetInvoice(ctx, session, invoiceID)
	}

	invoices, err := r.syncIssuerInvoices(ctx, session, map[string]string{})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceNotFound, "minted invoice did not appear on reload")
	}
	newest := invoices[0]
	for _, inv := range invoices[1:] {
		if inv.CreatedAt.After(newest.CreatedAt) {
			newest = inv
		}
	}
	if debtorName != "" && newest.DebtorName == "" {
		newest.DebtorName = debtorName
		if err := r.storeInvoice(ctx, session.Identity, newest); err != nil {
			return nil, err
		}
	}
	return &newest, nil
}

// synthesizeInvoice creates a pending invoice directly in the snapshot
// store, bypassing the ledger.
func (r *Receivai) synthesizeInvoice(ctx context.Context, session Session, debtorName string, amount decimal.Decimal, dueDate time.Time, debtorAddress string) (*model.Invoice, error) {
	invoice := model.Invoice{
		InvoiceID:     model.GenerateInvoiceID(),
		DebtorName:    debtorName,
		DebtorAddress: debtorAddress,
		IssuerAddress: session.Identity,
		HolderAddress: session.Identity,
		Amount:        amount,
		DueDate:       dueDate,
		Status:        model.StatusPending,
		CreatedAt:     r.now(),
	}
	if err := r.storeInvoice(ctx, session.Identity, invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateStatus applies a lifecycle transition to an invoice in the session
// identity's snapshot. An illegal transition returns a typed error and
// leaves the invoice untouched, so replaying an already-applied transition
// fails cleanly.
func (r *Receivai) UpdateStatus(ctx context.Context, session Session, invoiceID string, newStatus model.InvoiceStatus) (*model.Invoice, error) {
	ctx, span := tracer.Start(ctx, "UpdateStatus")
	defer span.End()

	invoices, err := r.datasource.LoadSnapshot(ctx, session.Identity)
	if err != nil {
		return nil, logAndRecordError(span, "failed to load snapshot: ", err)
	}
	idx := indexOfInvoice(invoices, invoiceID)
	if idx < 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" not found")
	}

	current := invoices[idx]
	if !model.CanTransition(current.Status, newStatus) {
		return nil, apierror.NewAPIError(apierror.ErrInvalidStatusTransition,
			fmt.Sprintf("cannot transition invoice %s from %s to %s", invoiceID, current.Status, newStatus))
	}

	invoices[idx].Status = newStatus
	invoices[idx].Stamp(newStatus, r.now())
	if err := r.datasource.SaveSnapshot(ctx, session.Identity, invoices); err != nil {
		return nil, logAndRecordError(span, "failed to persist snapshot: ", err)
	}
	return &invoices[idx], nil
}

// GetInvoice returns one invoice from the session identity's snapshot.
func (r *Receivai) GetInvoice(ctx context.Context, session Session, invoiceID string) (*model.Invoice, error) {
	invoices, err := r.datasource.LoadSnapshot(ctx, session.Identity)
	if err != nil {
		return nil, err
	}
	idx := indexOfInvoice(invoices, invoiceID)
	if idx < 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" not found")
	}
	return &invoices[idx], nil
}

// GetByStatus returns the session identity's invoices in the given
// lifecycle state.
func (r *Receivai) GetByStatus(ctx context.Context, session Session, status model.InvoiceStatus) ([]model.Invoice, error) {
	invoices, err := r.datasource.LoadSnapshot(ctx, session.Identity)
	if err != nil {
		return nil, err
	}
	matched := make([]model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status == status {
			matched = append(matched, inv)
		}
	}
	return matched, nil
}

// GetInvoices returns the session identity's full snapshot.
func (r *Receivai) GetInvoices(ctx context.Context, session Session) ([]model.Invoice, error) {
	return r.datasource.LoadSnapshot(ctx, session.Identity)
}

// FindInvoice locates an invoice regardless of which identity issued it,
// returning the invoice and the owning identity. It backs the shareable
// verification link, which a debtor opens without having a snapshot of
// their own.
func (r *Receivai) FindInvoice(ctx context.Context, invoiceID string) (*model.Invoice, string, error) {
	return r.datasource.FindInvoiceAcrossIdentities(ctx, invoiceID)
}

// storeInvoice upserts one invoice into an identity's snapshot and writes
// the whole snapshot back.
func (r *Receivai) storeInvoice(ctx context.Context, identity string, invoice model.Invoice) error {
	invoices, err := r.datasource.LoadSnapshot(ctx, identity)
	if err != nil {
		return err
	}
	if idx := indexOfInvoice(invoices, invoice.InvoiceID); idx >= 0 {
		invoices[idx] = invoice
	} else {
		invoices = append(invoices, invoice)
	}
	return r.datasource.SaveSnapshot(ctx, identity, invoices)
}

// syncInvoice refreshes one invoice in an identity's snapshot from the
// ledger. Ledger records carry no debtor name, so the previously stored one
// (or the supplied one) is preserved.
func (r *Receivai) syncInvoice(ctx context.Context, identity, invoiceID, debtorName string) error {
	fresh := r.ledger.GetInvoice(ctx, invoiceID)
	if fresh == nil {
		// Best-effort read came back empty; keep local state.
		return nil
	}
	invoices, err := r.datasource.LoadSnapshot(ctx, identity)
	if err != nil {
		return err
	}
	idx := indexOfInvoice(invoices, invoiceID)
	if idx >= 0 {
		if fresh.DebtorName == "" {
			fresh.DebtorName = invoices[idx].DebtorName
		}
		carryStamps(fresh, invoices[idx])
	} else if fresh.DebtorName == "" {
		fresh.DebtorName = debtorName
	}
	// The contract records no stage timestamps past verification; stamp the
	// current stage the first time it is observed.
	fresh.Stamp(fresh.Status, r.now())
	if idx >= 0 {
		invoices[idx] = *fresh
	} else {
		invoices = append(invoices, *fresh)
	}
	return r.datasource.SaveSnapshot(ctx, identity, invoices)
}

// syncIssuerInvoices refreshes the session identity's whole snapshot from
// the ledger, preserving debtor names the ledger does not carry.
// debtorNames maps invoice id to name for invoices not yet in the snapshot.
func (r *Receivai) syncIssuerInvoices(ctx context.Context, session Session, debtorNames map[string]string) ([]model.Invoice, error) {
	existing, err := r.datasource.LoadSnapshot(ctx, session.Identity)
	if err != nil {
		return nil, err
	}

	fresh := r.ledger.GetInvoicesByIssuer(ctx, session.Identity)
	if len(fresh) == 0 {
		// Best-effort read came back empty; keep local state.
		return existing, nil
	}

	names := make(map[string]string, len(existing)+len(debtorNames))
	for id, name := range debtorNames {
		names[id] = name
	}
	byID := make(map[string]model.Invoice, len(existing))
	for _, inv := range existing {
		byID[inv.InvoiceID] = inv
		if inv.DebtorName != "" {
			names[inv.InvoiceID] = inv.DebtorName
		}
	}
	for i := range fresh {
		if fresh[i].DebtorName == "" {
			fresh[i].DebtorName = names[fresh[i].InvoiceID]
		}
		if prev, ok := byID[fresh[i].InvoiceID]; ok {
			carryStamps(&fresh[i], prev)
		}
		fresh[i].Stamp(fresh[i].Status, r.now())
	}

	if err := r.datasource.SaveSnapshot(ctx, session.Identity, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// carryStamps keeps locally recorded stage timestamps the contract does not
// track. Set-once semantics hold: an already-present stamp on the fresh
// record wins.
func carryStamps(fresh *model.Invoice, prev model.Invoice) {
	if fresh.VerifiedAt == nil {
		fresh.VerifiedAt = prev.VerifiedAt
	}
	if fresh.ListedAt == nil {
		fresh.ListedAt = prev.ListedAt
	}
	if fresh.SoldAt == nil {
		fresh.SoldAt = prev.SoldAt
	}
	if fresh.SettledAt == nil {
		fresh.SettledAt = prev.SettledAt
	}
	if fresh.SoldPrice == nil {
		fresh.SoldPrice = prev.SoldPrice
	}
}

func indexOfInvoice(invoices []model.Invoice, invoiceID string) int {
	for i := range invoices {
		if invoices[i].InvoiceID == invoiceID {
			return i
		}
	}
	return -1
}
