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

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// VerifyInvoice acknowledges a pending invoice as the debtor. The invoice is
// located across every identity's snapshot, since the debtor follows a
// shared link and owns no snapshot of their own. Invoices minted on the
// ledger are verified through it; an invoice created without a debtor
// address never reached the ledger, so its acknowledgment is recorded
// directly, adopting the verifier's address.
func (r *Receivai) VerifyInvoice(ctx context.Context, session Session, invoiceID string) (*model.Invoice, error) {
	ctx, span := tracer.Start(ctx, "VerifyInvoice")
	defer span.End()

	locker, err := r.acquireLock(ctx, invoiceID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire invoice lock: ", err)
	}
	defer r.releaseLock(ctx, locker)

	invoice, owner, err := r.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != model.StatusPending {
		return nil, apierror.NewAPIError(apierror.ErrInvalidStatusTransition,
			"invoice "+invoiceID+" is not pending verification, is "+string(invoice.Status))
	}

	if invoice.DebtorAddress == "" {
		return r.verifyLocally(ctx, session, owner, invoiceID)
	}
	if session.Identity != invoice.DebtorAddress {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "only the designated debtor can verify this invoice")
	}

	tx, err := r.ledger.Verify(ctx, invoiceID, session.Identity)
	if err != nil {
		return nil, logAndRecordError(span, "failed to build verification transaction: ", err)
	}
	if err := r.signAndSubmit(ctx, session, tx); err != nil {
		return nil, logAndRecordError(span, "verification submission failed: ", err)
	}

	if err := r.syncInvoice(ctx, owner, invoiceID, ""); err != nil {
		return nil, logAndRecordError(span, "failed to sync verified invoice: ", err)
	}
	invoice, _, err = r.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *Receivai) verifyLocally(ctx context.Context, session Session, owner, invoiceID string) (*model.Invoice, error) {
	invoices, err := r.datasource.LoadSnapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	idx := indexOfInvoice(invoices, invoiceID)
	if idx < 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" not found")
	}
	invoices[idx].Status = model.StatusVerified
	invoices[idx].Stamp(model.StatusVerified, r.now())
	if session.Identity != "" {
		invoices[idx].DebtorAddress = session.Identity
	}
	if err := r.datasource.SaveSnapshot(ctx, owner, invoices); err != nil {
		return nil, err
	}
	return &invoices[idx], nil
}

// SettleInvoice pays a sold invoice's face value to its current holder as
// the debtor. Settlement is only possible once the due date has been
// reached; the same checks the contract enforces are applied up front so a
// doomed transaction is never signed.
func (r *Receivai) SettleInvoice(ctx context.Context, session Session, invoiceID string) (*model.Invoice, error) {
	ctx, span := tracer.Start(ctx, "SettleInvoice")
	defer span.End()

	locker, err := r.acquireLock(ctx, invoiceID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire invoice lock: ", err)
	}
	defer r.releaseLock(ctx, locker)

	invoice, owner, err := r.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == model.StatusSettled {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceAlreadySettled, "invoice "+invoiceID+" is already settled")
	}
	if invoice.Status != model.StatusSold {
		return nil, apierror.NewAPIError(apierror.ErrInvalidStatusTransition,
			"invoice "+invoiceID+" must be sold before settlement, is "+string(invoice.Status))
	}
	if session.Identity != invoice.DebtorAddress {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "only the original debtor can settle this invoice")
	}
	if !invoice.IsDue(r.now()) {
		return nil, apierror.NewAPIError(apierror.ErrInvoiceNotDue, "invoice "+invoiceID+" has not reached its due date")
	}

	tx, err := r.ledger.Settle(ctx, invoiceID, session.Identity)
	if err != nil {
		return nil, logAndRecordError(span, "failed to build settlement transaction: ", err)
	}
	if err := r.signAndSubmit(ctx, session, tx); err != nil {
		return nil, logAndRecordError(span, "settlement submission failed: ", err)
	}

	if err := r.syncInvoice(ctx, owner, invoiceID, ""); err != nil {
		return nil, logAndRecordError(span, "failed to sync settled invoice: ", err)
	}
	invoice, _, err = r.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
