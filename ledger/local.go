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

package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/receivai/receivai/database"
	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// LocalClient is the demo-mode strategy. Mutating calls prepare a synthetic
// transaction payload describing the operation; Submit decodes and applies
// it to the persisted snapshot store, enforcing the same invariants the
// contract enforces on chain (status gates, actor authorization, due-date
// checks, balance transfers). The local mutation is the confirmation.
type LocalClient struct {
	db database.IDataSource

	// Now is the clock used for lifecycle stamps; overridable in tests.
	Now func() time.Time
}

func NewLocalClient(db database.IDataSource) *LocalClient {
	return &LocalClient{db: db, Now: time.Now}
}

// demoOp is the payload of a synthetic demo transaction.
type demoOp struct {
	Op            string    `json:"op"`
	InvoiceID     string    `json:"invoice_id,omitempty"`
	Issuer        string    `json:"issuer,omitempty"`
	DebtorName    string    `json:"debtor_name,omitempty"`
	DebtorAddress string    `json:"debtor_address,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Price         string    `json:"price,omitempty"`
	DueDate       time.Time `json:"due_date,omitempty"`
}

func encodeOp(op demoOp) (*UnsignedTx, error) {
	payload, err := json.Marshal(op)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to encode demo transaction: "+err.Error())
	}
	return &UnsignedTx{Payload: string(payload), InvoiceID: op.InvoiceID}, nil
}

func (c *LocalClient) Mint(_ context.Context, params MintParams) (*UnsignedTx, error) {
	return encodeOp(demoOp{
		Op:            "mint",
		InvoiceID:     model.GenerateInvoiceID(),
		Issuer:        params.Issuer,
		DebtorName:    params.DebtorName,
		DebtorAddress: params.DebtorAddress,
		Amount:        params.Amount.String(),
		DueDate:       params.DueDate,
	})
}

func (c *LocalClient) Verify(_ context.Context, invoiceID, debtor string) (*UnsignedTx, error) {
	return encodeOp(demoOp{Op: "verify", InvoiceID: invoiceID, Actor: debtor})
}

func (c *LocalClient) List(_ context.Context, invoiceID, seller string, price decimal.Decimal) (*UnsignedTx, error) {
	return encodeOp(demoOp{Op: "list", InvoiceID: invoiceID, Actor: seller, Price: price.String()})
}

func (c *LocalClient) Buy(_ context.Context, invoiceID, buyer string) (*UnsignedTx, error) {
	return encodeOp(demoOp{Op: "buy", InvoiceID: invoiceID, Actor: buyer})
}

func (c *LocalClient) Settle(_ context.Context, invoiceID, payer string) (*UnsignedTx, error) {
	return encodeOp(demoOp{Op: "settle", InvoiceID: invoiceID, Actor: payer})
}

// Submit applies a signed demo transaction to the snapshot store. The demo
// signing oracle passes payloads through unchanged, so the signed form still
// decodes as the operation it was built from.
func (c *LocalClient) Submit(ctx context.Context, signedPayload string) error {
	var op demoOp
	if err := json.Unmarshal([]byte(signedPayload), &op); err != nil {
		return apierror.NewAPIError(apierror.ErrTransactionFailed, "malformed demo transaction: "+err.Error())
	}

	switch op.Op {
	case "mint":
		return c.applyMint(ctx, op)
	case "verify":
		return c.applyVerify(ctx, op)
	case "list":
		return c.applyList(ctx, op)
	case "buy":
		return c.applyBuy(ctx, op)
	case "settle":
		return c.applySettle(ctx, op)
	default:
		return apierror.NewAPIError(apierror.ErrTransactionFailed, "unknown demo transaction op "+op.Op)
	}
}

func (c *LocalClient) applyMint(ctx context.Context, op demoOp) error {
	amount, err := decimal.NewFromString(op.Amount)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidAmount, "mint amount: "+err.Error())
	}

	invoices, err := c.db.LoadSnapshot(ctx, op.Issuer)
	if err != nil {
		return err
	}

	invoices = append(invoices, model.Invoice{
		InvoiceID:     op.InvoiceID,
		DebtorName:    op.DebtorName,
		DebtorAddress: op.DebtorAddress,
		IssuerAddress: op.Issuer,
		HolderAddress: op.Issuer,
		Amount:        amount,
		DueDate:       op.DueDate,
		Status:        model.StatusPending,
		CreatedAt:     c.Now(),
	})
	return c.db.SaveSnapshot(ctx, op.Issuer, invoices)
}

func (c *LocalClient) applyVerify(ctx context.Context, op demoOp) error {
	invoices, idx, identity, err := c.findInvoice(ctx, op.InvoiceID)
	if err != nil {
		return err
	}
	inv := &invoices[idx]

	if inv.DebtorAddress != "" && op.Actor != inv.DebtorAddress {
		return apierror.NewAPIError(apierror.ErrUnauthorized, "only the designated debtor can verify")
	}
	if inv.Status != model.StatusPending {
		return apierror.NewAPIError(apierror.ErrInvalidStatusTransition, "invoice not pending")
	}

	now := c.Now()
	inv.Status = model.StatusVerified
	inv.Stamp(model.StatusVerified, now)
	if inv.DebtorAddress == "" {
		inv.DebtorAddress = op.Actor
	}
	return c.db.SaveSnapshot(ctx, identity, invoices)
}

func (c *LocalClient) applyList(ctx context.Context, op demoOp) error {
	price, err := decimal.NewFromString(op.Price)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidAmount, "listing price: "+err.Error())
	}

	invoices, idx, identity, err := c.findInvoice(ctx, op.InvoiceID)
	if err != nil {
		return err
	}
	inv := &invoices[idx]

	if inv.HolderAddress != "" && op.Actor != inv.HolderAddress {
		return apierror.NewAPIError(apierror.ErrUnauthorized, "not the owner of this invoice")
	}
	if inv.Status != model.StatusVerified {
		return apierror.NewAPIError(apierror.ErrInvalidStatusTransition, "invoice not verified")
	}

	now := c.Now()
	listing, err := model.NewListing(*inv, op.Actor, price, now)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidAmount, err.Error())
	}

	inv.Status = model.StatusListed
	inv.ListingPrice = &price
	inv.Stamp(model.StatusListed, now)
	listing.Invoice = *inv

	if err := c.db.SaveSnapshot(ctx, identity, invoices); err != nil {
		return err
	}
	return c.db.SaveListing(ctx, *listing)
}

func (c *LocalClient) applyBuy(ctx context.Context, op demoOp) error {
	listing, err := c.db.GetListing(ctx, op.InvoiceID)
	if err != nil {
		return err
	}
	if listing == nil {
		return apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice not listed")
	}

	invoices, idx, identity, err := c.findInvoice(ctx, op.InvoiceID)
	if err != nil {
		return err
	}
	inv := &invoices[idx]

	if inv.Status != model.StatusListed {
		return apierror.NewAPIError(apierror.ErrInvalidStatusTransition, "invoice not listed")
	}

	// Payment moves from the buyer to the seller at the ask price.
	if err := c.transfer(ctx, op.Actor, listing.Seller, listing.Price); err != nil {
		return err
	}

	now := c.Now()
	price := listing.Price
	inv.Status = model.StatusSold
	inv.SoldPrice = &price
	inv.HolderAddress = op.Actor
	inv.Stamp(model.StatusSold, now)

	if err := c.db.SaveSnapshot(ctx, identity, invoices); err != nil {
		return err
	}
	return c.db.DeleteListing(ctx, op.InvoiceID)
}

func (c *LocalClient) applySettle(ctx context.Context, op demoOp) error {
	invoices, idx, identity, err := c.findInvoice(ctx, op.InvoiceID)
	if err != nil {
		return err
	}
	inv := &invoices[idx]

	if op.Actor != inv.DebtorAddress {
		return apierror.NewAPIError(apierror.ErrUnauthorized, "only the original debtor can settle")
	}
	if inv.Status != model.StatusSold {
		return apierror.NewAPIError(apierror.ErrInvalidStatusTransition, "invoice not sold")
	}
	now := c.Now()
	if !inv.IsDue(now) {
		return apierror.NewAPIError(apierror.ErrInvoiceNotDue, "invoice not yet due")
	}

	// Settlement pays the current holder the full face amount.
	if err := c.transfer(ctx, op.Actor, inv.HolderAddress, inv.Amount); err != nil {
		return err
	}

	inv.Status = model.StatusSettled
	inv.Stamp(model.StatusSettled, now)
	return c.db.SaveSnapshot(ctx, identity, invoices)
}

// findInvoice locates an invoice across all persisted identities and returns
// the owning snapshot, the invoice's index within it, and the identity key.
func (c *LocalClient) findInvoice(ctx context.Context, invoiceID string) ([]model.Invoice, int, string, error) {
	_, identity, err := c.db.FindInvoiceAcrossIdentities(ctx, invoiceID)
	if err != nil {
		return nil, 0, "", err
	}
	invoices, err := c.db.LoadSnapshot(ctx, identity)
	if err != nil {
		return nil, 0, "", err
	}
	for i := range invoices {
		if invoices[i].InvoiceID == invoiceID {
			return invoices, i, identity, nil
		}
	}
	return nil, 0, "", apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" not found")
}

// transfer moves demo cash between identities. A missing balance row starts
// from the demo opening balance. The debit and credit are two separate
// writes with no transaction around them; a failure between them leaves the
// payer debited and the payee uncredited. Tolerable for demo balances only.
func (c *LocalClient) transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	fromBalance, ok, err := c.db.GetBalance(ctx, from)
	if err != nil {
		return err
	}
	if !ok {
		fromBalance = model.DemoOpeningBalance
	}
	if fromBalance.LessThan(amount) {
		return apierror.NewAPIError(apierror.ErrInsufficientBalance, "insufficient balance to cover "+amount.String())
	}

	toBalance, ok, err := c.db.GetBalance(ctx, to)
	if err != nil {
		return err
	}
	if !ok {
		toBalance = model.DemoOpeningBalance
	}

	if err := c.db.SaveBalance(ctx, from, fromBalance.Sub(amount)); err != nil {
		return err
	}
	return c.db.SaveBalance(ctx, to, toBalance.Add(amount))
}

func (c *LocalClient) GetInvoice(ctx context.Context, invoiceID string) *model.Invoice {
	invoice, _, err := c.db.FindInvoiceAcrossIdentities(ctx, invoiceID)
	if err != nil {
		logrus.WithField("invoice_id", invoiceID).Debugf("local invoice lookup failed: %v", err)
		return nil
	}
	return invoice
}

func (c *LocalClient) GetInvoicesByIssuer(ctx context.Context, issuer string) []model.Invoice {
	invoices, err := c.db.LoadSnapshot(ctx, issuer)
	if err != nil {
		logrus.Errorf("local snapshot load failed for %s: %v", issuer, err)
		return nil
	}
	return invoices
}

func (c *LocalClient) GetAllListings(ctx context.Context) []model.MarketplaceListing {
	listings, err := c.db.GetAllListings(ctx)
	if err != nil {
		logrus.Errorf("local listings load failed: %v", err)
		return nil
	}
	return listings
}
