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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// TestDemoLifecycle drives one invoice through its entire life: created
// pending, verified by the debtor, listed at a discount, bought by an
// investor, settled at face value after maturity.
func TestDemoLifecycle(t *testing.T) {
	clock := newFakeClock(testStart)
	store, db := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	debtor := NewDemoSession("GDEBTOR")
	investor := NewDemoSession("GINVESTOR")

	// Fund the participants beyond the demo opening balance so the money
	// legs clear.
	require.NoError(t, db.SaveBalance(ctx, "GINVESTOR", decimal.NewFromInt(100000)))
	require.NoError(t, db.SaveBalance(ctx, "GDEBTOR", decimal.NewFromInt(60000)))

	// Create: 50,000 due in 30 days.
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "GDEBTOR")
	require.NoError(t, err)
	id := created.Invoice.InvoiceID
	assert.Equal(t, model.StatusPending, created.Invoice.Status)

	// Verify: only the designated debtor may acknowledge.
	verified, err := store.VerifyInvoice(ctx, debtor, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)

	// List at 48,000: a 4% discount on face value.
	listing, err := store.ListInvoice(ctx, seller, id, decimal.NewFromInt(48000))
	require.NoError(t, err)
	assert.True(t, listing.Discount.Equal(decimal.NewFromInt(4)), "discount %s", listing.Discount)
	assert.True(t, listing.Yield.GreaterThan(decimal.Zero))

	listed, err := store.GetInvoice(ctx, seller, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusListed, listed.Status)
	require.NotNil(t, listed.ListingPrice)
	assert.True(t, listed.ListingPrice.Equal(decimal.NewFromInt(48000)))

	// Buy: the investor pays the ask, the listing leaves the marketplace.
	sold, err := store.BuyInvoice(ctx, investor, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSold, sold.Status)
	require.NotNil(t, sold.SoldPrice)
	assert.True(t, sold.SoldPrice.Equal(decimal.NewFromInt(48000)))
	assert.Equal(t, "GINVESTOR", sold.HolderAddress)

	gone, err := db.GetListing(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)

	investorBalance, _, err := db.GetBalance(ctx, "GINVESTOR")
	require.NoError(t, err)
	assert.True(t, investorBalance.Equal(decimal.NewFromInt(52000)), "investor balance %s", investorBalance)
	sellerBalance, _, err := db.GetBalance(ctx, "GSELLER")
	require.NoError(t, err)
	assert.True(t, sellerBalance.Equal(decimal.NewFromInt(56000)), "seller balance %s", sellerBalance)

	// Settle: the debtor pays face value to the holder once due.
	clock.Advance(31 * 24 * time.Hour)
	settled, err := store.SettleInvoice(ctx, debtor, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSettled, settled.Status)
	require.NotNil(t, settled.SettledAt)

	investorBalance, _, err = db.GetBalance(ctx, "GINVESTOR")
	require.NoError(t, err)
	assert.True(t, investorBalance.Equal(decimal.NewFromInt(102000)), "investor balance %s", investorBalance)
	debtorBalance, _, err := db.GetBalance(ctx, "GDEBTOR")
	require.NoError(t, err)
	assert.True(t, debtorBalance.Equal(decimal.NewFromInt(10000)), "debtor balance %s", debtorBalance)

	// Settled is terminal.
	_, err = store.UpdateStatus(ctx, seller, id, model.StatusPending)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvalidStatusTransition))
}

func TestVerifyInvoice_OnlyDesignatedDebtor(t *testing.T) {
	clock := newFakeClock(testStart)
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "GDEBTOR")
	require.NoError(t, err)

	stranger := NewDemoSession("GSTRANGER")
	_, err = store.VerifyInvoice(ctx, stranger, created.Invoice.InvoiceID)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))
}

func TestVerifyInvoice_AdoptsVerifierWhenNoDebtorAddress(t *testing.T) {
	clock := newFakeClock(testStart)
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "")
	require.NoError(t, err)

	debtor := NewDemoSession("GDEBTOR")
	verified, err := store.VerifyInvoice(ctx, debtor, created.Invoice.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, verified.Status)
	assert.Equal(t, "GDEBTOR", verified.DebtorAddress)
}

func TestListInvoice_RequiresVerified(t *testing.T) {
	clock := newFakeClock(testStart)
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "")
	require.NoError(t, err)

	_, err = store.ListInvoice(ctx, seller, created.Invoice.InvoiceID, decimal.NewFromInt(48000))
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvalidStatusTransition))
}

func TestListInvoice_RejectsPriceAtOrAboveFace(t *testing.T) {
	clock := newFakeClock(testStart)
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "")
	require.NoError(t, err)
	id := created.Invoice.InvoiceID
	_, err = store.UpdateStatus(ctx, seller, id, model.StatusVerified)
	require.NoError(t, err)

	_, err = store.ListInvoice(ctx, seller, id, decimal.NewFromInt(50000))
	assert.ErrorIs(t, err, model.ErrInvalidListingPrice)

	_, err = store.ListInvoice(ctx, seller, id, decimal.NewFromInt(60000))
	assert.ErrorIs(t, err, model.ErrInvalidListingPrice)

	_, err = store.ListInvoice(ctx, seller, id, decimal.Zero)
	assert.ErrorIs(t, err, model.ErrInvalidListingPrice)
}

func TestBuyInvoice_RequiresActiveListing(t *testing.T) {
	clock := newFakeClock(testStart)
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "")
	require.NoError(t, err)

	investor := NewDemoSession("GINVESTOR")
	_, err = store.BuyInvoice(ctx, investor, created.Invoice.InvoiceID)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvoiceNotFound))
}

func TestBuyInvoice_InsufficientBalance(t *testing.T) {
	clock := newFakeClock(testStart)
	store, _ := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "GDEBTOR")
	require.NoError(t, err)
	id := created.Invoice.InvoiceID

	debtor := NewDemoSession("GDEBTOR")
	_, err = store.VerifyInvoice(ctx, debtor, id)
	require.NoError(t, err)
	_, err = store.ListInvoice(ctx, seller, id, decimal.NewFromInt(48000))
	require.NoError(t, err)

	// The investor only has the demo opening balance.
	investor := NewDemoSession("GINVESTOR")
	_, err = store.BuyInvoice(ctx, investor, id)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInsufficientBalance))
}

func TestSettleInvoice_Preconditions(t *testing.T) {
	clock := newFakeClock(testStart)
	store, db := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	debtor := NewDemoSession("GDEBTOR")
	investor := NewDemoSession("GINVESTOR")
	require.NoError(t, db.SaveBalance(ctx, "GINVESTOR", decimal.NewFromInt(100000)))
	require.NoError(t, db.SaveBalance(ctx, "GDEBTOR", decimal.NewFromInt(60000)))

	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "GDEBTOR")
	require.NoError(t, err)
	id := created.Invoice.InvoiceID

	// Not sold yet.
	_, err = store.SettleInvoice(ctx, debtor, id)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvalidStatusTransition))

	_, err = store.VerifyInvoice(ctx, debtor, id)
	require.NoError(t, err)
	_, err = store.ListInvoice(ctx, seller, id, decimal.NewFromInt(48000))
	require.NoError(t, err)
	_, err = store.BuyInvoice(ctx, investor, id)
	require.NoError(t, err)

	// Not due yet.
	_, err = store.SettleInvoice(ctx, debtor, id)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvoiceNotDue))

	// Wrong payer.
	clock.Advance(31 * 24 * time.Hour)
	_, err = store.SettleInvoice(ctx, investor, id)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrUnauthorized))

	// Settles once, then reports already settled.
	_, err = store.SettleInvoice(ctx, debtor, id)
	require.NoError(t, err)
	_, err = store.SettleInvoice(ctx, debtor, id)
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvoiceAlreadySettled))
}

// A purchase must leave a complete sale record in both parties' snapshots:
// the buyer sees the invoice in their portfolio, and both copies carry the
// sale price and timestamp.
func TestBuyInvoice_RecordsSaleForBuyer(t *testing.T) {
	clock := newFakeClock(testStart)
	store, db := newTestStore(t, clock)
	ctx := context.Background()

	seller := NewDemoSession("GSELLER")
	debtor := NewDemoSession("GDEBTOR")
	investor := NewDemoSession("GINVESTOR")
	require.NoError(t, db.SaveBalance(ctx, "GINVESTOR", decimal.NewFromInt(100000)))

	created, err := store.CreateInvoice(ctx, seller, "Acme Corp", decimal.NewFromInt(50000), testStart.AddDate(0, 0, 30), "GDEBTOR")
	require.NoError(t, err)
	id := created.Invoice.InvoiceID
	_, err = store.VerifyInvoice(ctx, debtor, id)
	require.NoError(t, err)
	_, err = store.ListInvoice(ctx, seller, id, decimal.NewFromInt(48000))
	require.NoError(t, err)
	_, err = store.BuyInvoice(ctx, investor, id)
	require.NoError(t, err)

	for _, identity := range []string{"GSELLER", "GINVESTOR"} {
		snapshot, err := db.LoadSnapshot(ctx, identity)
		require.NoError(t, err)
		idx := -1
		for i := range snapshot {
			if snapshot[i].InvoiceID == id {
				idx = i
			}
		}
		require.GreaterOrEqual(t, idx, 0, "invoice missing from %s snapshot", identity)
		inv := snapshot[idx]
		assert.Equal(t, model.StatusSold, inv.Status, identity)
		assert.Equal(t, "GINVESTOR", inv.HolderAddress, identity)
		require.NotNil(t, inv.SoldPrice, identity)
		assert.True(t, inv.SoldPrice.Equal(decimal.NewFromInt(48000)), "%s sold price %s", identity, inv.SoldPrice)
		require.NotNil(t, inv.SoldAt, identity)
	}
}

// Ledger records carry no stage timestamps past verification; syncing a
// stage the snapshot has never seen stamps it with the current clock.
func TestSyncInvoice_StampsObservedStage(t *testing.T) {
	clock := newFakeClock(testStart)
	store, db := newTestStore(t, clock)
	ctx := context.Background()

	price := decimal.NewFromInt(48000)
	require.NoError(t, db.SaveSnapshot(ctx, "GSELLER", []model.Invoice{{
		InvoiceID:     "INV-000042",
		DebtorName:    "Acme Corp",
		DebtorAddress: "GDEBTOR",
		IssuerAddress: "GSELLER",
		HolderAddress: "GINVESTOR",
		Amount:        decimal.NewFromInt(50000),
		DueDate:       testStart.AddDate(0, 0, 30),
		Status:        model.StatusSold,
		CreatedAt:     testStart,
		SoldPrice:     &price,
	}}))

	require.NoError(t, store.syncInvoice(ctx, "GSELLER", "INV-000042", ""))

	snapshot, err := db.LoadSnapshot(ctx, "GSELLER")
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.NotNil(t, snapshot[0].SoldAt)
	assert.True(t, snapshot[0].SoldAt.Equal(testStart))
	assert.Nil(t, snapshot[0].SettledAt)
}
