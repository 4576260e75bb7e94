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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

func newTestDatasource(t *testing.T) Datasource {
	t.Helper()
	db, err := ConnectDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return Datasource{Conn: db}
}

func sampleInvoice(id string) model.Invoice {
	return model.Invoice{
		InvoiceID:     id,
		DebtorName:    "Mumbai Grand Hotel",
		IssuerAddress: "GISSUER",
		Amount:        decimal.NewFromInt(50000),
		DueDate:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:        model.StatusPending,
		CreatedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ds := newTestDatasource(t)
	ctx := context.Background()

	invoices := []model.Invoice{sampleInvoice("inv_1"), sampleInvoice("inv_2")}
	require.NoError(t, ds.SaveSnapshot(ctx, "GISSUER", invoices))

	loaded, err := ds.LoadSnapshot(ctx, "GISSUER")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "inv_1", loaded[0].InvoiceID)
	assert.True(t, loaded[0].Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, model.StatusPending, loaded[0].Status)
	assert.Nil(t, loaded[0].VerifiedAt)
}

func TestSnapshotUpsertReplacesWholeCollection(t *testing.T) {
	ds := newTestDatasource(t)
	ctx := context.Background()

	require.NoError(t, ds.SaveSnapshot(ctx, "GISSUER", []model.Invoice{sampleInvoice("inv_1"), sampleInvoice("inv_2")}))
	require.NoError(t, ds.SaveSnapshot(ctx, "GISSUER", []model.Invoice{sampleInvoice("inv_3")}))

	loaded, err := ds.LoadSnapshot(ctx, "GISSUER")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "inv_3", loaded[0].InvoiceID)
}

func TestLoadSnapshotMissingIdentity(t *testing.T) {
	ds := newTestDatasource(t)

	loaded, err := ds.LoadSnapshot(context.Background(), "GNOBODY")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestHasSnapshot(t *testing.T) {
	ds := newTestDatasource(t)
	ctx := context.Background()

	has, err := ds.HasSnapshot(ctx, "GISSUER")
	require.NoError(t, err)
	assert.False(t, has)

	// An empty snapshot still counts as persisted; the demo seeder must not
	// refill an identity that deliberately cleared its portfolio.
	require.NoError(t, ds.SaveSnapshot(ctx, "GISSUER", nil))

	has, err = ds.HasSnapshot(ctx, "GISSUER")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestFindInvoiceAcrossIdentities(t *testing.T) {
	ds := newTestDatasource(t)
	ctx := context.Background()

	require.NoError(t, ds.SaveSnapshot(ctx, "GALICE", []model.Invoice{sampleInvoice("inv_a")}))
	require.NoError(t, ds.SaveSnapshot(ctx, "GBOB", []model.Invoice{sampleInvoice("inv_b")}))

	invoice, identity, err := ds.FindInvoiceAcrossIdentities(ctx, "inv_b")
	require.NoError(t, err)
	assert.Equal(t, "inv_b", invoice.InvoiceID)
	assert.Equal(t, "GBOB", identity)

	_, _, err = ds.FindInvoiceAcrossIdentities(ctx, "inv_missing")
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.ErrInvoiceNotFound))
}

func TestListingLifecycle(t *testing.T) {
	ds := newTestDatasource(t)
	ctx := context.Background()

	invoice := sampleInvoice("inv_1")
	invoice.Status = model.StatusListed
	listing, err := model.NewListing(invoice, "GSELLER", decimal.NewFromInt(48000), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, ds.SaveListing(ctx, *listing))

	got, err := ds.GetListing(ctx, "inv_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "GSELLER", got.Seller)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(48000)))
	assert.Equal(t, "inv_1", got.Invoice.InvoiceID)

	all, err := ds.GetAllListings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, ds.DeleteListing(ctx, "inv_1"))

	got, err = ds.GetListing(ctx, "inv_1")
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err = ds.GetAllListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBalancePersistence(t *testing.T) {
	ds := newTestDatasource(t)
	ctx := context.Background()

	_, found, err := ds.GetBalance(ctx, "GINVESTOR")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ds.SaveBalance(ctx, "GINVESTOR", decimal.NewFromInt(100000)))

	amount, found, err := ds.GetBalance(ctx, "GINVESTOR")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, amount.Equal(decimal.NewFromInt(100000)))

	// Balances carry decimal fractions through the text column unchanged.
	fractional, _ := decimal.NewFromString("99999.1234567")
	require.NoError(t, ds.SaveBalance(ctx, "GINVESTOR", fractional))

	amount, found, err = ds.GetBalance(ctx, "GINVESTOR")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, amount.Equal(fractional))
}
