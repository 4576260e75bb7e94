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

// Package ledger abstracts the invoice contract ledger behind one client
// interface with two strategies: a local strategy that operates purely
// against the persisted snapshot store (demo mode), and a remote strategy
// that talks to a contract execution service over JSON-RPC (live mode). The
// strategy is selected once at construction; nothing above this package
// branches on a mode flag.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/model"
)

// UnsignedTx is a prepared transaction payload awaiting an external
// signature. Building one never mutates ledger state; the caller passes the
// payload through the signing oracle and submits the signed form.
type UnsignedTx struct {
	Payload string `json:"payload"`
	// InvoiceID is set on mint transactions so the caller can correlate the
	// invoice the transaction will create.
	InvoiceID string `json:"invoice_id,omitempty"`
}

// MintParams carries everything needed to mint a new invoice. DebtorName is
// display-only and never crosses the contract boundary.
type MintParams struct {
	Issuer        string
	DebtorName    string
	DebtorAddress string
	Amount        decimal.Decimal
	DueDate       time.Time
}

// Client is the operation set of the invoice contract. Mutating calls return
// unsigned transactions; Submit drives a signed payload to a terminal state.
// Read calls are best-effort: a failed read returns an empty result, never an
// error, so callers can always fall back to local state.
type Client interface {
	Mint(ctx context.Context, params MintParams) (*UnsignedTx, error)
	Verify(ctx context.Context, invoiceID, debtor string) (*UnsignedTx, error)
	List(ctx context.Context, invoiceID, seller string, price decimal.Decimal) (*UnsignedTx, error)
	Buy(ctx context.Context, invoiceID, buyer string) (*UnsignedTx, error)
	Settle(ctx context.Context, invoiceID, payer string) (*UnsignedTx, error)

	// Submit sends a signed payload and blocks until it reaches a terminal
	// state or the attempt budget is exhausted.
	Submit(ctx context.Context, signedPayload string) error

	GetInvoice(ctx context.Context, invoiceID string) *model.Invoice
	GetInvoicesByIssuer(ctx context.Context, issuer string) []model.Invoice
	GetAllListings(ctx context.Context) []model.MarketplaceListing
}
