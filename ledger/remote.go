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

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

const (
	txStatusPending = "pending"
	txStatusSuccess = "success"
	txStatusFailed  = "failed"
)

// RemoteClient executes invoice operations against the live contract through
// a JSON-RPC execution service. Mutating calls only build unsigned
// transaction payloads; nothing changes on the ledger until the signed
// payload goes through Submit.
type RemoteClient struct {
	transport    *rpcTransport
	contractID   string
	pollInterval time.Duration
	maxAttempts  int
}

// NewRemoteClient builds a live-mode client for the contract at contractID,
// reachable through the execution service at rpcURL. pollInterval and
// maxAttempts bound how long Submit waits for transaction confirmation.
func NewRemoteClient(rpcURL, contractID string, pollInterval time.Duration, maxAttempts int) *RemoteClient {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	return &RemoteClient{
		transport:    newRPCTransport(rpcURL, 0),
		contractID:   contractID,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

type prepareResult struct {
	Payload string `json:"payload"`
}

type submitResult struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// prepare asks the execution service to build an unsigned transaction
// invoking method on the contract with the given arguments.
func (c *RemoteClient) prepare(ctx context.Context, invoiceID, method string, args ...interface{}) (*UnsignedTx, error) {
	raw, err := c.transport.call(ctx, "tx.prepare", map[string]interface{}{
		"contract_id": c.contractID,
		"method":      method,
		"args":        args,
	})
	if err != nil {
		return nil, apierror.ParseError(err)
	}
	var result prepareResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrRPC,
			errors.Wrap(err, "decoding tx.prepare result").Error())
	}
	if result.Payload == "" {
		return nil, apierror.NewAPIError(apierror.ErrRPC, "tx.prepare returned an empty payload")
	}
	return &UnsignedTx{Payload: result.Payload, InvoiceID: invoiceID}, nil
}

// Mint builds an unsigned transaction creating a new invoice on the
// contract. The contract assigns the invoice id when the transaction is
// confirmed, so the returned InvoiceID is empty; callers reload state after
// Submit to pick it up.
func (c *RemoteClient) Mint(ctx context.Context, params MintParams) (*UnsignedTx, error) {
	return c.prepare(ctx, "", "mint",
		params.Issuer,
		params.DebtorAddress,
		ToLedgerUnits(params.Amount),
		params.DueDate.Unix(),
	)
}

// Verify builds an unsigned transaction with which the designated debtor
// acknowledges the invoice.
func (c *RemoteClient) Verify(ctx context.Context, invoiceID, debtor string) (*UnsignedTx, error) {
	n, err := ParseRemoteInvoiceID(invoiceID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInvoiceID, err.Error())
	}
	return c.prepare(ctx, invoiceID, "verify", n, debtor)
}

// List builds an unsigned transaction placing the invoice on the
// marketplace at the given price.
func (c *RemoteClient) List(ctx context.Context, invoiceID, seller string, price decimal.Decimal) (*UnsignedTx, error) {
	n, err := ParseRemoteInvoiceID(invoiceID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInvoiceID, err.Error())
	}
	return c.prepare(ctx, invoiceID, "list", n, seller, ToLedgerUnits(price))
}

// Buy builds an unsigned transaction purchasing a listed invoice.
func (c *RemoteClient) Buy(ctx context.Context, invoiceID, buyer string) (*UnsignedTx, error) {
	n, err := ParseRemoteInvoiceID(invoiceID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInvoiceID, err.Error())
	}
	return c.prepare(ctx, invoiceID, "buy", n, buyer)
}

// Settle builds an unsigned transaction with which the debtor pays the
// invoice's face value to its current holder.
func (c *RemoteClient) Settle(ctx context.Context, invoiceID, payer string) (*UnsignedTx, error) {
	n, err := ParseRemoteInvoiceID(invoiceID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInvoiceID, err.Error())
	}
	return c.prepare(ctx, invoiceID, "settle", n, payer)
}

// Submit sends a signed transaction payload and blocks until the network
// reports a terminal status. Confirmation is polled at a constant interval;
// running out of attempts is reported as a timeout, not a failure, since the
// transaction may still land.
func (c *RemoteClient) Submit(ctx context.Context, signedPayload string) error {
	raw, err := c.transport.call(ctx, "tx.submit", map[string]interface{}{
		"payload": signedPayload,
	})
	if err != nil {
		return apierror.ParseError(err)
	}
	var result submitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return apierror.NewAPIError(apierror.ErrRPC,
			errors.Wrap(err, "decoding tx.submit result").Error())
	}

	switch result.Status {
	case txStatusSuccess:
		return nil
	case txStatusFailed:
		return apierror.ParseError(errors.Errorf("transaction failed: %s", result.Error))
	case txStatusPending:
		return c.waitForConfirmation(ctx, result.Hash)
	default:
		// Anything else the network reports up front is terminal; polling
		// would never resolve it.
		return apierror.ParseError(
			errors.Errorf("transaction %s rejected with status %q: %s", result.Hash, result.Status, result.Error))
	}
}

func (c *RemoteClient) waitForConfirmation(ctx context.Context, hash string) error {
	poll := func() error {
		raw, err := c.transport.call(ctx, "tx.status", map[string]interface{}{
			"hash": hash,
		})
		if err != nil {
			// Transient; the next attempt may reach the service.
			return err
		}
		var result submitResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return err
		}
		switch result.Status {
		case txStatusSuccess:
			return nil
		case txStatusFailed:
			return backoff.Permanent(apierror.ParseError(
				errors.Errorf("transaction %s failed: %s", hash, result.Error)))
		default:
			return errors.Errorf("transaction %s still pending", hash)
		}
	}

	// maxAttempts counts status polls; WithMaxRetries counts retries after
	// the first call, hence the -1.
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.pollInterval), uint64(c.maxAttempts-1)),
		ctx,
	)
	err := backoff.Retry(poll, bo)
	if err == nil {
		return nil
	}
	var apiErr apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apierror.NewAPIError(apierror.ErrTransactionTimeout,
		errors.Wrapf(err, "transaction %s unconfirmed after %d attempts", hash, c.maxAttempts).Error())
}

// simulate runs a read-only contract invocation and returns the raw result.
func (c *RemoteClient) simulate(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	return c.transport.call(ctx, "contract.simulate", map[string]interface{}{
		"contract_id": c.contractID,
		"method":      method,
		"args":        args,
	})
}

// GetInvoice reads a single invoice from the contract. Reads are
// best-effort: any failure is logged and reported as absence.
func (c *RemoteClient) GetInvoice(ctx context.Context, invoiceID string) *model.Invoice {
	n, err := ParseRemoteInvoiceID(invoiceID)
	if err != nil {
		logrus.Warnf("remote ledger: %v", err)
		return nil
	}
	raw, err := c.simulate(ctx, "get_invoice", n)
	if err != nil {
		logrus.Warnf("remote ledger: reading invoice %s: %v", invoiceID, err)
		return nil
	}
	var record remoteInvoice
	if err := json.Unmarshal(raw, &record); err != nil {
		logrus.Warnf("remote ledger: decoding invoice %s: %v", invoiceID, err)
		return nil
	}
	inv, err := record.toModel()
	if err != nil {
		logrus.Warnf("remote ledger: %v", err)
		return nil
	}
	return &inv
}

// GetInvoicesByIssuer reads every invoice issued by the given address.
// Failures yield an empty result; malformed records are dropped
// individually so one bad row cannot hide the rest.
func (c *RemoteClient) GetInvoicesByIssuer(ctx context.Context, issuer string) []model.Invoice {
	raw, err := c.simulate(ctx, "get_invoices_by_issuer", issuer)
	if err != nil {
		logrus.Warnf("remote ledger: reading invoices for %s: %v", issuer, err)
		return nil
	}
	var records []remoteInvoice
	if err := json.Unmarshal(raw, &records); err != nil {
		logrus.Warnf("remote ledger: decoding invoices for %s: %v", issuer, err)
		return nil
	}
	invoices := make([]model.Invoice, 0, len(records))
	for _, record := range records {
		inv, err := record.toModel()
		if err != nil {
			logrus.Warnf("remote ledger: %v", err)
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices
}

// GetAllListings reads the full marketplace state from the contract.
func (c *RemoteClient) GetAllListings(ctx context.Context) []model.MarketplaceListing {
	raw, err := c.simulate(ctx, "get_all_listings")
	if err != nil {
		logrus.Warnf("remote ledger: reading listings: %v", err)
		return nil
	}
	var records []remoteListing
	if err := json.Unmarshal(raw, &records); err != nil {
		logrus.Warnf("remote ledger: decoding listings: %v", err)
		return nil
	}
	listings := make([]model.MarketplaceListing, 0, len(records))
	for _, record := range records {
		listing, err := record.toModel()
		if err != nil {
			logrus.Warnf("remote ledger: %v", err)
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}
