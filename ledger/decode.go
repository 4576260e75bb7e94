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
	"fmt"
	"time"

	"github.com/receivai/receivai/model"
)

// All parsing of loosely-typed contract results happens here, and only here.
// Anything that does not decode into the expected shape is an error at this
// boundary; the rest of the system never sees raw contract records.

// remoteInvoice is the wire shape of an invoice record returned by the
// contract execution service.
type remoteInvoice struct {
	ID           uint64 `json:"id"`
	Issuer       string `json:"issuer"`
	Debtor       string `json:"debtor"`
	Amount       string `json:"amount"`
	DueDate      int64  `json:"due_date"`
	Status       int    `json:"status"`
	CreatedAt    int64  `json:"created_at"`
	VerifiedAt   int64  `json:"verified_at"`
	ListingPrice string `json:"listing_price"`
	Holder       string `json:"current_holder"`
}

// remoteListing is the wire shape of a marketplace listing record.
type remoteListing struct {
	InvoiceID uint64 `json:"invoice_id"`
	Seller    string `json:"seller"`
	Price     string `json:"price"`
	ListedAt  int64  `json:"listed_at"`
}

// remoteStatuses maps the contract's numeric status codes onto the domain
// enum.
var remoteStatuses = map[int]model.InvoiceStatus{
	0: model.StatusPending,
	1: model.StatusVerified,
	2: model.StatusListed,
	3: model.StatusSold,
	4: model.StatusSettled,
}

func (r remoteInvoice) toModel() (model.Invoice, error) {
	status, ok := remoteStatuses[r.Status]
	if !ok {
		return model.Invoice{}, fmt.Errorf("invoice %d: unknown status code %d", r.ID, r.Status)
	}
	if r.Issuer == "" {
		return model.Invoice{}, fmt.Errorf("invoice %d: missing issuer", r.ID)
	}

	amount, err := FromLedgerUnits(r.Amount)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %d: %w", r.ID, err)
	}

	inv := model.Invoice{
		InvoiceID:     FormatRemoteInvoiceID(r.ID),
		DebtorAddress: r.Debtor,
		IssuerAddress: r.Issuer,
		HolderAddress: r.Holder,
		Amount:        amount,
		DueDate:       time.Unix(r.DueDate, 0).UTC(),
		Status:        status,
		CreatedAt:     time.Unix(r.CreatedAt, 0).UTC(),
	}

	if r.VerifiedAt > 0 {
		t := time.Unix(r.VerifiedAt, 0).UTC()
		inv.VerifiedAt = &t
	}
	if r.ListingPrice != "" && r.ListingPrice != "0" {
		price, err := FromLedgerUnits(r.ListingPrice)
		if err != nil {
			return model.Invoice{}, fmt.Errorf("invoice %d listing price: %w", r.ID, err)
		}
		// The contract keeps the accepted ask on the record after a sale,
		// so past the listed stage the price is the sale price.
		switch status {
		case model.StatusSold, model.StatusSettled:
			inv.SoldPrice = &price
		default:
			inv.ListingPrice = &price
		}
	}

	return inv, nil
}

func (r remoteListing) toModel() (model.MarketplaceListing, error) {
	price, err := FromLedgerUnits(r.Price)
	if err != nil {
		return model.MarketplaceListing{}, fmt.Errorf("listing %d: %w", r.InvoiceID, err)
	}
	return model.MarketplaceListing{
		InvoiceID: FormatRemoteInvoiceID(r.InvoiceID),
		Seller:    r.Seller,
		Price:     price,
		ListedAt:  time.Unix(r.ListedAt, 0).UTC(),
	}, nil
}
