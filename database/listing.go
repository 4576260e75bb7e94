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
	"database/sql"
	"encoding/json"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// SaveListing upserts an active listing. The invoice id is the key: at most
// one active listing exists per invoice.
func (d Datasource) SaveListing(ctx context.Context, listing model.MarketplaceListing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrUnknown, "failed to marshal listing: "+err.Error())
	}

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO listings (invoice_id, data, listed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT(invoice_id) DO UPDATE SET data = $2, listed_at = $3
	`, listing.InvoiceID, data, listing.ListedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrUnknown, "failed to save listing: "+err.Error())
	}
	return nil
}

// DeleteListing removes a listing from the active set. Removing a listing
// that does not exist is not an error.
func (d Datasource) DeleteListing(ctx context.Context, invoiceID string) error {
	_, err := d.Conn.ExecContext(ctx, `
		DELETE FROM listings WHERE invoice_id = $1
	`, invoiceID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrUnknown, "failed to delete listing: "+err.Error())
	}
	return nil
}

func (d Datasource) GetListing(ctx context.Context, invoiceID string) (*model.MarketplaceListing, error) {
	var data []byte
	err := d.Conn.QueryRowContext(ctx, `
		SELECT data FROM listings WHERE invoice_id = $1
	`, invoiceID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to load listing: "+err.Error())
	}

	var listing model.MarketplaceListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to unmarshal listing: "+err.Error())
	}
	return &listing, nil
}

func (d Datasource) GetAllListings(ctx context.Context) ([]model.MarketplaceListing, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT data FROM listings ORDER BY listed_at ASC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to load listings: "+err.Error())
	}
	defer rows.Close()

	listings := []model.MarketplaceListing{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to scan listing row: "+err.Error())
		}
		var listing model.MarketplaceListing
		if err := json.Unmarshal(data, &listing); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to unmarshal listing: "+err.Error())
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "error iterating listings: "+err.Error())
	}
	return listings, nil
}
