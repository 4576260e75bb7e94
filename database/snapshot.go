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
	"time"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/model"
)

// SaveSnapshot writes the whole invoice collection for an identity in one
// statement. Date fields serialize as RFC 3339 inside the JSON document.
func (d Datasource) SaveSnapshot(ctx context.Context, identity string, invoices []model.Invoice) error {
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	doc, err := json.Marshal(invoices)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrUnknown, "failed to marshal invoice snapshot: "+err.Error())
	}

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO snapshots (identity, invoices, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT(identity) DO UPDATE SET invoices = $2, updated_at = $3
	`, identity, doc, time.Now())
	if err != nil {
		return apierror.NewAPIError(apierror.ErrUnknown, "failed to save invoice snapshot: "+err.Error())
	}
	return nil
}

// LoadSnapshot reads the invoice collection for an identity. A missing
// snapshot loads as an empty collection.
func (d Datasource) LoadSnapshot(ctx context.Context, identity string) ([]model.Invoice, error) {
	var doc []byte
	err := d.Conn.QueryRowContext(ctx, `
		SELECT invoices FROM snapshots WHERE identity = $1
	`, identity).Scan(&doc)
	if err == sql.ErrNoRows {
		return []model.Invoice{}, nil
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to load invoice snapshot: "+err.Error())
	}

	var invoices []model.Invoice
	if err := json.Unmarshal(doc, &invoices); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnknown, "failed to unmarshal invoice snapshot: "+err.Error())
	}
	return invoices, nil
}

// HasSnapshot reports whether an identity has ever persisted a snapshot.
// Distinguishes a first load (eligible for demo seeding) from an empty one.
func (d Datasource) HasSnapshot(ctx context.Context, identity string) (bool, error) {
	var one int
	err := d.Conn.QueryRowContext(ctx, `
		SELECT 1 FROM snapshots WHERE identity = $1
	`, identity).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrUnknown, "failed to check snapshot: "+err.Error())
	}
	return true, nil
}

// FindInvoiceAcrossIdentities scans all persisted snapshots for an invoice
// id and returns the invoice plus the identity whose snapshot holds it.
func (d Datasource) FindInvoiceAcrossIdentities(ctx context.Context, invoiceID string) (*model.Invoice, string, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT identity, invoices FROM snapshots
	`)
	if err != nil {
		return nil, "", apierror.NewAPIError(apierror.ErrUnknown, "failed to scan snapshots: "+err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var identity string
		var doc []byte
		if err := rows.Scan(&identity, &doc); err != nil {
			return nil, "", apierror.NewAPIError(apierror.ErrUnknown, "failed to scan snapshot row: "+err.Error())
		}
		var invoices []model.Invoice
		if err := json.Unmarshal(doc, &invoices); err != nil {
			continue
		}
		for i := range invoices {
			if invoices[i].InvoiceID == invoiceID {
				return &invoices[i], identity, nil
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, "", apierror.NewAPIError(apierror.ErrUnknown, "error iterating snapshots: "+err.Error())
	}

	return nil, "", apierror.NewAPIError(apierror.ErrInvoiceNotFound, "invoice "+invoiceID+" not found in any snapshot")
}
