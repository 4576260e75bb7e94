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

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/internal/apierror"
)

// SaveBalance upserts a demo cash balance. Amounts are stored as decimal
// strings to avoid floating-point drift.
func (d Datasource) SaveBalance(ctx context.Context, identity string, amount decimal.Decimal) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO balances (identity, amount)
		VALUES ($1, $2)
		ON CONFLICT(identity) DO UPDATE SET amount = $2
	`, identity, amount.String())
	if err != nil {
		return apierror.NewAPIError(apierror.ErrUnknown, "failed to save balance: "+err.Error())
	}
	return nil
}

// GetBalance returns an identity's cash balance. The second return value is
// false when the identity has no persisted balance yet.
func (d Datasource) GetBalance(ctx context.Context, identity string) (decimal.Decimal, bool, error) {
	var raw string
	err := d.Conn.QueryRowContext(ctx, `
		SELECT amount FROM balances WHERE identity = $1
	`, identity).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, apierror.NewAPIError(apierror.ErrUnknown, "failed to load balance: "+err.Error())
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, apierror.NewAPIError(apierror.ErrUnknown, "corrupt balance value: "+err.Error())
	}
	return amount, true, nil
}
