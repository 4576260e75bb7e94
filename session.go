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

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/internal/apierror"
	"github.com/receivai/receivai/ledger"
	"github.com/receivai/receivai/model"
)

// SignFunc is the external signing oracle: it receives an unsigned
// transaction payload and returns the signed form. The store never holds
// keys; a refusal here aborts the operation before any state changes.
type SignFunc func(ctx context.Context, unsignedPayload string) (string, error)

// Session carries the acting identity and its signing oracle through every
// store operation.
type Session struct {
	Identity string
	Sign     SignFunc
}

// NewDemoSession builds a session whose signer approves everything. Demo
// transactions are applied locally, so the signed form is the payload
// itself.
func NewDemoSession(identity string) Session {
	return Session{
		Identity: identity,
		Sign: func(_ context.Context, unsignedPayload string) (string, error) {
			return unsignedPayload, nil
		},
	}
}

// signAndSubmit runs an unsigned transaction through the session's signing
// oracle and drives the signed payload to a terminal state. A signing
// refusal maps to a rejection error and nothing is submitted.
func (r *Receivai) signAndSubmit(ctx context.Context, session Session, tx *ledger.UnsignedTx) error {
	if session.Sign == nil {
		return apierror.NewAPIError(apierror.ErrWalletNotConnected, "session has no signing oracle")
	}
	signed, err := session.Sign(ctx, tx.Payload)
	if err != nil {
		var apiErr apierror.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return apierror.NewAPIError(apierror.ErrTransactionRejected, err.Error())
	}
	return r.ledger.Submit(ctx, signed)
}

// Balance returns the identity's cash balance. An identity that has never
// transacted starts at the demo opening balance.
func (r *Receivai) Balance(ctx context.Context, session Session) (decimal.Decimal, error) {
	amount, found, err := r.datasource.GetBalance(ctx, session.Identity)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return model.DemoOpeningBalance, nil
	}
	return amount, nil
}

// UpdateBalance persists a new cash balance for the session identity.
func (r *Receivai) UpdateBalance(ctx context.Context, session Session, amount decimal.Decimal) error {
	return r.datasource.SaveBalance(ctx, session.Identity, amount)
}
