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
package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// CreateInvoice is the request body for minting a new invoice. Amount is a
// decimal string, DueDate is RFC 3339. DebtorAddress is optional; without it
// the invoice is kept off-ledger.
type CreateInvoice struct {
	DebtorName    string `json:"debtor_name"`
	Amount        string `json:"amount"`
	DueDate       string `json:"due_date"`
	DebtorAddress string `json:"debtor_address"`
}

type ListInvoice struct {
	Price string `json:"price"`
}

type UpdateStatus struct {
	Status string `json:"status"`
}

func validatePositiveDecimal(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("invalid type for amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a decimal number")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

func validateRFC3339(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("invalid type for date")
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return errors.New("please format the date as 'YYYY-MM-DDTHH:MM:SSZ' (e.g., 2025-06-01T00:00:00Z)")
	}
	return nil
}

func (i *CreateInvoice) ValidateCreateInvoice() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.DebtorName, validation.Required),
		validation.Field(&i.Amount, validation.Required, validation.By(validatePositiveDecimal)),
		validation.Field(&i.DueDate, validation.Required, validation.By(validateRFC3339)),
	)
}

func (l *ListInvoice) ValidateListInvoice() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Price, validation.Required, validation.By(validatePositiveDecimal)),
	)
}

func (u *UpdateStatus) ValidateUpdateStatus() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Status, validation.Required,
			validation.In("pending", "verified", "listed", "sold", "settled")),
	)
}
