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
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/model"
)

func demoDebtorAddress(n string) string {
	return "GBUYER" + n + strings.Repeat("X", 40) + "DEMO"
}

// DemoInvoices builds the showcase portfolio seeded into a first-time demo
// identity: one invoice ready to verify, one ready to list, and one far
// from maturity.
func DemoInvoices(issuer string, now time.Time) []model.Invoice {
	verifiedAt := now.AddDate(0, 0, -1)
	return []model.Invoice{
		{
			InvoiceID:     "INV-DEMO001",
			DebtorName:    "Mumbai Hotel",
			DebtorAddress: demoDebtorAddress("1"),
			IssuerAddress: issuer,
			HolderAddress: issuer,
			Amount:        decimal.NewFromInt(100000),
			DueDate:       now.AddDate(0, 0, 45),
			Status:        model.StatusPending,
			CreatedAt:     now.AddDate(0, 0, -2),
		},
		{
			InvoiceID:     "INV-DEMO002",
			DebtorName:    "Kolkata Crafts",
			DebtorAddress: demoDebtorAddress("2"),
			IssuerAddress: issuer,
			HolderAddress: issuer,
			Amount:        decimal.NewFromInt(75000),
			DueDate:       now.AddDate(0, 0, 30),
			Status:        model.StatusVerified,
			CreatedAt:     now.AddDate(0, 0, -5),
			VerifiedAt:    &verifiedAt,
		},
		{
			InvoiceID:     "INV-DEMO003",
			DebtorName:    "Delhi Electronics",
			DebtorAddress: demoDebtorAddress("3"),
			IssuerAddress: issuer,
			HolderAddress: issuer,
			Amount:        decimal.NewFromInt(50000),
			DueDate:       now.AddDate(0, 0, 60),
			Status:        model.StatusPending,
			CreatedAt:     now.AddDate(0, 0, -1),
		},
	}
}
