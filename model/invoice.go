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
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice. Statuses advance
// strictly forward through the chain pending -> verified -> listed -> sold
// -> settled and never revert.
type InvoiceStatus string

const (
	StatusPending  InvoiceStatus = "pending"
	StatusVerified InvoiceStatus = "verified"
	StatusListed   InvoiceStatus = "listed"
	StatusSold     InvoiceStatus = "sold"
	StatusSettled  InvoiceStatus = "settled"
)

// validTransitions maps each status to its legal successors. Every status has
// at most one successor; settled is terminal.
var validTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusPending:  {StatusVerified},
	StatusVerified: {StatusListed},
	StatusListed:   {StatusSold},
	StatusSold:     {StatusSettled},
	StatusSettled:  {},
}

// CanTransition reports whether moving from one status to another is legal.
// It is total over all status pairs: unknown statuses simply have no
// successors.
func CanTransition(from, to InvoiceStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatus returns the single legal successor of the current status. The
// second return value is false when the status is terminal or unknown.
func NextStatus(current InvoiceStatus) (InvoiceStatus, bool) {
	next := validTransitions[current]
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// Invoice is a claim for payment of a fixed amount by a named debtor on a due
// date. Invoices are append-only per identity; stage timestamps accumulate as
// the status advances and are never cleared.
type Invoice struct {
	InvoiceID     string           `json:"id"`
	DebtorName    string           `json:"debtor_name"`
	DebtorAddress string           `json:"debtor_address,omitempty"`
	IssuerAddress string           `json:"issuer_address"`
	Amount        decimal.Decimal  `json:"amount"`
	DueDate       time.Time        `json:"due_date"`
	Status        InvoiceStatus    `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	VerifiedAt    *time.Time       `json:"verified_at,omitempty"`
	ListedAt      *time.Time       `json:"listed_at,omitempty"`
	SoldAt        *time.Time       `json:"sold_at,omitempty"`
	SettledAt     *time.Time       `json:"settled_at,omitempty"`
	ListingPrice  *decimal.Decimal `json:"listing_price,omitempty"`
	SoldPrice     *decimal.Decimal `json:"sold_price,omitempty"`
	HolderAddress string           `json:"holder_address,omitempty"`
}

// Stamp records the stage timestamp that corresponds to a transition target.
// Timestamps are set exactly once; a stamp that is already present is left
// untouched.
func (inv *Invoice) Stamp(status InvoiceStatus, at time.Time) {
	switch status {
	case StatusVerified:
		if inv.VerifiedAt == nil {
			inv.VerifiedAt = &at
		}
	case StatusListed:
		if inv.ListedAt == nil {
			inv.ListedAt = &at
		}
	case StatusSold:
		if inv.SoldAt == nil {
			inv.SoldAt = &at
		}
	case StatusSettled:
		if inv.SettledAt == nil {
			inv.SettledAt = &at
		}
	}
}

// IsDue reports whether the invoice's due date has been reached.
func (inv *Invoice) IsDue(now time.Time) bool {
	return !now.Before(inv.DueDate)
}

// DaysUntilDue returns the number of whole days between now and the due date,
// rounded up. Overdue invoices yield zero or a negative count.
func DaysUntilDue(dueDate, now time.Time) int {
	diff := dueDate.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
