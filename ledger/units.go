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
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LedgerDecimals is the fixed-point scale used for amounts on the wire. The
// contract stores amounts as integers scaled by 10^7; every read path must
// invert the scaling before values reach the rest of the system.
const LedgerDecimals = 7

// ToLedgerUnits scales a currency amount to the wire's integer
// representation, truncating sub-unit precision beyond the scale.
func ToLedgerUnits(amount decimal.Decimal) string {
	return amount.Shift(LedgerDecimals).Truncate(0).String()
}

// FromLedgerUnits inverts ToLedgerUnits.
func FromLedgerUnits(units string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(units)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid ledger units %q: %w", units, err)
	}
	return d.Shift(-LedgerDecimals), nil
}

// FormatRemoteInvoiceID renders the contract's numeric invoice counter as
// the string identifier used everywhere else in the system.
func FormatRemoteInvoiceID(n uint64) string {
	return fmt.Sprintf("INV-%06d", n)
}

// ParseRemoteInvoiceID extracts the numeric counter from a formatted invoice
// id by stripping every non-digit character.
func ParseRemoteInvoiceID(id string) (uint64, error) {
	var digits strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("invoice id %q carries no numeric part", id)
	}
	n, err := strconv.ParseUint(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invoice id %q: %w", id, err)
	}
	return n, nil
}
