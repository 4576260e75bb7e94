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
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DemoOpeningBalance is the cash balance a fresh demo identity starts with.
// Kept deliberately low so the advisor's liquidity warning shows up in the
// showcase.
var DemoOpeningBalance = decimal.NewFromInt(8000)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// GenerateInvoiceID returns a fresh invoice identifier.
func GenerateInvoiceID() string {
	return GenerateUUIDWithSuffix("inv")
}

// FormatCurrency renders an amount with thousands separators for display,
// e.g. 100000 -> "₹1,00,000" using Indian digit grouping.
func FormatCurrency(amount decimal.Decimal) string {
	whole := amount.Round(0).BigInt().String()
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	grouped := groupIndian(whole)
	if neg {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// groupIndian applies Indian digit grouping: the last three digits form one
// group, every two digits before that form another.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// FormatAddress shortens a ledger address for display, keeping the first and
// last four characters.
func FormatAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:4], address[len(address)-4:])
}
