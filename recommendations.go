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
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/receivai/receivai/config"
	"github.com/receivai/receivai/model"
)

// GenerateRecommendations runs the advisory rules over a portfolio and
// returns the results ordered high to medium to low priority, preserving
// generation order within each tier. The rules are deterministic: the same
// portfolio, balance, and clock always produce the same recommendations with
// the same ids.
func GenerateRecommendations(invoices []model.Invoice, balance decimal.Decimal, now time.Time, cfg config.AdvisorConfig) []model.AIRecommendation {
	var recommendations []model.AIRecommendation

	lowThreshold := decimal.NewFromInt(cfg.LowBalanceThreshold)
	urgentThreshold := decimal.NewFromInt(cfg.UrgentBalanceThreshold)

	// Cash running low is the one warning; its fixed id means at most one
	// is ever surfaced.
	if balance.LessThan(lowThreshold) {
		recommendations = append(recommendations, model.AIRecommendation{
			ID:          "low-balance",
			Type:        model.RecommendationWarning,
			Title:       "Low cash balance",
			Description: fmt.Sprintf("Your balance is %s. Selling a verified invoice would unlock working capital.", model.FormatCurrency(balance)),
			Priority:    model.PriorityHigh,
		})
	}

	// Every verified invoice gets a sell suggestion at a coarse discount
	// tier; urgency follows the cash position.
	for _, inv := range invoices {
		if inv.Status != model.StatusVerified {
			continue
		}
		days := model.DaysUntilDue(inv.DueDate, now)
		discount := coarseDiscount(days)
		suggested := model.DiscountedPrice(inv.Amount, discount)

		priority := model.PriorityMedium
		if balance.LessThan(urgentThreshold) {
			priority = model.PriorityHigh
		}

		recommendations = append(recommendations, model.AIRecommendation{
			ID:              "sell-" + inv.InvoiceID,
			Type:            model.RecommendationSell,
			Title:           "Sell " + inv.InvoiceID + " now",
			Description:     fmt.Sprintf("%s owes %s, due in %d days. Listing at a %d%% discount would raise %s today.", inv.DebtorName, model.FormatCurrency(inv.Amount), days, discount, model.FormatCurrency(suggested)),
			InvoiceID:       inv.InvoiceID,
			SuggestedAction: "list",
			SuggestedValue:  &suggested,
			Priority:        priority,
		})
	}

	// A gentle reminder for the single oldest invoice stuck in pending.
	if oldest := oldestStalePending(invoices, now, cfg.PendingReminderDays); oldest != nil {
		recommendations = append(recommendations, model.AIRecommendation{
			ID:          "reminder-" + oldest.InvoiceID,
			Type:        model.RecommendationInsight,
			Title:       "Verification pending on " + oldest.InvoiceID,
			Description: fmt.Sprintf("%s has not verified this invoice yet. Sharing the verification link again usually helps.", oldest.DebtorName),
			InvoiceID:   oldest.InvoiceID,
			Priority:    model.PriorityLow,
		})
	}

	// Far-out pending invoices may be worth an early-payment discount
	// offer instead of financing.
	earlyValue := decimal.NewFromInt(2)
	for _, inv := range invoices {
		if inv.Status != model.StatusPending {
			continue
		}
		if model.DaysUntilDue(inv.DueDate, now) <= cfg.EarlyDiscountMinDays {
			continue
		}
		value := earlyValue
		recommendations = append(recommendations, model.AIRecommendation{
			ID:              "early-discount-" + inv.InvoiceID,
			Type:            model.RecommendationDiscount,
			Title:           "Offer an early-payment discount on " + inv.InvoiceID,
			Description:     fmt.Sprintf("This invoice is due in %d days. A 2%% discount for early payment could beat the cost of financing.", model.DaysUntilDue(inv.DueDate, now)),
			InvoiceID:       inv.InvoiceID,
			SuggestedAction: "discount",
			SuggestedValue:  &value,
			Priority:        model.PriorityLow,
		})
	}

	model.SortByPriority(recommendations)
	return recommendations
}

// coarseDiscount is the recommendation engine's tiering. It is deliberately
// coarser than the pricing engine's suggestion: advice rounds to the
// nearest sensible story, the listing form computes the precise number.
func coarseDiscount(daysUntilDue int) int64 {
	switch {
	case daysUntilDue > 60:
		return 5
	case daysUntilDue > 45:
		return 4
	case daysUntilDue < 15:
		return 1
	default:
		return 3
	}
}

func oldestStalePending(invoices []model.Invoice, now time.Time, reminderDays int) *model.Invoice {
	var oldest *model.Invoice
	cutoff := now.AddDate(0, 0, -reminderDays)
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != model.StatusPending || !inv.CreatedAt.Before(cutoff) {
			continue
		}
		if oldest == nil || inv.CreatedAt.Before(oldest.CreatedAt) {
			oldest = inv
		}
	}
	return oldest
}

// Recommendations generates advisories for the session identity's
// portfolio, minus anything the user has dismissed this process lifetime.
func (r *Receivai) Recommendations(ctx context.Context, session Session) ([]model.AIRecommendation, error) {
	invoices, err := r.datasource.LoadSnapshot(ctx, session.Identity)
	if err != nil {
		return nil, err
	}
	balance, err := r.Balance(ctx, session)
	if err != nil {
		return nil, err
	}

	generated := GenerateRecommendations(invoices, balance, r.now(), r.config.Advisor)

	r.dismissMu.Lock()
	defer r.dismissMu.Unlock()
	kept := generated[:0]
	for _, rec := range generated {
		if _, dismissed := r.dismissed[rec.ID]; !dismissed {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

// DismissRecommendation suppresses a recommendation id until the process
// restarts. Dismissals are deliberately not persisted: conditions drift,
// and stale advice coming back is better than good advice staying hidden.
func (r *Receivai) DismissRecommendation(id string) {
	r.dismissMu.Lock()
	defer r.dismissMu.Unlock()
	r.dismissed[id] = struct{}{}
}
