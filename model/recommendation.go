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
	"sort"

	"github.com/shopspring/decimal"
)

// RecommendationType categorizes an advisory.
type RecommendationType string

const (
	RecommendationSell     RecommendationType = "sell"
	RecommendationDiscount RecommendationType = "discount"
	RecommendationWarning  RecommendationType = "warning"
	RecommendationInsight  RecommendationType = "insight"
)

// Priority is the urgency tier of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// AIRecommendation is a non-binding advisory surfaced to the user. Ids are
// deterministic for a given subject so regeneration produces stable ids; the
// low-balance warning uses a fixed id, meaning at most one such warning is
// ever active.
type AIRecommendation struct {
	ID              string             `json:"id"`
	Type            RecommendationType `json:"type"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	InvoiceID       string             `json:"invoice_id,omitempty"`
	SuggestedAction string             `json:"suggested_action,omitempty"`
	SuggestedValue  *decimal.Decimal   `json:"suggested_value,omitempty"`
	Priority        Priority           `json:"priority"`
}

// SortByPriority orders recommendations high, medium, low, preserving the
// relative generation order within each tier.
func SortByPriority(recommendations []AIRecommendation) {
	sort.SliceStable(recommendations, func(i, j int) bool {
		return priorityRank[recommendations[i].Priority] < priorityRank[recommendations[j].Priority]
	})
}
