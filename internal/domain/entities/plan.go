package entities

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is an investment product offered to users.
type Plan struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	ROIPercent   decimal.Decimal  `json:"roiPercent"`
	DurationDays int              `json:"durationDays"`
	MinAmount    decimal.Decimal  `json:"minAmount"`
	MaxAmount    *decimal.Decimal `json:"maxAmount"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// PlanSummary is the subset of a plan shown next to a user's active plan.
type PlanSummary struct {
	Name         string          `json:"name"`
	ROIPercent   decimal.Decimal `json:"roiPercent"`
	DurationDays int             `json:"durationDays"`
}

// PlanTier buckets a plan by name for presentation.
func PlanTier(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "premium"), strings.Contains(n, "pro"):
		return "premium"
	case strings.Contains(n, "plus"):
		return "plus"
	default:
		return "standard"
	}
}

// RangeText describes the amount range a plan accepts.
func RangeText(minAmount decimal.Decimal, maxAmount *decimal.Decimal) string {
	if maxAmount == nil || maxAmount.IsZero() {
		return "From " + FormatMoney(minAmount)
	}
	if minAmount.Equal(*maxAmount) {
		return FormatMoney(minAmount)
	}
	return FormatMoney(minAmount) + " - " + FormatMoney(*maxAmount)
}

// featuredBefore is the featured ordering: higher ROI, then longer duration,
// then higher minimum, then lower id.
func featuredBefore(a, b *Plan) bool {
	if c := a.ROIPercent.Cmp(b.ROIPercent); c != 0 {
		return c > 0
	}
	if a.DurationDays != b.DurationDays {
		return a.DurationDays > b.DurationDays
	}
	if c := a.MinAmount.Cmp(b.MinAmount); c != 0 {
		return c > 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// PickFeatured returns the id of the plan to highlight. The result depends
// only on field values, never on input order. False for an empty list.
func PickFeatured(plans []*Plan) (uuid.UUID, bool) {
	var best *Plan
	for _, p := range plans {
		if p == nil {
			continue
		}
		if best == nil || featuredBefore(p, best) {
			best = p
		}
	}
	if best == nil {
		return uuid.Nil, false
	}
	return best.ID, true
}

// SortPlansByMinAmount orders plans cheapest first, ties by name.
func SortPlansByMinAmount(plans []*Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		if c := plans[i].MinAmount.Cmp(plans[j].MinAmount); c != 0 {
			return c < 0
		}
		return plans[i].Name < plans[j].Name
	})
}

// CreatePlanInput is the create_plan command payload.
type CreatePlanInput struct {
	Name         string           `json:"name"`
	ROIPercent   decimal.Decimal  `json:"roi_percent"`
	DurationDays int              `json:"duration_days"`
	MinAmount    decimal.Decimal  `json:"min_amount"`
	MaxAmount    *decimal.Decimal `json:"max_amount"`
}
