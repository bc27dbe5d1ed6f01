package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket classifies an outstanding balance by how many whole days it has
// been unpaid.
type AgingBucket string

const (
	BucketCurrent    AgingBucket = "current"
	BucketDays31To60 AgingBucket = "days_31_60"
	BucketDays61To90 AgingBucket = "days_61_90"
	BucketDays90Plus AgingBucket = "days_90_plus"
)

// ClassifyAge buckets a days-outstanding value. Boundaries are inclusive on
// the upper bound of each range: 30 is current, 60 is 31-60, 90 is 61-90.
func ClassifyAge(daysOutstanding int) AgingBucket {
	switch {
	case daysOutstanding <= 30:
		return BucketCurrent
	case daysOutstanding <= 60:
		return BucketDays31To60
	case daysOutstanding <= 90:
		return BucketDays61To90
	default:
		return BucketDays90Plus
	}
}

// DaysBetween returns the number of whole calendar days from occurredAt to now.
func DaysBetween(occurredAt, now time.Time) int {
	return int(now.Sub(occurredAt) / (24 * time.Hour))
}

// AgingSummary sums outstanding balances per aging bucket.
type AgingSummary struct {
	Current    decimal.Decimal `json:"current"`
	Days31To60 decimal.Decimal `json:"days_31_60"`
	Days61To90 decimal.Decimal `json:"days_61_90"`
	Days90Plus decimal.Decimal `json:"days_90_plus"`
}

// NewAgingSummary returns a zeroed summary; decimal.Decimal zero values are
// usable as-is but an explicit constructor keeps JSON output at "0".
func NewAgingSummary() AgingSummary {
	return AgingSummary{
		Current:    decimal.Zero,
		Days31To60: decimal.Zero,
		Days61To90: decimal.Zero,
		Days90Plus: decimal.Zero,
	}
}

// Add accumulates an outstanding amount into the bucket for the given age.
func (s *AgingSummary) Add(bucket AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		s.Current = s.Current.Add(amount)
	case BucketDays31To60:
		s.Days31To60 = s.Days31To60.Add(amount)
	case BucketDays61To90:
		s.Days61To90 = s.Days61To90.Add(amount)
	case BucketDays90Plus:
		s.Days90Plus = s.Days90Plus.Add(amount)
	}
}
