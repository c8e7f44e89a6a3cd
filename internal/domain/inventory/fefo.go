package inventory

import (
	"bytes"
	"sort"
	"time"
)

// StockCandidate is a batch together with what it currently holds at the
// location being allocated from.
type StockCandidate struct {
	Batch     Batch
	Available int64
}

// FEFOPolicy decides which batches may be sold and in which order.
// Batches expiring first go first; ties are broken by age, then by ID so that
// identical inputs always produce identical allocations.
type FEFOPolicy struct{}

// Order returns a sorted copy of batches in drain order
func (FEFOPolicy) Order(batches []Batch) []Batch {
	sorted := make([]Batch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return sorted
}

// Eligible reports whether a batch may be sold on the given day
func (FEFOPolicy) Eligible(batch *Batch, today time.Time) bool {
	return !batch.IsExpired(today)
}

// Sellable orders batches and drops the expired ones
func (p FEFOPolicy) Sellable(batches []Batch, today time.Time) []Batch {
	ordered := p.Order(batches)
	out := ordered[:0]
	for i := range ordered {
		if p.Eligible(&ordered[i], today) {
			out = append(out, ordered[i])
		}
	}
	return out
}

// Plan folds over candidates in the order given, taking min(remaining,
// available) from each until requested is satisfied. It returns the picks and
// the quantity that could not be covered.
func (FEFOPolicy) Plan(candidates []StockCandidate, location string, requested int64) ([]Allocation, int64) {
	remaining := requested
	picks := make([]Allocation, 0)
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		if c.Available <= 0 {
			continue
		}
		take := min(remaining, c.Available)
		picks = append(picks, Allocation{
			BatchID:     c.Batch.ID,
			BatchNumber: c.Batch.BatchNumber,
			ExpiryDate:  c.Batch.ExpiryDate,
			Location:    location,
			Quantity:    take,
			UnitCost:    c.Batch.UnitCost,
		})
		remaining -= take
	}
	return picks, remaining
}

// Today returns the calendar day of now in loc, as midnight UTC
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}
