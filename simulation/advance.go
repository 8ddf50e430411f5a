// Package simulation is the daily sales-simulation and payout engine. It advances
// every active purchase across elapsed calendar days, selling a randomized quantity
// of units per day, accruing proportional profit, and paying out principal plus
// profit to the owner's wallet exactly once when stock runs out.
//
// The same state-transition algorithm backs both entry points: the on-demand
// catch-up evaluator behind the dashboard, and the scheduled daily sweep.
package simulation

import (
	"time"

	"github.com/Ham-irza/resell-hub/models"
)

// Rand is the randomness source for the per-day sale quantity. *math/rand.Rand
// satisfies it; tests and production inject an explicitly seeded source.
type Rand interface {
	Intn(n int) int
}

// Progress reports what a single Advance call changed.
type Progress struct {
	DaysProcessed int
	UnitsSold     int
	Completed     bool
}

// Changed reports whether the purchase needs persisting.
func (pr Progress) Changed() bool {
	return pr.DaysProcessed > 0 || pr.UnitsSold > 0 || pr.Completed
}

// ElapsedDays counts the calendar midnight boundaries crossed between last and now.
// Both timestamps are truncated to UTC midnight before differencing, so the result
// does not drift with intraday call timing. A now before last counts as zero.
func ElapsedDays(last, now time.Time) int {
	lastMid := midnightUTC(last)
	nowMid := midnightUTC(now)
	if !nowMid.After(lastMid) {
		return 0
	}
	return int(nowMid.Sub(lastMid) / (24 * time.Hour))
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Advance applies every elapsed calendar day of simulated sales to p, bounded by
// maxDays per call (0 means unbounded). It mutates only p's simulation fields and
// performs no I/O; callers persist the result atomically together with the advanced
// LastProcessedAt cursor.
//
// Each elapsed day sells a random quantity within the purchase's per-day bounds,
// clamped to remaining stock. Profit accrues proportionally per unit sold. When the
// last unit sells, the accumulated return is clamped to the exact expected profit
// and the purchase transitions to completed; Progress.Completed signals the caller
// to perform the one-time payout in the same atomic commit.
func Advance(p *models.Purchase, now time.Time, rng Rand, maxDays int) Progress {
	var prog Progress
	if p.Status != models.PurchaseActive {
		return prog
	}

	// Sold out but never transitioned: a prior completion was interrupted before
	// the payout committed. Finish the transition instead of silently skipping.
	if p.SoldOut() {
		completePurchase(p, now)
		prog.Completed = true
		return prog
	}

	days := ElapsedDays(p.LastProcessedAt, now)
	if days == 0 {
		return prog
	}
	if maxDays > 0 && days > maxDays {
		days = maxDays
	}

	// Derived once from the purchase snapshot, never re-randomized.
	profitPerUnit := p.ExpectedProfit / float64(p.TotalStock)

	for day := 0; day < days; day++ {
		prog.DaysProcessed++
		sold := dailyQuantity(rng, p.DailyMinSales, p.DailyMaxSales)
		if remaining := p.Remaining(); sold > remaining {
			sold = remaining
		}
		p.ItemsSold += sold
		p.AccumulatedReturn += float64(sold) * profitPerUnit
		prog.UnitsSold += sold
		if p.SoldOut() {
			break
		}
	}

	// Move the cursor over exactly the days simulated. When capped by maxDays the
	// cursor lands short of today's midnight and a later call picks up the rest.
	p.LastProcessedAt = midnightUTC(p.LastProcessedAt).AddDate(0, 0, prog.DaysProcessed)

	if p.SoldOut() {
		completePurchase(p, now)
		prog.Completed = true
	}
	return prog
}

func completePurchase(p *models.Purchase, now time.Time) {
	p.ItemsSold = p.TotalStock
	// Clamp to the exact expected profit so per-day float accrual cannot drift the
	// final payout amount.
	p.AccumulatedReturn = p.ExpectedProfit
	p.Status = models.PurchaseCompleted
	p.LastProcessedAt = now.UTC()
}

func dailyQuantity(rng Rand, min, max int) int {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return min + rng.Intn(max-min+1)
}
