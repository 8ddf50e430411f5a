package simulation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Ham-irza/resell-hub/models"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func testPurchase(stock int) models.Purchase {
	return models.Purchase{
		ID:              1,
		UserID:          7,
		Kind:            models.PurchaseKindPlan,
		ItemName:        "Growth",
		UnitPrice:       3000,
		ReturnRate:      30,
		DailyMinSales:   1,
		DailyMaxSales:   2,
		InvestedAmount:  3000,
		ExpectedProfit:  900,
		TotalStock:      stock,
		Status:          models.PurchaseActive,
		StartedAt:       utc(2026, 3, 1, 10, 30),
		LastProcessedAt: utc(2026, 3, 1, 10, 30),
	}
}

func TestElapsedDays(t *testing.T) {
	cases := []struct {
		name string
		last time.Time
		now  time.Time
		want int
	}{
		{"same day", utc(2026, 3, 1, 9, 0), utc(2026, 3, 1, 23, 59), 0},
		{"one midnight crossed", utc(2026, 3, 1, 23, 59), utc(2026, 3, 2, 0, 1), 1},
		{"five days", utc(2026, 3, 1, 12, 0), utc(2026, 3, 6, 1, 0), 5},
		{"clock skew backwards", utc(2026, 3, 5, 12, 0), utc(2026, 3, 4, 12, 0), 0},
		{"exact midnight to midnight", utc(2026, 3, 1, 0, 0), utc(2026, 3, 2, 0, 0), 1},
		{"intraday time irrelevant", utc(2026, 3, 1, 0, 1), utc(2026, 3, 2, 23, 59), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ElapsedDays(tc.last, tc.now); got != tc.want {
				t.Fatalf("ElapsedDays(%v, %v) = %d, want %d", tc.last, tc.now, got, tc.want)
			}
		})
	}
}

func TestElapsedDaysIgnoresZone(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*3600)
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 17, 0, 0, 0, karachi) // 12:00 UTC next day
	if got := ElapsedDays(last, now); got != 1 {
		t.Fatalf("expected 1 day across zones, got %d", got)
	}
}

func TestAdvanceZeroDaysIsNoOp(t *testing.T) {
	p := testPurchase(30)
	before := p
	prog := Advance(&p, utc(2026, 3, 1, 22, 0), rand.New(rand.NewSource(1)), 0)
	if prog.Changed() {
		t.Fatalf("expected no change, got %+v", prog)
	}
	if p != before {
		t.Fatalf("purchase mutated on zero elapsed days: %+v", p)
	}
}

func TestAdvanceNeverOversells(t *testing.T) {
	p := testPurchase(30)
	p.DailyMinSales = 7
	p.DailyMaxSales = 9
	// 400 elapsed days, far more than needed to exhaust stock
	prog := Advance(&p, utc(2027, 4, 5, 12, 0), rand.New(rand.NewSource(42)), 0)
	if p.ItemsSold != p.TotalStock {
		t.Fatalf("items_sold = %d, want exactly %d", p.ItemsSold, p.TotalStock)
	}
	if !prog.Completed {
		t.Fatal("expected completion")
	}
	if p.Status != models.PurchaseCompleted {
		t.Fatalf("status = %s, want completed", p.Status)
	}
	if p.AccumulatedReturn != p.ExpectedProfit {
		t.Fatalf("accumulated return %f not clamped to expected profit %f", p.AccumulatedReturn, p.ExpectedProfit)
	}
}

func TestAdvanceDailyBounds(t *testing.T) {
	p := testPurchase(1000)
	p.DailyMinSales = 3
	p.DailyMaxSales = 5
	rng := rand.New(rand.NewSource(7))
	prog := Advance(&p, utc(2026, 3, 11, 12, 0), rng, 0)
	if prog.DaysProcessed != 10 {
		t.Fatalf("days processed = %d, want 10", prog.DaysProcessed)
	}
	if prog.UnitsSold < 30 || prog.UnitsSold > 50 {
		t.Fatalf("units sold %d outside [30,50] for 10 days of 3..5", prog.UnitsSold)
	}
}

func TestAdvanceAccruesProportionally(t *testing.T) {
	p := testPurchase(30)
	rng := rand.New(rand.NewSource(3))
	Advance(&p, utc(2026, 3, 6, 12, 0), rng, 0)
	perUnit := p.ExpectedProfit / float64(p.TotalStock)
	want := float64(p.ItemsSold) * perUnit
	if diff := p.AccumulatedReturn - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("accumulated return %f, want %f", p.AccumulatedReturn, want)
	}
}

func TestAdvanceDeterministicForSeed(t *testing.T) {
	run := func() models.Purchase {
		p := testPurchase(30)
		Advance(&p, utc(2026, 3, 20, 12, 0), rand.New(rand.NewSource(99)), 0)
		return p
	}
	a, b := run(), run()
	if a.ItemsSold != b.ItemsSold || a.AccumulatedReturn != b.AccumulatedReturn || a.Status != b.Status {
		t.Fatalf("same seed diverged: %+v vs %+v", a, b)
	}
}

func TestAdvanceIdempotentCursor(t *testing.T) {
	p := testPurchase(1000)
	now := utc(2026, 3, 6, 12, 0)
	rng := rand.New(rand.NewSource(5))
	first := Advance(&p, now, rng, 0)
	if first.DaysProcessed != 5 {
		t.Fatalf("first pass processed %d days, want 5", first.DaysProcessed)
	}
	second := Advance(&p, now, rng, 0)
	if second.Changed() {
		t.Fatalf("second pass at same clock changed state: %+v", second)
	}
}

func TestAdvanceMaxDaysCap(t *testing.T) {
	p := testPurchase(100000)
	now := utc(2026, 9, 1, 12, 0) // ~180 days elapsed
	rng := rand.New(rand.NewSource(11))

	prog := Advance(&p, now, rng, 90)
	if prog.DaysProcessed != 90 {
		t.Fatalf("capped pass processed %d days, want 90", prog.DaysProcessed)
	}

	// The cursor lands 90 days past the start, so a second call owes the rest.
	rest := Advance(&p, now, rng, 0)
	if prog.DaysProcessed+rest.DaysProcessed != 184 {
		t.Fatalf("total days %d, want 184", prog.DaysProcessed+rest.DaysProcessed)
	}
}

func TestAdvanceSoldOutButActiveCompletes(t *testing.T) {
	p := testPurchase(30)
	p.ItemsSold = 30
	p.AccumulatedReturn = 899.97 // drifted accrual from an interrupted run
	now := utc(2026, 4, 1, 12, 0)

	prog := Advance(&p, now, rand.New(rand.NewSource(1)), 0)
	if !prog.Completed {
		t.Fatal("expected completion of payout-pending purchase")
	}
	if prog.DaysProcessed != 0 || prog.UnitsSold != 0 {
		t.Fatalf("no sales should occur, got %+v", prog)
	}
	if p.AccumulatedReturn != p.ExpectedProfit {
		t.Fatalf("return %f not clamped to %f", p.AccumulatedReturn, p.ExpectedProfit)
	}
	if p.Status != models.PurchaseCompleted {
		t.Fatalf("status = %s, want completed", p.Status)
	}
}

func TestAdvanceCompletedIsInert(t *testing.T) {
	p := testPurchase(30)
	p.Status = models.PurchaseCompleted
	p.ItemsSold = 30
	prog := Advance(&p, utc(2027, 1, 1, 0, 0), rand.New(rand.NewSource(1)), 0)
	if prog.Changed() {
		t.Fatalf("completed purchase advanced: %+v", prog)
	}
}

func TestDailyQuantityGuards(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		if q := dailyQuantity(rng, 0, 0); q != 1 {
			t.Fatalf("degenerate bounds should sell exactly 1, got %d", q)
		}
	}
	for i := 0; i < 100; i++ {
		if q := dailyQuantity(rng, 5, 3); q != 5 {
			t.Fatalf("inverted bounds should clamp max to min, got %d", q)
		}
	}
}
