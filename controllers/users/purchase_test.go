package users

import (
	"errors"
	"testing"
	"time"

	"github.com/Ham-irza/resell-hub/models"
)

func TestEnsureNoActivePlan(t *testing.T) {
	if err := ensureNoActivePlan(0); err != nil {
		t.Fatalf("first plan purchase refused: %v", err)
	}
	if err := ensureNoActivePlan(1); !errors.Is(err, errActivePlan) {
		t.Fatalf("second active plan allowed, error = %v", err)
	}
	if err := ensureNoActivePlan(3); !errors.Is(err, errActivePlan) {
		t.Fatalf("multiple active plans allowed, error = %v", err)
	}
}

func TestNewPlanPurchaseSnapshot(t *testing.T) {
	plan := models.Plan{
		ID:            4,
		Name:          "Growth",
		Price:         3000,
		ReturnRate:    30,
		TotalStock:    90,
		DailyMinSales: 3,
		DailyMaxSales: 5,
		Status:        "Active",
	}
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	p := newPlanPurchase(42, &plan, now)

	if p.UserID != 42 || p.Kind != models.PurchaseKindPlan {
		t.Fatalf("purchase identity wrong: user=%d kind=%s", p.UserID, p.Kind)
	}
	if p.ItemName != "Growth" || p.UnitPrice != 3000 || p.ReturnRate != 30 {
		t.Fatalf("plan terms not snapshotted: %+v", p)
	}
	if p.InvestedAmount != 3000 || p.ExpectedProfit != 900 {
		t.Fatalf("invested=%.2f profit=%.2f, want 3000/900", p.InvestedAmount, p.ExpectedProfit)
	}
	if p.TotalStock != 90 || p.DailyMinSales != 3 || p.DailyMaxSales != 5 {
		t.Fatalf("stock terms not snapshotted: %+v", p)
	}
	if p.Status != models.PurchaseActive || p.AccumulatedReturn != 0 {
		t.Fatalf("fresh purchase not active with zero return: %+v", p)
	}
	if !p.StartedAt.Equal(now) || !p.LastProcessedAt.Equal(now) {
		t.Fatalf("cycle cursor not initialized to purchase time: %+v", p)
	}
	if p.ReferenceID == "" {
		t.Fatal("reference id missing")
	}

	// Later plan edits must not leak into the running cycle.
	plan.Price = 9999
	plan.TotalStock = 1
	if p.UnitPrice != 3000 || p.TotalStock != 90 {
		t.Fatalf("purchase shares state with the plan: %+v", p)
	}
}
