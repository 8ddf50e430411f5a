package simulation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Ham-irza/resell-hub/models"
)

// memStore is an in-memory Store with the same conditional-commit semantics as
// the database: a commit whose prev no longer matches the stored row fails
// with ErrConflict.
type memStore struct {
	mu        sync.Mutex
	purchases map[uint]models.Purchase
	payouts   []Payout
	failOn    map[uint]error
}

func newMemStore(ps ...models.Purchase) *memStore {
	s := &memStore{purchases: make(map[uint]models.Purchase), failOn: make(map[uint]error)}
	for _, p := range ps {
		s.purchases[p.ID] = p
	}
	return s
}

func (s *memStore) Purchase(ctx context.Context, id uint) (models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[id]; err != nil {
		return models.Purchase{}, err
	}
	p, ok := s.purchases[id]
	if !ok {
		return models.Purchase{}, errors.New("not found")
	}
	return p, nil
}

func (s *memStore) ActivePurchases(ctx context.Context) ([]models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Purchase
	for _, p := range s.purchases {
		if p.Status == models.PurchaseActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) CommitAdvance(ctx context.Context, prev, next models.Purchase, prog Progress, payout *Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.purchases[prev.ID]
	if !ok {
		return errors.New("not found")
	}
	if cur.ItemsSold != prev.ItemsSold || !cur.LastProcessedAt.Equal(prev.LastProcessedAt) || cur.Status != models.PurchaseActive {
		return ErrConflict
	}
	s.purchases[next.ID] = next
	if payout != nil {
		s.payouts = append(s.payouts, *payout)
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEvaluateAppliesOwedDays(t *testing.T) {
	p := testPurchase(1000)
	store := newMemStore(p)
	eng := New(store,
		WithClock(fixedClock(utc(2026, 3, 6, 12, 0))),
		WithRand(rand.New(rand.NewSource(1))),
	)

	got, err := eng.Evaluate(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got.ItemsSold < 5 || got.ItemsSold > 10 {
		t.Fatalf("items sold %d outside 5 days of 1..2", got.ItemsSold)
	}
	if stored := store.purchases[p.ID]; stored.ItemsSold != got.ItemsSold {
		t.Fatalf("returned record diverges from stored: %d vs %d", got.ItemsSold, stored.ItemsSold)
	}
}

func TestEvaluateSecondCallIsNoOp(t *testing.T) {
	p := testPurchase(1000)
	store := newMemStore(p)
	eng := New(store,
		WithClock(fixedClock(utc(2026, 3, 6, 12, 0))),
		WithRand(rand.New(rand.NewSource(1))),
	)

	first, err := eng.Evaluate(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	second, err := eng.Evaluate(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if first.ItemsSold != second.ItemsSold || !first.LastProcessedAt.Equal(second.LastProcessedAt) {
		t.Fatalf("second call changed state: %+v vs %+v", first, second)
	}
}

func TestEvaluatePaysOutExactlyOnce(t *testing.T) {
	p := testPurchase(3)
	store := newMemStore(p)
	var notified []Payout
	eng := New(store,
		WithClock(fixedClock(utc(2026, 6, 1, 12, 0))),
		WithRand(rand.New(rand.NewSource(1))),
		WithNotifier(func(pay Payout) { notified = append(notified, pay) }),
	)

	for i := 0; i < 5; i++ {
		if _, err := eng.Evaluate(context.Background(), p.ID); err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
	}

	if len(store.payouts) != 1 {
		t.Fatalf("payouts committed %d times, want exactly 1", len(store.payouts))
	}
	if len(notified) != 1 {
		t.Fatalf("notifier fired %d times, want 1", len(notified))
	}
	want := p.InvestedAmount + p.ExpectedProfit
	if store.payouts[0].Amount != want {
		t.Fatalf("payout amount %f, want %f", store.payouts[0].Amount, want)
	}
	if store.payouts[0].UserID != p.UserID {
		t.Fatalf("payout to user %d, want %d", store.payouts[0].UserID, p.UserID)
	}
}

func TestEvaluateConcurrentCallersOnePayout(t *testing.T) {
	p := testPurchase(3)
	store := newMemStore(p)
	eng := New(store,
		WithClock(fixedClock(utc(2026, 6, 1, 12, 0))),
		WithRand(rand.New(rand.NewSource(1))),
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Losers retry internally; every caller must settle without error.
			if _, err := eng.Evaluate(context.Background(), p.ID); err != nil {
				t.Errorf("evaluate: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(store.payouts) != 1 {
		t.Fatalf("payouts committed %d times under contention, want 1", len(store.payouts))
	}
	final := store.purchases[p.ID]
	if final.Status != models.PurchaseCompleted || final.ItemsSold != final.TotalStock {
		t.Fatalf("final state inconsistent: %+v", final)
	}
}

func TestSweepSkipsFailingPurchase(t *testing.T) {
	good := testPurchase(1000)
	bad := testPurchase(1000)
	bad.ID = 2
	store := newMemStore(good, bad)
	store.failOn[bad.ID] = errors.New("row is poisoned")

	eng := New(store,
		WithClock(fixedClock(utc(2026, 3, 6, 12, 0))),
		WithRand(rand.New(rand.NewSource(1))),
	)

	processed, err := eng.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed %d, want 1 (bad row skipped)", processed)
	}
	if store.purchases[good.ID].ItemsSold == 0 {
		t.Fatal("good purchase was not advanced")
	}
}

func TestSweepHonorsContextCancel(t *testing.T) {
	store := newMemStore(testPurchase(1000))
	eng := New(store, WithClock(fixedClock(utc(2026, 3, 6, 12, 0))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Sweep(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
