package simulation

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/Ham-irza/resell-hub/models"
)

// ErrConflict is returned by Store.CommitAdvance when another evaluator committed
// the same purchase first. The engine retries the evaluation from fresh state.
var ErrConflict = errors.New("simulation: purchase modified concurrently")

// Payout is the one-time wallet credit owed when a purchase completes:
// principal plus the full expected profit.
type Payout struct {
	PurchaseID uint
	UserID     uint
	ItemName   string
	TotalStock int
	Amount     float64
}

// Store is the persistence surface the engine needs. CommitAdvance must persist
// next's simulation fields and the payout side effects as one atomic unit, and must
// fail with ErrConflict when prev no longer matches the stored row (conditional
// update keyed on items_sold/last_processed_at/status).
type Store interface {
	Purchase(ctx context.Context, id uint) (models.Purchase, error)
	ActivePurchases(ctx context.Context) ([]models.Purchase, error)
	CommitAdvance(ctx context.Context, prev, next models.Purchase, prog Progress, payout *Payout) error
}

// NotifyFunc is invoked after a payout commits. Implementations send email or
// push notifications; they must swallow and log their own failures, since the
// wallet credit is already durable.
type NotifyFunc func(p Payout)

// Engine is the single authoritative sales-simulation implementation. Both the
// request-path catch-up evaluator and the scheduled sweep go through Evaluate.
type Engine struct {
	store          Store
	notify         NotifyFunc
	now            func() time.Time
	rng            *lockedRand
	maxCatchUpDays int
	maxRetries     int
}

type Option func(*Engine)

// WithClock injects the time source. The engine never reads the wall clock inside
// the transition algorithm.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand injects the randomness source for per-day sale quantities.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = &lockedRand{r: r} }
}

// WithNotifier installs the post-payout notification hook.
func WithNotifier(fn NotifyFunc) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithMaxCatchUpDays caps how many elapsed days one Evaluate call applies, so the
// request path stays bounded after long outages. Zero removes the cap.
func WithMaxCatchUpDays(days int) Option {
	return func(e *Engine) { e.maxCatchUpDays = days }
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		now:            time.Now,
		rng:            &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
		maxCatchUpDays: 90,
		maxRetries:     3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate brings one purchase up to date with the injected clock and returns the
// resulting record. Calling it again with the same clock reading is a no-op: the
// committed last_processed_at cursor already covers every elapsed day. A CAS
// conflict means another evaluator won the race; the loser re-reads and re-runs
// rather than dropping the days it computed, and typically observes zero remaining
// elapsed days on the retry.
func (e *Engine) Evaluate(ctx context.Context, purchaseID uint) (models.Purchase, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		p, err := e.store.Purchase(ctx, purchaseID)
		if err != nil {
			return models.Purchase{}, err
		}

		prev := p
		prog := Advance(&p, e.now(), e.rng, e.maxCatchUpDays)
		if !prog.Changed() {
			return p, nil
		}

		var payout *Payout
		if prog.Completed {
			payout = &Payout{
				PurchaseID: p.ID,
				UserID:     p.UserID,
				ItemName:   p.ItemName,
				TotalStock: p.TotalStock,
				Amount:     p.InvestedAmount + p.ExpectedProfit,
			}
		}

		err = e.store.CommitAdvance(ctx, prev, p, prog, payout)
		if err == nil {
			if payout != nil && e.notify != nil {
				e.notify(*payout)
			}
			return p, nil
		}
		if !errors.Is(err, ErrConflict) {
			return models.Purchase{}, err
		}
		lastErr = err
	}
	return models.Purchase{}, lastErr
}

// Sweep runs one day's catch-up across every active purchase. A failing purchase is
// logged and skipped; one bad record never aborts the rest of the sweep.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	purchases, err := e.store.ActivePurchases(ctx)
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, p := range purchases {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if _, err := e.Evaluate(ctx, p.ID); err != nil {
			log.Printf("[simulation] sweep: purchase %d: %v", p.ID, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// lockedRand makes a shared *rand.Rand safe for concurrent evaluators.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
