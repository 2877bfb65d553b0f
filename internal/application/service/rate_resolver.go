package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sangkips/lineform-api/internal/domain/lineitem"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxParallelLookups bounds concurrent calls into the rate source per form
const maxParallelLookups = 4

var fallbackRate = decimal.NewFromInt(1)

// RateSource looks up the multiplier of a currency against the base currency
type RateSource interface {
	Lookup(ctx context.Context, code string) (decimal.Decimal, error)
}

// RateResolver caches rates for one form session. A failed lookup is cached
// as 1 and marked degraded; it is only looked up again through Retry.
type RateResolver struct {
	source  RateSource
	base    string
	timeout time.Duration

	mu       sync.RWMutex
	rates    map[string]decimal.Decimal
	degraded map[string]struct{}
	flight   singleflight.Group
}

// NewRateResolver creates a resolver with the base currency pre-seeded at 1
func NewRateResolver(source RateSource, base string, timeout time.Duration) *RateResolver {
	return &RateResolver{
		source:   source,
		base:     base,
		timeout:  timeout,
		rates:    map[string]decimal.Decimal{base: fallbackRate},
		degraded: make(map[string]struct{}),
	}
}

// Resolve returns the cached rate for code or looks it up once
func (r *RateResolver) Resolve(ctx context.Context, code string) decimal.Decimal {
	if rate, ok := r.cached(code); ok {
		return rate
	}
	v, _, _ := r.flight.Do(code, func() (interface{}, error) {
		if rate, ok := r.cached(code); ok {
			return rate, nil
		}
		return r.lookup(ctx, code), nil
	})
	return v.(decimal.Decimal)
}

// Ensure resolves every code that is not cached yet and reports whether the
// rate table changed.
func (r *RateResolver) Ensure(ctx context.Context, codes []string) bool {
	var missing []string
	for _, code := range codes {
		if _, ok := r.cached(code); !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return false
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for _, code := range missing {
		code := code
		g.Go(func() error {
			r.Resolve(gctx, code)
			return nil
		})
	}
	_ = g.Wait()
	return true
}

// Retry drops the cached rate for code and looks it up again
func (r *RateResolver) Retry(ctx context.Context, code string) decimal.Decimal {
	if code == r.base {
		return fallbackRate
	}
	r.mu.Lock()
	delete(r.rates, code)
	delete(r.degraded, code)
	r.mu.Unlock()
	return r.Resolve(ctx, code)
}

// Table returns a snapshot of the cached rates
func (r *RateResolver) Table() lineitem.Rates {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(lineitem.Rates, len(r.rates))
	for code, rate := range r.rates {
		out[code] = rate
	}
	return out
}

// Degraded lists the codes currently priced with the fallback rate
func (r *RateResolver) Degraded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.degraded))
	for code := range r.degraded {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (r *RateResolver) cached(code string) (decimal.Decimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.rates[code]
	return rate, ok
}

func (r *RateResolver) lookup(ctx context.Context, code string) decimal.Decimal {
	lookupCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rate, err := r.source.Lookup(lookupCtx, code)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", rate)
	}

	// The caller went away; leave the code uncached so the next request tries again.
	if err != nil && ctx.Err() != nil {
		return fallbackRate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Printf("[rates] lookup for %s failed, using fallback rate 1: %v", code, err)
		r.rates[code] = fallbackRate
		r.degraded[code] = struct{}{}
		return fallbackRate
	}
	r.rates[code] = rate
	delete(r.degraded, code)
	return rate
}
