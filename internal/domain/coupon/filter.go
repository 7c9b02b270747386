package coupon

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const filterFPR = 0.001

// CodeFilter is a bloom-filter prefilter over known coupon codes. Checkout
// traffic carries a high rate of mistyped or guessed codes; the filter
// answers those without a database round trip. False positives fall through
// to the repository, so correctness only depends on the filter containing
// every real code.
type CodeFilter struct {
	mu sync.RWMutex
	f  *bloom.BloomFilter
}

// NewCodeFilter builds a filter from the repository's current code set.
func NewCodeFilter(ctx context.Context, repo Repository) (*CodeFilter, error) {
	cf := &CodeFilter{}
	if err := cf.Reload(ctx, repo); err != nil {
		return nil, err
	}
	return cf, nil
}

// Reload rebuilds the filter from the repository. Codes added after the last
// reload are unknown to the filter, so call sites should refresh on a timer
// and after admin coupon creation.
func (cf *CodeFilter) Reload(ctx context.Context, repo Repository) error {
	codes, err := repo.ListCodes(ctx)
	if err != nil {
		return errors.Wrap(err, "list coupon codes")
	}

	n := uint(len(codes))
	if n < 1024 {
		n = 1024
	}
	f := bloom.NewWithEstimates(n, filterFPR)
	for _, code := range codes {
		f.AddString(strings.ToUpper(code))
	}

	cf.mu.Lock()
	cf.f = f
	cf.mu.Unlock()
	return nil
}

// MayContain reports whether code could be a known coupon code.
// A false result is definitive; a true result must be confirmed by lookup.
func (cf *CodeFilter) MayContain(code string) bool {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	return cf.f.TestString(strings.ToUpper(code))
}

// Add records a newly created code so it passes the filter before the next
// full reload.
func (cf *CodeFilter) Add(code string) {
	cf.mu.Lock()
	cf.f.AddString(strings.ToUpper(code))
	cf.mu.Unlock()
}

// RefreshLoop reloads the filter every interval until ctx is cancelled.
func (cf *CodeFilter) RefreshLoop(ctx context.Context, repo Repository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = cf.Reload(ctx, repo)
		}
	}
}
