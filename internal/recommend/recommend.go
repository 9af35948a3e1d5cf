// Package recommend finds the most specific item-search query that can be
// built from a ranked list of keywords.
//
// The search starts from the top keyword and walks subsets of the ranking in
// order: a query with several matches is narrowed by appending the next
// keyword, a query with no match moves its last keyword along (going up a
// level when it runs out), and a query with exactly one match ends the search.
// Among all queries that returned an item, the one with the fewest matches wins.
package recommend

import (
	"context"
	"errors"
	"fmt"
)

// ErrInterrupted is returned alongside the best candidate so far when the
// context ends before the search converges.
var ErrInterrupted = errors.New("recommendation search interrupted")

// Oracle searches for items matching all of the given terms.
type Oracle[T any] interface {
	// Search returns the top item (nil when there is none) and the total number
	// of matching items, regardless of how many were returned.
	Search(ctx context.Context, terms []string) (*T, int, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc[T any] func(ctx context.Context, terms []string) (*T, int, error)

// Search calls f.
func (f OracleFunc[T]) Search(ctx context.Context, terms []string) (*T, int, error) {
	return f(ctx, terms)
}

// Candidate is the best item seen so far and the match count of its query.
type Candidate[T any] struct {
	Item  *T
	Count int
}

// Found returns true if an item was recommended.
func (c Candidate[T]) Found() bool {
	return c.Item != nil
}

// offer keeps item if it came from a narrower query than the current one.
func (c Candidate[T]) offer(item *T, count int) (Candidate[T], bool) {
	if item != nil && (c.Item == nil || count < c.Count) {
		return Candidate[T]{Item: item, Count: count}, true
	}
	return c, false
}

// Step describes a single oracle query.
type Step struct {
	Path     []int
	Terms    []string
	Count    int
	Found    bool // the oracle returned an item
	Improved bool // the item became the new best candidate
}

// Observer receives every step of a search. It is for diagnostics only.
type Observer interface {
	Observe(Step)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Step)

// Observe calls f.
func (f ObserverFunc) Observe(s Step) {
	f(s)
}

type options struct {
	observers []Observer
}

// Option configures a search.
type Option func(*options)

// WithObserver registers an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observers = append(opts.observers, o)
		}
	}
}

// Search runs the subset search over ranking against oracle.
//
// An oracle error aborts the search and is returned without a candidate.
// If ctx ends between queries, the best candidate so far is returned with an
// error wrapping ErrInterrupted.
func Search[T any](ctx context.Context, ranking []string, oracle Oracle[T], opts ...Option) (Candidate[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var best Candidate[T]
	p := path{0}
	for {
		if err := ctx.Err(); err != nil {
			return best, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		terms := p.terms(ranking)
		item, count, err := oracle.Search(ctx, terms)
		if err != nil {
			return Candidate[T]{}, fmt.Errorf("failed to search %q: %w", terms, err)
		}

		var improved bool
		best, improved = best.offer(item, count)
		for _, obs := range o.observers {
			obs.Observe(Step{Path: p, Terms: terms, Count: count, Found: item != nil, Improved: improved})
		}

		var ok bool
		if p, ok = next(p, count, len(ranking)); !ok {
			return best, nil
		}
	}
}
