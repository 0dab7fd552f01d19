package query

import (
	"cmp"
	"iter"
	"slices"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/model"
)

// Order is the sort direction of the primary key.
type Order int

const (
	Descending Order = iota // default
	Ascending
)

func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// Filter reports whether an entity belongs in the result.
type Filter[T any] func(T) bool

// Compare orders two entities, returning <0, 0 or >0 as cmp.Compare does.
type Compare[T any] func(a, b T) int

// Source yields the unfiltered entities a query runs over.
// A Source error aborts the query and is returned to the caller unchanged
// apart from wrapping; nothing retries.
type Source[T any] func() (iter.Seq[T], error)

// Criteria is an immutable query description.
// The zero value matches everything, ordered by id, without pagination.
type Criteria[T model.Entity] struct {
	filters []Filter[T]
	compare Compare[T]
	order   Order
	first   *int
	max     *int
}

// New returns empty criteria.
func New[T model.Entity]() Criteria[T] {
	return Criteria[T]{}
}

// Where adds a filter. Filters are conjunctive. A nil filter is ignored.
func (c Criteria[T]) Where(f Filter[T]) Criteria[T] {
	if f == nil {
		return c
	}
	// Clip so appending never writes into a backing array shared with c.
	c.filters = append(slices.Clip(c.filters), f)
	return c
}

// OrderBy sets the primary sort key and direction.
func (c Criteria[T]) OrderBy(compare Compare[T], order Order) Criteria[T] {
	c.compare = compare
	c.order = order
	return c
}

// WithOrder changes the direction and keeps the key.
func (c Criteria[T]) WithOrder(order Order) Criteria[T] {
	c.order = order
	return c
}

// FirstResult sets the number of results to skip.
func (c Criteria[T]) FirstResult(n int) Criteria[T] {
	c.first = &n
	return c
}

// MaxResults sets the page size.
func (c Criteria[T]) MaxResults(n int) Criteria[T] {
	c.max = &n
	return c
}

// Unbounded passed as max to Page leaves the page size unset.
const Unbounded = -1

// Page applies optional pagination the way provider stream operations take
// it: first ≤ 0 skips nothing, max < 0 leaves the size unset and max == 0
// yields an empty page.
func (c Criteria[T]) Page(first, max int) Criteria[T] {
	if first > 0 {
		c = c.FirstResult(first)
	}
	if max >= 0 {
		c = c.MaxResults(max)
	}
	return c
}

// Order returns the configured direction.
func (c Criteria[T]) Order() Order { return c.order }

// First returns the configured offset and whether it was set.
func (c Criteria[T]) First() (int, bool) {
	if c.first == nil {
		return 0, false
	}
	return *c.first, true
}

// Max returns the configured page size and whether it was set.
func (c Criteria[T]) Max() (int, bool) {
	if c.max == nil {
		return 0, false
	}
	return *c.max, true
}

// Matches reports whether e passes every filter.
func (c Criteria[T]) Matches(e T) bool {
	for _, f := range c.filters {
		if !f(e) {
			return false
		}
	}
	return true
}

func (c Criteria[T]) less(a, b T) int {
	if c.compare != nil {
		r := c.compare(a, b)
		if c.order == Descending {
			r = -r
		}
		if r != 0 {
			return r
		}
	}
	return cmp.Compare(a.GetID(), b.GetID())
}

// window returns the [lo, hi) bounds of the page within n sorted results.
func (c Criteria[T]) window(n int) (int, int) {
	lo := 0
	if c.first != nil && *c.first > 0 {
		lo = min(*c.first, n)
	}
	hi := n
	if c.max != nil {
		if *c.max <= 0 {
			return lo, lo
		}
		hi = min(lo+*c.max, n)
	}
	return lo, hi
}

// Evaluate runs c over the entities src yields.
func Evaluate[T model.Entity](c Criteria[T], src Source[T]) (iter.Seq[T], error) {
	page, err := collect(c, src)
	if err != nil {
		return nil, err
	}
	return slices.Values(page), nil
}

// Collect is Evaluate returning a slice.
func Collect[T model.Entity](c Criteria[T], src Source[T]) ([]T, error) {
	return collect(c, src)
}

// Count returns the number of entities passing the filters of c,
// ignoring pagination.
func Count[T model.Entity](c Criteria[T], src Source[T]) (int, error) {
	seq, err := read(src)
	if err != nil {
		return 0, err
	}
	n := 0
	for e := range seq {
		if c.Matches(e) {
			n++
		}
	}
	return n, nil
}

// FirstMatch returns the first result of c, if any.
func FirstMatch[T model.Entity](c Criteria[T], src Source[T]) (T, bool, error) {
	var zero T
	page, err := collect(c.MaxResults(1), src)
	if err != nil || len(page) == 0 {
		return zero, false, err
	}
	return page[0], true, nil
}

func read[T any](src Source[T]) (iter.Seq[T], error) {
	if src == nil {
		return nil, errors.NewInvalidArgumentError("query source is nil")
	}
	seq, err := src()
	if err != nil {
		return nil, errors.Wrap(err, "read query source")
	}
	return seq, nil
}

func collect[T model.Entity](c Criteria[T], src Source[T]) ([]T, error) {
	seq, err := read(src)
	if err != nil {
		return nil, err
	}
	return Select(c, seq), nil
}

// Select runs c over entities already read, returning the page as a slice.
func Select[T model.Entity](c Criteria[T], seq iter.Seq[T]) []T {
	var matched []T
	for e := range seq {
		if c.Matches(e) {
			matched = append(matched, e)
		}
	}

	slices.SortFunc(matched, c.less)

	lo, hi := c.window(len(matched))
	return matched[lo:hi:hi]
}

// Apply is Select returning a sequence.
func Apply[T model.Entity](c Criteria[T], seq iter.Seq[T]) iter.Seq[T] {
	return slices.Values(Select(c, seq))
}
