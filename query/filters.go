package query

import (
	"cmp"
	"slices"

	"github.com/teranos/filestore/like"
	"github.com/teranos/filestore/model"
)

// Equal matches entities whose field equals want exactly.
func Equal[T any](field func(T) string, want string) Filter[T] {
	return func(e T) bool { return field(e) == want }
}

// In matches entities whose field is one of wants. With no wants it matches nothing.
func In[T any](field func(T) string, wants ...string) Filter[T] {
	set := make(map[string]struct{}, len(wants))
	for _, w := range wants {
		set[w] = struct{}{}
	}
	return func(e T) bool {
		_, ok := set[field(e)]
		return ok
	}
}

// TimeWindow matches entities whose time lies within [from, to].
// A nil bound is open.
func TimeWindow[T any](field func(T) int64, from, to *int64) Filter[T] {
	if from == nil && to == nil {
		return nil
	}
	return func(e T) bool {
		t := field(e)
		if from != nil && t < *from {
			return false
		}
		if to != nil && t > *to {
			return false
		}
		return true
	}
}

// Like matches entities whose field matches the LIKE pattern.
func Like[T any](field func(T) string, pattern string) Filter[T] {
	return func(e T) bool { return like.Match(field(e), pattern) }
}

// InsensitiveLike matches entities whose field matches the LIKE pattern ignoring case.
func InsensitiveLike[T any](field func(T) string, pattern string) Filter[T] {
	return func(e T) bool { return like.MatchFold(field(e), pattern) }
}

// Any matches entities passing at least one of filters.
func Any[T any](filters ...Filter[T]) Filter[T] {
	filters = slices.DeleteFunc(slices.Clone(filters), func(f Filter[T]) bool { return f == nil })
	return func(e T) bool {
		for _, f := range filters {
			if f(e) {
				return true
			}
		}
		return false
	}
}

// ByTime orders timestamped entities by time.
func ByTime[T model.Timestamped]() Compare[T] {
	return func(a, b T) int { return cmp.Compare(a.GetTime(), b.GetTime()) }
}

// ByString orders entities by a string field.
func ByString[T any](field func(T) string) Compare[T] {
	return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
}
