package session

import "sync/atomic"

// Identifiers hands out factory identities. The zero value is ready to use;
// the first call to Next returns 1.
type Identifiers struct {
	last atomic.Int64
}

// Next returns an id strictly greater than every id returned before it.
func (i *Identifiers) Next() int64 {
	return i.last.Add(1)
}
