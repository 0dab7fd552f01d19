package events

import (
	"iter"

	"github.com/teranos/filestore/like"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/query"
)

// Query selects events. Methods narrow the selection and return the same
// Query for chaining; GetResultStream evaluates it. A Query may be
// evaluated any number of times.
type Query struct {
	src      query.Source[*model.Event]
	criteria query.Criteria[*model.Event]
	from, to *int64
}

func newQuery(src query.Source[*model.Event]) *Query {
	return &Query{
		src:      src,
		criteria: query.New[*model.Event]().OrderBy(query.ByTime[*model.Event](), query.Descending),
	}
}

// Type keeps events of any of types. Calling it with no types changes nothing.
func (q *Query) Type(types ...string) *Query {
	if len(types) > 0 {
		q.criteria = q.criteria.Where(query.In(func(e *model.Event) string { return e.Type }, types...))
	}
	return q
}

// Realm keeps events of realmID.
func (q *Query) Realm(realmID string) *Query {
	q.criteria = q.criteria.Where(query.Equal(func(e *model.Event) string { return e.RealmID }, realmID))
	return q
}

// Client keeps events of clientID.
func (q *Query) Client(clientID string) *Query {
	q.criteria = q.criteria.Where(query.Equal(func(e *model.Event) string { return e.ClientID }, clientID))
	return q
}

// User keeps events of userID.
func (q *Query) User(userID string) *Query {
	q.criteria = q.criteria.Where(query.Equal(func(e *model.Event) string { return e.UserID }, userID))
	return q
}

// IPAddress keeps events from ip.
func (q *Query) IPAddress(ip string) *Query {
	q.criteria = q.criteria.Where(query.Equal(func(e *model.Event) string { return e.IPAddress }, ip))
	return q
}

// FromDate keeps events at or after from (epoch millis).
func (q *Query) FromDate(from int64) *Query {
	q.from = &from
	return q
}

// ToDate keeps events at or before to (epoch millis).
func (q *Query) ToDate(to int64) *Query {
	q.to = &to
	return q
}

// FirstResult skips the first n matches.
func (q *Query) FirstResult(n int) *Query {
	q.criteria = q.criteria.FirstResult(n)
	return q
}

// MaxResults caps the number of results.
func (q *Query) MaxResults(n int) *Query {
	q.criteria = q.criteria.MaxResults(n)
	return q
}

// OrderByAscTime returns oldest events first.
func (q *Query) OrderByAscTime() *Query {
	q.criteria = q.criteria.WithOrder(query.Ascending)
	return q
}

// OrderByDescTime returns newest events first. This is the default.
func (q *Query) OrderByDescTime() *Query {
	q.criteria = q.criteria.WithOrder(query.Descending)
	return q
}

// Criteria returns the accumulated criteria.
func (q *Query) Criteria() query.Criteria[*model.Event] {
	return q.criteria.Where(query.TimeWindow(func(e *model.Event) int64 { return e.Time }, q.from, q.to))
}

// GetResultStream evaluates the query.
func (q *Query) GetResultStream() (iter.Seq[*model.Event], error) {
	return query.Evaluate(q.Criteria(), q.src)
}

// AdminQuery selects admin events. It behaves like Query.
type AdminQuery struct {
	src      query.Source[*model.AdminEvent]
	criteria query.Criteria[*model.AdminEvent]
	from, to *int64
}

func newAdminQuery(src query.Source[*model.AdminEvent]) *AdminQuery {
	return &AdminQuery{
		src:      src,
		criteria: query.New[*model.AdminEvent]().OrderBy(query.ByTime[*model.AdminEvent](), query.Descending),
	}
}

// Realm keeps admin events of realmID.
func (q *AdminQuery) Realm(realmID string) *AdminQuery {
	return q.where(query.Equal(func(e *model.AdminEvent) string { return e.RealmID }, realmID))
}

// Operation keeps admin events of any of ops. Calling it with no ops changes nothing.
func (q *AdminQuery) Operation(ops ...string) *AdminQuery {
	if len(ops) == 0 {
		return q
	}
	return q.where(query.In(func(e *model.AdminEvent) string { return e.OperationType }, ops...))
}

// ResourceType keeps admin events on any of types. Calling it with no types changes nothing.
func (q *AdminQuery) ResourceType(types ...string) *AdminQuery {
	if len(types) == 0 {
		return q
	}
	return q.where(query.In(func(e *model.AdminEvent) string { return e.ResourceType }, types...))
}

// AuthRealm keeps admin events performed from realmID.
func (q *AdminQuery) AuthRealm(realmID string) *AdminQuery {
	return q.where(query.Equal(func(e *model.AdminEvent) string { return e.AuthDetails.RealmID }, realmID))
}

// AuthClient keeps admin events performed through clientID.
func (q *AdminQuery) AuthClient(clientID string) *AdminQuery {
	return q.where(query.Equal(func(e *model.AdminEvent) string { return e.AuthDetails.ClientID }, clientID))
}

// AuthUser keeps admin events performed by userID.
func (q *AdminQuery) AuthUser(userID string) *AdminQuery {
	return q.where(query.Equal(func(e *model.AdminEvent) string { return e.AuthDetails.UserID }, userID))
}

// AuthIPAddress keeps admin events performed from ip.
func (q *AdminQuery) AuthIPAddress(ip string) *AdminQuery {
	return q.where(query.Equal(func(e *model.AdminEvent) string { return e.AuthDetails.IPAddress }, ip))
}

// ResourcePath keeps admin events whose resource path matches pattern,
// where * matches any run of characters.
func (q *AdminQuery) ResourcePath(pattern string) *AdminQuery {
	return q.where(query.Like(func(e *model.AdminEvent) string { return e.ResourcePath }, like.FromWildcard(pattern)))
}

// FromTime keeps admin events at or after from (epoch millis).
func (q *AdminQuery) FromTime(from int64) *AdminQuery {
	q.from = &from
	return q
}

// ToTime keeps admin events at or before to (epoch millis).
func (q *AdminQuery) ToTime(to int64) *AdminQuery {
	q.to = &to
	return q
}

// FirstResult skips the first n matches.
func (q *AdminQuery) FirstResult(n int) *AdminQuery {
	q.criteria = q.criteria.FirstResult(n)
	return q
}

// MaxResults caps the number of results.
func (q *AdminQuery) MaxResults(n int) *AdminQuery {
	q.criteria = q.criteria.MaxResults(n)
	return q
}

// OrderByAscTime returns oldest admin events first.
func (q *AdminQuery) OrderByAscTime() *AdminQuery {
	q.criteria = q.criteria.WithOrder(query.Ascending)
	return q
}

// OrderByDescTime returns newest admin events first. This is the default.
func (q *AdminQuery) OrderByDescTime() *AdminQuery {
	q.criteria = q.criteria.WithOrder(query.Descending)
	return q
}

// Criteria returns the accumulated criteria.
func (q *AdminQuery) Criteria() query.Criteria[*model.AdminEvent] {
	return q.criteria.Where(query.TimeWindow(func(e *model.AdminEvent) int64 { return e.Time }, q.from, q.to))
}

// GetResultStream evaluates the query.
func (q *AdminQuery) GetResultStream() (iter.Seq[*model.AdminEvent], error) {
	return query.Evaluate(q.Criteria(), q.src)
}

func (q *AdminQuery) where(f query.Filter[*model.AdminEvent]) *AdminQuery {
	q.criteria = q.criteria.Where(f)
	return q
}
