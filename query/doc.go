// Package query evaluates filter / sort / paginate criteria over a stream
// of entities.
//
// There is no planner and no index. Evaluate reads every entity its Source
// yields, keeps those that pass all filters, sorts the survivors and cuts
// the requested page:
//
//	[Source] → filter (AND) → sort → skip FirstResult → take MaxResults
//
// Criteria is an immutable value. Every configuration method returns a new
// Criteria, so a base query can be shared and specialised freely:
//
//	base := query.New[*model.Event]().OrderBy(query.ByTime[*model.Event](), query.Descending)
//	page := base.
//		Where(query.Equal(func(e *model.Event) string { return e.RealmID }, "master")).
//		FirstResult(20).
//		MaxResults(10)
//	events, err := query.Evaluate(page, store.Source())
//
// # Ordering
//
// The default direction is Descending. Entities that compare equal on the
// configured key are ordered by id ascending, so results are deterministic
// regardless of the order the source yields them in. Without a key, results
// are ordered by id ascending.
//
// # Pagination
//
// FirstResult skips that many results; a negative value skips none.
// MaxResults caps the page; when it was never set there is no cap, and an
// explicit value of zero or less yields an empty page.
package query
