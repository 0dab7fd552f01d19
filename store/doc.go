// Package store holds entities in memory, one concurrent keyed container per
// entity type.
//
// A Store maps entity id to entity. It never inspects entity contents: it
// does not enforce uniqueness beyond the id (Create overwrites), does not
// order anything (ReadAll order is unspecified) and does not track dirty
// state. Those concerns belong to the providers, the query package and the
// backing-file layer respectively.
//
// Stores live for the process. Construct them once with NewStores and pass
// them to whatever needs them; Clear empties them between tests.
//
// Semantics:
//   - Create(e): insert or replace by id; nil entity or empty id is an
//     invalid argument and changes nothing
//   - Delete(e): remove by id; absent id is a no-op
//   - Exists(id) / Get(id): never fail, absent id is simply false
//   - ReadAll(): iterate a snapshot taken at call time
//   - Replace(all): swap the whole contents atomically
//
// All methods are safe for concurrent use. The lock is never held while
// caller code runs, with the single exception of the DeleteWhere predicate.
package store
