// Package filestore keeps the entity stores in sync with a directory of
// YAML files.
//
// Layout: one subdirectory per entity kind, one file per entity.
//
//	<root>/realms/<id>.yaml
//	<root>/roles/<id>.yaml
//	<root>/events/<id>.yaml
//	...
//
// Load reads every kind in parallel and swaps each store's contents in one
// step. Flush writes entities whose updated flag is set, clears the flag,
// and deletes the files it loaded or wrote for entities no longer in the
// store; files that appeared after the last load are kept. A Watcher reloads a
// kind when its files change on disk.
//
// Unflushed changes win over the files: a reload keeps entities that are
// still marked updated in memory.
package filestore
