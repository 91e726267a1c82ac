// Package store persists the gateway's in-memory state as
// whole-collection snapshots.
//
// The device registry and room layout are small enough to serialise in
// full, so the store keeps one JSON document per collection in a
// single SQLite table and replaces it atomically on every write. There
// are no per-record rows and no migrations beyond the snapshots table
// itself.
//
// Writes are debounced by the Scheduler: mutations call Schedule,
// which arms a timer on the first call and absorbs the rest, and one
// cumulative write happens when the timer fires. Reads always come
// from memory; the store is only consulted at startup to seed the
// registries and never blocks the ingestion or API paths.
//
// Usage:
//
//	st := store.NewSQLite(db)
//	st.Init(ctx)
//
//	sched := store.NewScheduler(st, 2*time.Second)
//	sched.Register(store.CollectionDevices, func() (any, error) {
//		return registry.Snapshot(), nil
//	})
//	registry.SetPersister(sched)
package store
