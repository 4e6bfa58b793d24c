// Package registry keeps named, frozen bag layers that many bags share, such
// as client-wide defaults or per-tenant overrides.
//
// Each published layer belongs to a Scope. Scopes order the layers when a bag
// is assembled from several of them: the highest priority is pushed last and
// therefore wins.
//
// Data flow:
//
//	Publish -> Acquire/Bag (shared handles) -> Mutate (copy-on-write) -> Retire
//
// Mutate edits a copy taken through FrozenLayer.Modify outside the registry
// lock and swaps it in only if the entry did not change meanwhile. Bags or
// callers still holding an acquired handle keep reading the old contents.
//
// Every transition emits a pkg/activity event and is logged through slog.
package registry
