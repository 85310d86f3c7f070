// Package resolver implements tiered content resolution.
//
// A Resolver walks an ordered list of tiers (by default the cache service,
// the remote object store and the local filesystem) and returns the first
// hit. Hits on a tier marked Backfill are copied into the earlier tiers, so a
// remote hit warms the cache while a local hit does not. A tier that errors
// is treated as absent for that lookup; correctness never depends on the
// cache.
package resolver
