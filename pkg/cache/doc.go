// Package cache provides the cache tier of content resolution.
//
// Two backends implement Store: Redis (github.com/redis/go-redis/v9) and an
// in-process LRU (github.com/hashicorp/golang-lru/v2). Keys are derived as
// "<prefix>:<namespace>:<hex sha256(id)>".
//
// The cache is advisory. Guard wraps a backend and, on the first backend
// error, disables it for the rest of the process; from then on lookups miss
// and writes are dropped, so a cache outage never changes results.
package cache
