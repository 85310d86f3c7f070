// Package objectstore provides the remote object store used for the rule
// corpus and for batch input and output sheets.
//
// S3 talks to Amazon S3 or any S3-compatible endpoint through
// aws-sdk-go-v2. Memory is an in-process implementation. Tier adapts a Store
// to a read-only content resolution tier whose hits are backfilled into the
// cache.
package objectstore
