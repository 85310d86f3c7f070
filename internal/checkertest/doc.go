// Package checkertest provides test doubles for the checker: a mock chat
// completions HTTP server and an in-process Fake.
package checkertest
