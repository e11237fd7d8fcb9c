// Package testdb opens one object store per test.
//
// Each TestDB is independent: memory stores are fresh, SQLite stores live
// in the test's temp dir and SurrealDB stores use a unique namespace. Call
// Close when done; Reset empties the store for the next subtest.
package testdb
