// Package memo provides the per-key request memoization cache used by the
// segment service. The first caller for a key starts the fetch; every other
// caller, concurrent or later, shares that outcome, failures included. Entries
// live for the process lifetime unless a TTL is configured or the key is
// explicitly invalidated, so the cache never issues a second upstream call for
// a key on its own.
package memo
