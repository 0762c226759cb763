// Package observability owns process logging setup and prometheus collectors
// for resolver lookups, cache hits and transport breaker state.
package observability
