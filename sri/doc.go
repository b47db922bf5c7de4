// Package sri composes fetching, hashing and rendering into integrity
// values for one or many resources. Each run is independent; RunAll
// hashes a list of URLs with bounded concurrency and reports the
// results in input order.
package sri
