// Package fetch downloads remote clips into a local videos directory.
//
// Fetcher resolves one identifier through a Resolver backend at the canonical
// quality and writes exactly one file. BatchFetcher fans a table of items out
// over a bounded worker pool and returns one Result per item in input order;
// failures are data, not control flow, so one bad identifier never affects
// another slot.
package fetch
