// Package extraction runs the sampler over a batch of fetched clips inside a
// session bound to one output directory.
//
// A Session serializes batches in-process with a mutex and across processes
// with an advisory lock file in the output directory. Before the sampler
// runs, each item's artifact paths that do not exist yet go into a ledger,
// so a failure rolls back only what that attempt wrote. The failure policy decides the blast
// radius: "item" rolls back only the failing item and continues, "session"
// wipes every artifact in the output directory and skips the rest of the
// batch.
//
// Cleanup and RemoveOriginals refuse to operate on a missing directory or the
// filesystem root. Those path errors are always returned to the caller;
// extraction errors are recorded on the batch instead.
package extraction
