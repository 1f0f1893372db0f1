// Package preflight provides readiness checks for the filesystem paths and
// external binaries clipset depends on.
//
// These checks run in two contexts:
//   - The build and fetch commands call RunAll and CheckSystemDeps before
//     starting work so a missing directory or binary fails fast instead of
//     producing a batch of per-item errors.
//   - The CLI "clipset status" command renders the same results as a table.
package preflight
