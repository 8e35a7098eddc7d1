// Package allocator assigns each project the lowest free slot index.
//
// Allocation is idempotent: a project that already holds a claim gets its
// index back untouched. Otherwise candidates are scanned in ascending order
// and rejected when:
//
//   - another project's claim holds the index,
//   - any candidate port appears in another project's port map (guards
//     against stale or hand-edited records),
//   - the OS reports a listener on the candidate's postgres port (only that
//     one port is probed per candidate), or
//   - the claim strategy reports a conflict.
//
// The first survivor is persisted and returned. When none survives the
// allocation fails with errors.ExitSlotsExhausted and nothing is written.
//
// # Concurrent setups
//
// Two processes may scan the registry at the same moment and pick the same
// index. The SlotMarkers strategy closes that window: a slot is only taken
// after exclusively creating <root>/.slots/<index>.claim, so the loser of a
// race moves on to the next index. The Unguarded strategy skips the markers
// and leaves the window open.
package allocator
