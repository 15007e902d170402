// Package syncs provides synchronization primitives used by concurrent
// catalog operations.
//
// Schema extraction and resolution fan out across many sources, but writes
// under a single API path must be serialized. [KeyLock] provides the per-key
// mutual exclusion used for that.
package syncs
