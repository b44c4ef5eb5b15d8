// Package cache provides the process-wide query cache used by every data view.
//
// The cache maps a structured Key to an entry that is pending, fulfilled or
// rejected. Key features:
//   - In-flight de-duplication: concurrent callers for one key share a fetch
//   - Staleness window (default 5 minutes) with stale-while-revalidate refetch
//   - Garbage collection of unobserved entries (default 10 minutes)
//   - Prefix invalidation that keeps serving the previous value until replaced
//   - Optional on-disk hydration in ~/.dexter/cache/ so short-lived CLI runs
//     reuse results fetched inside the staleness window
//
// Rejected entries are never retried automatically; callers ask for a hard
// refresh when the user triggers one.
package cache
