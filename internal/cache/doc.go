// Package cache provides a small generic LRU used for memoizing parse and
// classification results during dataset loads.
//
// A capacity of zero disables eviction; the cache then behaves like a plain
// memo table that lives as long as the dataset load that owns it.
//
// Hit and miss counters are kept with atomics so Stats can be read without
// taking the cache lock.
package cache
