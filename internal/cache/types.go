package cache

// Cache is a keyed memo table.
type Cache[K comparable, V any] interface {
	// Get returns a cached value. ok=false if missing.
	Get(key K) (V, bool)
	// Set caches a value, evicting the least recently used entry if needed.
	Set(key K, value V)
	// Len returns the number of cached entries.
	Len() int
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
