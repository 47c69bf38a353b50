package types

import "context"

// Loader is the contract between the cache and the expensive computation it fronts.
type Loader[K comparable, V any] interface {

	/*
		Load is called when the cache misses.
		1. Cache checks memory → key not found (or expired)
		2. Cache calls Load(key), once, no matter how many callers are waiting
		3. Loader computes the value (LLM call, DB query, ...)
		4. Cache stores the result and hands it to every waiter

		Load may be slow and may fail. A failure is never cached.
	*/
	Load(ctx context.Context, key K) (V, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Load calls f(ctx, key).
func (f LoaderFunc[K, V]) Load(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}
