package cache_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/types"
)

var echoLoader = types.LoaderFunc[string, int](func(ctx context.Context, key string) (int, error) {
	return len(key), nil
})

func newBenchmarkCache(b *testing.B, maxSize int) *cache.BoundedCache[string, int] {
	b.Helper()

	c, err := cache.New(cache.Config[string, int]{
		MaxSize: maxSize,
		TTL:     10 * time.Second,
		Logger:  logger.Discard(),
		RemovalListener: func(string, int, types.RemovalCause) {
		},
	})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(c.Close)
	return c
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkCacheGetHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, 100000)

	c.Put("key", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrLoad(ctx, "key", echoLoader)
	}
}

func BenchmarkCacheGetMiss(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, 100000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrLoad(ctx, "miss-"+strconv.Itoa(i), echoLoader)
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkCacheParallelGet(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, 100000)

	for i := 0; i < 1000; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.GetOrLoad(ctx, "key-42", echoLoader)
		}
	})
}

//
// ================= WRITE BENCH =================
//

// Puts past capacity, so every iteration also evicts and notifies.
func BenchmarkCachePutEvicting(b *testing.B) {
	c := newBenchmarkCache(b, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(strconv.Itoa(i), i)
	}
}

//
// ================= HIGH CONCURRENCY TEST =================
//

func BenchmarkCacheHighConcurrency(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, 5000)

	keys := make([]string, 10000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				c.GetOrLoad(ctx, keys[(id*31+j)%len(keys)], echoLoader)
			}
		}(i)
	}
	wg.Wait()
}
