package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/types"
)

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	// ---------------- Cache Config ----------------
	const (
		capacity    = 50000
		keySpace    = 100000
		preloadKeys = 50000
		goroutines  = 200
		opsPerG     = 5000
		loadLatency = 50 * time.Microsecond
	)

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")

	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Capacity     :", capacity)
	fmt.Println("Key Space    :", keySpace)
	fmt.Println("Preload Keys :", preloadKeys)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("Load Latency :", loadLatency)
	fmt.Println("---------------------------------")

	c, err := cache.New(cache.Config[int, int]{
		MaxSize: capacity,
		TTL:     time.Minute,
		Logger:  logger.Discard(),
	})
	if err != nil {
		panic(err)
	}

	loader := types.LoaderFunc[int, int](func(ctx context.Context, key int) (int, error) {
		time.Sleep(loadLatency)
		return key * 2, nil
	})

	// ---------------- Preload Cache ----------------
	fmt.Println("Preloading cache...")
	for i := 0; i < preloadKeys; i++ {
		c.Put(i, i*2)
	}
	fmt.Println("Preload complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < goroutines; i++ {
		id := i
		g.Go(func() error {
			for j := 0; j < opsPerG; j++ {
				// Skewed access: most workers hammer the preloaded half.
				key := (id*opsPerG + j*7) % keySpace
				if j%4 != 0 {
					key %= preloadKeys
				}
				v, err := c.GetOrLoad(gctx, key, loader)
				if err != nil {
					return err
				}
				if v != key*2 {
					return fmt.Errorf("key %d: got %d", key, v)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Println("BENCHMARK FAILED:", err)
	}

	duration := time.Since(start)
	totalOps := goroutines * opsPerG
	s := c.Stats()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Hit Rate         : %.4f\n", s.HitRate)
	fmt.Printf("Loads            : %d\n", s.LoadSuccessCount)
	fmt.Printf("Avg Load Penalty : %v\n", s.AverageLoadPenalty())
	fmt.Printf("Evictions        : %d\n", s.EvictionCount)
	fmt.Printf("Entries          : %d\n", c.Len())
	fmt.Println("=========================================")

	c.Close()
}
