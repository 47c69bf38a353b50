package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/llm"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/types"
)

// ================= MODEL =================

// slowModel answers after a short pause and counts its calls.
type slowModel struct {
	calls atomic.Int64
	clock types.Clock
	fail  atomic.Bool
}

func (m *slowModel) Generate(ctx context.Context, p llm.Prompt) (llm.Response, error) {
	m.calls.Add(1)
	fmt.Println("MODEL  → generating:", p)
	time.Sleep(100 * time.Millisecond)
	if m.fail.Load() {
		return llm.Response{}, llm.ErrGenerationFailed
	}
	return llm.Response{Prompt: p, Answer: "Answer to: " + string(p), CreatedAt: m.clock.Now()}, nil
}

func printData(c *cache.BoundedCache[llm.Prompt, llm.Response]) {
	for _, e := range c.Snapshot() {
		fmt.Printf("         %-3s → %s\n", e.Key, e.Value)
	}
}

// ================= MAIN =================

func main() {
	ctx := context.Background()

	fmt.Println("\n==================== SYSTEM BOOT ====================")

	// ---------------- System Config ----------------
	fmt.Println("EVICTION POLICY : LRU")
	fmt.Println("TTL STRATEGY    : ExpireAfterWrite (15s)")
	fmt.Println("CAPACITY        : 3 prompts")
	fmt.Println("CLOCK           : manual")

	clock := types.NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	model := &slowModel{clock: clock}
	loader := llm.NewLoader(model)

	c, err := cache.New(cache.Config[llm.Prompt, llm.Response]{
		MaxSize: 3,
		TTL:     15 * time.Second,
		Clock:   clock,
		Logger:  logger.Discard(),
		RemovalListener: func(p llm.Prompt, r llm.Response, cause types.RemovalCause) {
			fmt.Printf("[MANUAL] Removed %s -> %s (cause: %s)\n", p, r, cause)
		},
	})
	if err != nil {
		panic(err)
	}

	get := func(p llm.Prompt) {
		r, err := c.GetOrLoad(ctx, p, loader)
		if err != nil {
			fmt.Printf("CACHE  → GET %s failed: %v\n", p, err)
			return
		}
		fmt.Printf("CACHE  → GET %s = %s\n", p, r)
	}

	// ====================================================
	fmt.Println("\n==================== 1) CACHE MISS ====================")
	get("a")
	get("b")
	get("c")

	// ====================================================
	fmt.Println("\n==================== 2) CACHE HIT ====================")
	get("a")

	// ====================================================
	fmt.Println("\n==================== 3) LRU EVICTION ====================")
	get("d")
	c.Flush()
	fmt.Println("CACHE  → contents:")
	printData(c)

	// ====================================================
	fmt.Println("\n==================== 4) TTL EXPIRATION ====================")
	clock.Advance(15 * time.Second)
	fmt.Println("CLOCK  → +15s")
	get("a")
	c.Flush()

	// ====================================================
	fmt.Println("\n==================== 5) SINGLEFLIGHT ====================")
	before := model.calls.Load()

	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r, _ := c.GetOrLoad(ctx, "e", loader)
			fmt.Printf("GOROUTINE-%d → GET e = %s\n", id, r)
		}(i)
	}
	wg.Wait()
	fmt.Println("MODEL  → calls for e:", model.calls.Load()-before)

	// ====================================================
	fmt.Println("\n==================== 6) LOAD FAILURE ====================")
	model.fail.Store(true)
	_, err = c.GetOrLoad(ctx, "f", loader)
	fmt.Println("CACHE  → load failed:", errors.Is(err, cache.ErrLoadFailed))
	model.fail.Store(false)

	// ====================================================
	fmt.Println("\n==================== 7) INVALIDATE ====================")
	c.Invalidate("e")
	c.Flush()
	fmt.Println("CACHE  → INVALIDATE e")
	c.InvalidateAll()
	c.Flush()
	fmt.Println("CACHE  → INVALIDATE ALL, size =", c.Len())

	// ====================================================
	s := c.Stats()
	fmt.Println("\n==================== STATS ====================")
	fmt.Printf("HITS          : %d\n", s.HitCount)
	fmt.Printf("MISSES        : %d\n", s.MissCount)
	fmt.Printf("LOAD SUCCESS  : %d\n", s.LoadSuccessCount)
	fmt.Printf("LOAD FAILURE  : %d\n", s.LoadFailureCount)
	fmt.Printf("TOTAL LOAD    : %v\n", time.Duration(s.TotalLoadTimeNanos))
	fmt.Printf("EVICTIONS     : %d\n", s.EvictionCount)
	fmt.Printf("EXPIRED       : %d\n", s.ExpirationCount)
	fmt.Printf("HIT RATE      : %.2f\n", s.HitRate)

	// ====================================================
	fmt.Println("\n==================== SHUTDOWN ====================")
	c.Close()
	fmt.Println("SYSTEM → cache closed cleanly")
}
