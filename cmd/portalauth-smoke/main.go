// Command portalauth-smoke exercises the credential store against Redis (or
// miniredis when no address is given) and reports latency percentiles for a
// full write/read/clear credential cycle.
//
// Run:
//
//	go run ./cmd/portalauth-smoke -ops 50000 -concurrency 64
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rojgarlink/portalauth/credstore"
)

func main() {
	var (
		ops         = flag.Int("ops", 20000, "credential cycles per worker pool")
		concurrency = flag.Int("concurrency", 32, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "smoke", "credential key prefix")
	)
	flag.Parse()

	if *ops <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "ops and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	// Each worker owns its own key prefix so cycles never interleave on the
	// same credential set.
	stores := make([]*credstore.Store, *concurrency)
	for i := range stores {
		backend := credstore.NewRedisBackend(client, fmt.Sprintf("%s:%d", *prefix, i))
		stores[i] = credstore.NewStore(backend)
	}

	fmt.Printf("running %d cycles across %d workers...\n", *ops, *concurrency)

	var (
		mu        sync.Mutex
		latencies []time.Duration
		failures  int
	)
	perWorker := *ops / *concurrency
	if perWorker == 0 {
		perWorker = 1
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			store := stores[worker]
			local := make([]time.Duration, 0, perWorker)
			localFailures := 0

			for op := 0; op < perWorker; op++ {
				opStart := time.Now()
				if err := cycle(ctx, store, worker, op); err != nil {
					localFailures++
					continue
				}
				local = append(local, time.Since(opStart))
			}

			mu.Lock()
			latencies = append(latencies, local...)
			failures += localFailures
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("---- results ----")
	fmt.Printf("completed: %d  failed: %d  elapsed: %s\n", len(latencies), failures, elapsed.Round(time.Millisecond))
	if len(latencies) > 0 {
		fmt.Printf("throughput: %.0f cycles/s\n", float64(len(latencies))/elapsed.Seconds())
		printPercentiles(latencies)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

// cycle is one full credential lifetime: atomic write, the reads a page load
// performs, then clear.
func cycle(ctx context.Context, store *credstore.Store, worker, op int) error {
	userID := fmt.Sprintf("u-%d-%d", worker, op)
	cred := credstore.Credential{
		Token:     fmt.Sprintf("tok-%d-%d", worker, op),
		ExpiresIn: time.Hour,
		User: &credstore.User{
			ID:     userID,
			Phone:  "9800000000",
			Role:   "coordinator",
			Active: true,
		},
		Permissions: []string{"applications.view", "interviews.view", "interviews.schedule"},
		Portal:      credstore.PortalMember,
		AgencyID:    "ag-1",
	}

	if err := store.SetCredential(ctx, cred); err != nil {
		return err
	}
	if !store.IsTokenValid(ctx) {
		return fmt.Errorf("token invalid immediately after write")
	}
	if u := store.User(ctx); u == nil || u.ID != userID {
		return fmt.Errorf("user read mismatch")
	}
	if _, ok := store.TimeUntilExpiration(ctx); !ok {
		return fmt.Errorf("expiration missing after write")
	}
	return store.Clear(ctx)
}

func printPercentiles(latencies []time.Duration) {
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	pct := func(p float64) time.Duration {
		idx := int(p * float64(len(latencies)-1))
		return latencies[idx]
	}
	fmt.Printf("latency: p50=%s p90=%s p99=%s max=%s\n",
		pct(0.50).Round(time.Microsecond),
		pct(0.90).Round(time.Microsecond),
		pct(0.99).Round(time.Microsecond),
		latencies[len(latencies)-1].Round(time.Microsecond))
}
