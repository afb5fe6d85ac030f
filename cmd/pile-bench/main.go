// pile-bench - Benchmark tool for a pile.Database
//
// Usage:
//
//	pile-bench [flags]
//
// Flags:
//
//	-data string     Data directory (default "bench-data")
//	-clients int     Number of parallel goroutines (default 50)
//	-requests int    Total number of operations (default 100000)
//	-batch int       Records per Append call for the put/mixed tests (default 1)
//	-test string     Test type: put,get,mixed (default "mixed")
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gostkin/data-pile"
	"github.com/gostkin/data-pile/codec"
)

func main() {
	dataDir := flag.String("data", "bench-data", "Data directory")
	clients := flag.Int("clients", 50, "Number of parallel goroutines")
	requests := flag.Int("requests", 100000, "Total number of operations")
	batch := flag.Int("batch", 1, "Records per Append call for the put/mixed tests")
	testType := flag.String("test", "mixed", "Test type: put,get,mixed")
	flag.Parse()

	fmt.Println("====== pile Benchmark ======")
	fmt.Printf("Data dir: %s\n", *dataDir)
	fmt.Printf("Clients: %d\n", *clients)
	fmt.Printf("Requests: %d\n", *requests)
	fmt.Printf("Batch: %d\n", *batch)
	fmt.Printf("Test: %s\n", *testType)
	fmt.Println()

	db, err := pile.NewBuilder().
		WithSerializer(codec.LengthPrefixed{}).
		Open(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pile-bench: open failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Pre-seed keys for the get test so lookups hit real records rather
	// than measuring the not-found path.
	if *testType == "get" || *testType == "mixed" {
		seedCount := *requests / *clients
		for c := 0; c < *clients; c++ {
			records := make([]pile.Record, 0, seedCount)
			for j := 0; j < seedCount; j++ {
				key := fmt.Sprintf("key:%d:%d", c, j)
				records = append(records, pile.NewRecord([]byte(key), []byte("seed-value")))
			}
			if len(records) > 0 {
				if err := db.Append(records); err != nil {
					fmt.Fprintf(os.Stderr, "pile-bench: seed failed: %v\n", err)
					os.Exit(1)
				}
			}
		}
	}

	var completed int64
	var errorsCount int64
	reqPerClient := *requests / *clients

	start := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()

			pending := make([]pile.Record, 0, *batch)
			flush := func() {
				if len(pending) == 0 {
					return
				}
				if err := db.Append(pending); err != nil {
					atomic.AddInt64(&errorsCount, int64(len(pending)))
				} else {
					atomic.AddInt64(&completed, int64(len(pending)))
				}
				pending = pending[:0]
			}

			for j := 0; j < reqPerClient; j++ {
				key := fmt.Sprintf("bench:%d:%d", clientID, j)
				value := fmt.Sprintf("value:%d:%d", clientID, j)

				op := *testType
				if op == "mixed" {
					if j%2 == 0 {
						op = "put"
					} else {
						op = "get"
					}
				}

				switch op {
				case "put":
					pending = append(pending, pile.NewRecord([]byte(key), []byte(value)))
					if len(pending) >= *batch {
						flush()
					}
				case "get":
					lookupKey := fmt.Sprintf("key:%d:%d", clientID, j/2)
					if _, _, err := db.Get([]byte(lookupKey)); err != nil {
						atomic.AddInt64(&errorsCount, 1)
					} else {
						atomic.AddInt64(&completed, 1)
					}
				default:
					atomic.AddInt64(&errorsCount, 1)
				}
			}
			flush()
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("====== Results ======")
	fmt.Printf("Total time: %v\n", elapsed)
	fmt.Printf("Completed: %d\n", completed)
	fmt.Printf("Errors: %d\n", errorsCount)
	fmt.Printf("Ops/sec: %.2f\n", float64(completed)/elapsed.Seconds())
	if completed > 0 {
		fmt.Printf("Avg latency: %.3f ms\n", elapsed.Seconds()*1000/float64(completed))
	}
}
