package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pior/arcus"
	"github.com/pior/arcus/collection"
)

type OperationType string

const (
	SetExist     OperationType = "set-exist"
	FindPosition OperationType = "find-position"
	ItemCount    OperationType = "item-count"
	PipedInsert  OperationType = "piped-insert"
	PipedDelete  OperationType = "piped-delete"
	All          OperationType = "all"
)

type BenchmarkResult struct {
	Operation    OperationType
	Duration     time.Duration
	TotalOps     int64
	Successes    int64
	Failures     int64
	Errors       int64
	AvgLatency   time.Duration
	OpsPerSecond float64
}

// worker runs one operation and reports whether the server reported success.
type worker func(ctx context.Context, client *arcus.Client, workerID, iteration int) (bool, error)

func main() {
	var (
		operation   = flag.String("operation", "all", "Operation type: set-exist, find-position, item-count, piped-insert, piped-delete, or all")
		duration    = flag.Duration("duration", 5*time.Second, "Duration to run each benchmark")
		concurrency = flag.Int("concurrency", 4, "Number of concurrent workers")
		batchSize   = flag.Int("batch", 100, "Items per piped call")
		servers     = flag.String("servers", "localhost:11211", "Comma-separated list of arcus servers")
		usePuddle   = flag.Bool("puddle", false, "Use the puddle connection pool")
	)
	flag.Parse()

	fmt.Printf("Arcus Benchmark Tool\n")
	fmt.Printf("====================\n")
	fmt.Printf("Operation: %s\n", *operation)
	fmt.Printf("Duration: %v\n", *duration)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Servers: %s\n", *servers)
	fmt.Println()

	config := arcus.Config{
		MaxSize: int32(*concurrency),
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
	if *usePuddle {
		config.NewPool = arcus.NewPuddlePool
	}

	client, err := arcus.NewClient(arcus.NewStaticServers(strings.Split(*servers, ",")...), config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	fmt.Print("Preparing collections...")
	if err := prepare(client, *concurrency); err != nil {
		fmt.Printf(" failed: %v\n", err)
		fmt.Printf("Make sure an arcus server is running on %s\n", *servers)
		return
	}
	fmt.Println(" done")

	workers := map[OperationType]worker{
		SetExist:     setExist,
		FindPosition: findPosition,
		ItemCount:    itemCount,
		PipedInsert:  pipedInsert(*batchSize),
		PipedDelete:  pipedDelete(*batchSize),
	}

	operations := []OperationType{SetExist, FindPosition, ItemCount, PipedInsert, PipedDelete}
	if OperationType(*operation) != All {
		if _, ok := workers[OperationType(*operation)]; !ok {
			log.Fatalf("Unknown operation: %s", *operation)
		}
		operations = []OperationType{OperationType(*operation)}
	}

	for _, op := range operations {
		fmt.Printf("\n--- Running %s benchmark ---\n", op)
		printResult(run(client, op, workers[op], *duration, *concurrency))
	}

	stats := client.Stats()
	fmt.Printf("\nClient: %d errors, %d protocol errors, %d piped items (%d failed)\n",
		stats.Errors, stats.ProtocolErrors, stats.PipedItems, stats.PipedFailures)
}

func prepare(client *arcus.Client, concurrency int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	elements := make([]collection.Element, 1000)
	for i := range elements {
		elements[i] = collection.Element{BKey: collection.UintBKey(uint64(i)), Value: []byte("bench")}
	}
	attrs := &collection.Attributes{MaxCount: 50000}

	if _, err := client.BopPipedInsertBulk(ctx, "bench:btree", elements, attrs); err != nil {
		return err
	}
	if _, err := client.SopPipedInsertBulk(ctx, "bench:set", [][]byte{[]byte("member")}, attrs); err != nil {
		return err
	}
	for i := range concurrency {
		key := fmt.Sprintf("bench:btree:%d", i)
		if _, err := client.BopPipedInsertBulk(ctx, key, elements[:1], attrs); err != nil {
			return err
		}
	}
	return nil
}

func setExist(ctx context.Context, client *arcus.Client, _, _ int) (bool, error) {
	status, err := client.SopExist(ctx, "bench:set", []byte("member"))
	return status.Success, err
}

func findPosition(ctx context.Context, client *arcus.Client, _, iteration int) (bool, error) {
	_, status, err := client.BopFindPosition(ctx, "bench:btree", collection.UintBKey(uint64(iteration%1000)), collection.Ascending)
	return status.Success, err
}

func itemCount(ctx context.Context, client *arcus.Client, _, _ int) (bool, error) {
	_, status, err := client.BopGetItemCount(ctx, "bench:btree", collection.UintBKey(0), collection.UintBKey(999))
	return status.Success, err
}

// pipedInsert inserts batches of new elements in the worker's own B+Tree.
func pipedInsert(batchSize int) worker {
	return func(ctx context.Context, client *arcus.Client, workerID, iteration int) (bool, error) {
		elements := make([]collection.Element, batchSize)
		for i := range elements {
			bkey := uint64(iteration*batchSize + i + 1)
			elements[i] = collection.Element{BKey: collection.UintBKey(bkey), Value: []byte("bench")}
		}
		failed, err := client.BopPipedInsertBulk(ctx, fmt.Sprintf("bench:btree:%d", workerID), elements, nil)
		return len(failed) == 0, err
	}
}

// pipedDelete deletes the batches inserted by pipedInsert, in the same order.
func pipedDelete(batchSize int) worker {
	return func(ctx context.Context, client *arcus.Client, workerID, iteration int) (bool, error) {
		bkeys := make([]collection.BKey, batchSize)
		for i := range bkeys {
			bkeys[i] = collection.UintBKey(uint64(iteration*batchSize + i + 1))
		}
		failed, err := client.BopPipedDeleteBulk(ctx, fmt.Sprintf("bench:btree:%d", workerID), bkeys, false)
		return len(failed) == 0, err
	}
}

func run(client *arcus.Client, operation OperationType, work worker, duration time.Duration, concurrency int) *BenchmarkResult {
	var totalOps, successes, failures, errs, totalLatency atomic.Int64

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	start := time.Now()
	group, ctx := errgroup.WithContext(ctx)
	for workerID := range concurrency {
		group.Go(func() error {
			for iteration := 0; ctx.Err() == nil; iteration++ {
				opStart := time.Now()
				ok, err := work(ctx, client, workerID, iteration)
				if ctx.Err() != nil {
					return nil
				}

				totalOps.Add(1)
				totalLatency.Add(int64(time.Since(opStart)))
				switch {
				case err != nil:
					errs.Add(1)
				case ok:
					successes.Add(1)
				default:
					failures.Add(1)
				}
			}
			return nil
		})
	}
	_ = group.Wait()
	elapsed := time.Since(start)

	result := &BenchmarkResult{
		Operation: operation,
		Duration:  elapsed,
		TotalOps:  totalOps.Load(),
		Successes: successes.Load(),
		Failures:  failures.Load(),
		Errors:    errs.Load(),
	}
	if result.TotalOps > 0 {
		result.AvgLatency = time.Duration(totalLatency.Load() / result.TotalOps)
		result.OpsPerSecond = float64(result.TotalOps) / elapsed.Seconds()
	}
	return result
}

func printResult(result *BenchmarkResult) {
	fmt.Printf("Operation:      %s\n", result.Operation)
	fmt.Printf("Duration:       %v\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Total ops:      %d\n", result.TotalOps)
	fmt.Printf("Successes:      %d\n", result.Successes)
	fmt.Printf("Failures:       %d\n", result.Failures)
	fmt.Printf("Errors:         %d\n", result.Errors)
	fmt.Printf("Avg latency:    %v\n", result.AvgLatency)
	fmt.Printf("Ops per second: %.0f\n", result.OpsPerSecond)
}
