package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pior/arcus"
	"github.com/pior/arcus/collection"
	"github.com/pior/arcus/metrics"
)

var (
	servers     = flag.String("servers", "localhost:11211", "comma-separated list of arcus servers")
	timeout     = flag.Duration("timeout", 2*time.Second, "timeout of each command")
	create      = flag.Bool("create", false, "create missing collections on insert")
	metricsAddr = flag.String("metrics-addr", "", "serve /metrics, /stats and /health on this address (e.g. :9100)")
	debug       = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client, err := arcus.NewClient(arcus.NewStaticServers(strings.Split(*servers, ",")...), arcus.Config{
		MaxSize:           2,
		NewCircuitBreaker: arcus.NewCircuitBreakerConfig(1, 10*time.Second, 5*time.Second),
		Logger:            logger,
	})
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if *metricsAddr != "" {
		go serveMetrics(client, logger)
	}

	fmt.Println("Arcus collection CLI")
	fmt.Println("====================")
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	editor := newLineEditor()
	defer editor.close()

	for {
		line, err := editor.readLine("> ")
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Printf("Error reading input: %v\n", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		command := strings.ToLower(parts[0])
		if command == "quit" || command == "exit" {
			fmt.Println("Goodbye!")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		run(ctx, client, command, parts[1:])
		cancel()
	}
}

func serveMetrics(client *arcus.Client, logger *slog.Logger) {
	logger.Info("serving metrics", "addr", *metricsAddr)
	if err := http.ListenAndServe(*metricsAddr, metrics.NewHandler(client)); err != nil {
		logger.Error("metrics server failed", "error", err)
	}
}

func run(ctx context.Context, client *arcus.Client, command string, args []string) {
	switch command {
	case "sexist":
		if len(args) != 2 {
			fmt.Println("Usage: sexist <key> <value>")
			return
		}
		handleSetExist(ctx, client, args[0], args[1])

	case "bpos":
		if len(args) < 2 || len(args) > 3 {
			fmt.Println("Usage: bpos <key> <bkey> [asc|desc]")
			return
		}
		order := collection.Ascending
		if len(args) == 3 {
			var ok bool
			if order, ok = collection.ParseOrder(args[2]); !ok {
				fmt.Printf("Invalid order: %s\n", args[2])
				return
			}
		}
		handlePosition(ctx, client, args[0], args[1], order)

	case "bcount":
		if len(args) != 3 {
			fmt.Println("Usage: bcount <key> <from> <to>")
			return
		}
		handleCount(ctx, client, args[0], args[1], args[2])

	case "binsert":
		if len(args) < 2 {
			fmt.Println("Usage: binsert <key> <bkey>=<value> ...")
			return
		}
		elements, err := parseElements(args[1:])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		handleBulk(len(elements), func() (map[int]collection.Status, error) {
			return client.BopPipedInsertBulk(ctx, args[0], elements, createAttributes())
		})

	case "bupdate":
		if len(args) < 2 {
			fmt.Println("Usage: bupdate <key> <bkey>=<value> ...")
			return
		}
		elements, err := parseElements(args[1:])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		handleBulk(len(elements), func() (map[int]collection.Status, error) {
			return client.BopPipedUpdateBulk(ctx, args[0], elements)
		})

	case "bdelete":
		if len(args) < 2 {
			fmt.Println("Usage: bdelete <key> <bkey> ...")
			return
		}
		bkeys := make([]collection.BKey, len(args)-1)
		for i, arg := range args[1:] {
			bkey, err := collection.ParseBKey(arg)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			bkeys[i] = bkey
		}
		handleBulk(len(bkeys), func() (map[int]collection.Status, error) {
			return client.BopPipedDeleteBulk(ctx, args[0], bkeys, false)
		})

	case "sinsert":
		if len(args) < 2 {
			fmt.Println("Usage: sinsert <key> <value> ...")
			return
		}
		values := toValues(args[1:])
		handleBulk(len(values), func() (map[int]collection.Status, error) {
			return client.SopPipedInsertBulk(ctx, args[0], values, createAttributes())
		})

	case "linsert":
		if len(args) < 3 {
			fmt.Println("Usage: linsert <key> <index> <value> ...")
			return
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Invalid index: %v\n", err)
			return
		}
		values := toValues(args[2:])
		handleBulk(len(values), func() (map[int]collection.Status, error) {
			return client.LopPipedInsertBulk(ctx, args[0], index, values, createAttributes())
		})

	case "stats":
		handleStats(client)

	case "help":
		fmt.Println("Commands:")
		fmt.Println("  sexist <key> <value>                - Check set membership")
		fmt.Println("  bpos <key> <bkey> [asc|desc]        - Position of a bkey in a B+Tree")
		fmt.Println("  bcount <key> <from> <to>            - Count B+Tree elements in a bkey range")
		fmt.Println("  binsert <key> <bkey>=<value> ...    - Insert B+Tree elements")
		fmt.Println("  bupdate <key> <bkey>=<value> ...    - Update B+Tree element values")
		fmt.Println("  bdelete <key> <bkey> ...            - Delete B+Tree elements")
		fmt.Println("  sinsert <key> <value> ...           - Insert set values")
		fmt.Println("  linsert <key> <index> <value> ...   - Insert list values at index")
		fmt.Println("  stats                               - Show client and pool statistics")
		fmt.Println("  quit                                - Exit the CLI")
		fmt.Println()
		fmt.Println("bkeys are unsigned integers (42) or hex byte strings (0x0A1B).")

	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", command)
	}
}

func createAttributes() *collection.Attributes {
	if !*create {
		return nil
	}
	return &collection.Attributes{MaxCount: 4000}
}

func toValues(args []string) [][]byte {
	values := make([][]byte, len(args))
	for i, arg := range args {
		values[i] = []byte(arg)
	}
	return values
}

func parseElements(args []string) ([]collection.Element, error) {
	elements := make([]collection.Element, len(args))
	for i, arg := range args {
		rawBKey, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("element %q: expected <bkey>=<value>", arg)
		}
		bkey, err := collection.ParseBKey(rawBKey)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", arg, err)
		}
		elements[i] = collection.Element{BKey: bkey, Value: []byte(value)}
	}
	return elements, nil
}

func handleSetExist(ctx context.Context, client *arcus.Client, key, value string) {
	start := time.Now()
	status, err := client.SopExist(ctx, key, []byte(value))
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("Error: %v (took %v)\n", err, duration)
		return
	}
	fmt.Printf("%s (took %v)\n", status.Message, duration)
}

func handlePosition(ctx context.Context, client *arcus.Client, key, rawBKey string, order collection.Order) {
	bkey, err := collection.ParseBKey(rawBKey)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	start := time.Now()
	position, status, err := client.BopFindPosition(ctx, key, bkey, order)
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("Error: %v (took %v)\n", err, duration)
		return
	}
	if !status.Success {
		fmt.Printf("%s (took %v)\n", status.Message, duration)
		return
	}
	fmt.Printf("Position: %d (took %v)\n", position, duration)
}

func handleCount(ctx context.Context, client *arcus.Client, key, rawFrom, rawTo string) {
	from, err := collection.ParseBKey(rawFrom)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	to, err := collection.ParseBKey(rawTo)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	start := time.Now()
	count, status, err := client.BopGetItemCount(ctx, key, from, to)
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("Error: %v (took %v)\n", err, duration)
		return
	}
	if !status.Success {
		fmt.Printf("%s (took %v)\n", status.Message, duration)
		return
	}
	fmt.Printf("Count: %d (took %v)\n", count, duration)
}

func handleBulk(n int, call func() (map[int]collection.Status, error)) {
	start := time.Now()
	failed, err := call()
	duration := time.Since(start)

	for _, i := range slices.Sorted(maps.Keys(failed)) {
		fmt.Printf("  item %d: %s\n", i, failed[i].Message)
	}
	if err != nil {
		fmt.Printf("Error: %v (took %v)\n", err, duration)
		return
	}
	fmt.Printf("%d of %d items succeeded (took %v)\n", n-len(failed), n, duration)
}

func handleStats(client *arcus.Client) {
	stats := client.Stats()
	fmt.Println("Client Statistics:")
	fmt.Printf("  Exists: %d  Positions: %d  Counts: %d\n", stats.Exists, stats.Positions, stats.Counts)
	fmt.Printf("  Piped requests: %d  items: %d  failed items: %d\n", stats.PipedOps, stats.PipedItems, stats.PipedFailures)
	fmt.Printf("  Errors: %d  Protocol errors: %d  Cancellations: %d\n", stats.Errors, stats.ProtocolErrors, stats.Cancellations)

	for _, sp := range client.AllPoolStats() {
		fmt.Printf("Server %s:\n", sp.Addr)
		fmt.Printf("  Connections: total=%d active=%d idle=%d\n", sp.PoolStats.TotalConns, sp.PoolStats.ActiveConns, sp.PoolStats.IdleConns)
		fmt.Printf("  Created: %d  Destroyed: %d  Acquire errors: %d\n", sp.PoolStats.CreatedConns, sp.PoolStats.DestroyedConns, sp.PoolStats.AcquireErrors)
		fmt.Printf("  Circuit breaker: %s\n", sp.CircuitBreakerState)
	}
}
