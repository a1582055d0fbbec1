package arcus

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/pior/arcus/collection"
)

var (
	// ErrNoServersAvailable is returned when the server list is empty.
	ErrNoServersAvailable = errors.New("arcus: no servers available")

	// ErrClientClosed is returned by calls made after Close.
	ErrClientClosed = errors.New("arcus: client closed")
)

// Config holds configuration for the Arcus client.
type Config struct {
	// MaxSize is the maximum number of connections per server.
	// Defaults to 10.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle before being closed.
	// Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often idle connections are checked against
	// MaxConnLifetime and MaxConnIdleTime. Zero disables the checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// NewPool is the connection pool factory.
	// If nil, uses NewChannelPool. NewPuddlePool is the alternative.
	NewPool PoolFactory

	// SelectServer picks which server owns a key.
	// If nil, uses DefaultServerSelector.
	SelectServer ServerSelector

	// NewCircuitBreaker creates a circuit breaker for a server.
	// Called once per server address when its pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(addr string) *CircuitBreaker

	// Limits bound what a request may carry. Zero fields take the values
	// of collection.DefaultLimits. Piped bulk calls are split in chunks of
	// MaxPipedItemCount (MaxPipedUpdateCount for updates) items.
	Limits collection.Limits

	// Logger receives connection and protocol events.
	// If nil, uses slog.Default().
	Logger *slog.Logger

	// for testing purposes only
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

// Client runs collection operations against a set of Arcus servers.
// It is safe for concurrent use.
type Client struct {
	servers      Servers
	selectServer ServerSelector
	config       Config
	limits       collection.Limits
	logger       *slog.Logger

	mu     sync.RWMutex
	pools  map[string]*ServerPool
	closed bool

	stopHealthCheck chan struct{}

	stats clientStatsCollector
}

// NewClient creates a client. Connections are opened lazily.
// For a single server, use: NewClient(NewStaticServers("host:port"), Config{})
func NewClient(servers Servers, config Config) (*Client, error) {
	if servers == nil || len(servers.List()) == 0 {
		return nil, ErrNoServersAvailable
	}

	if config.MaxSize <= 0 {
		config.MaxSize = 10
	}
	if config.Dialer == nil {
		config.Dialer = &net.Dialer{}
	}
	if config.NewPool == nil {
		config.NewPool = NewChannelPool
	}
	if config.SelectServer == nil {
		config.SelectServer = DefaultServerSelector
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.dial == nil {
		dialer := config.Dialer
		config.dial = func(ctx context.Context, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", addr)
		}
	}

	client := &Client{
		servers:         servers,
		selectServer:    config.SelectServer,
		config:          config,
		limits:          config.Limits.WithDefaults(),
		logger:          config.Logger,
		pools:           make(map[string]*ServerPool),
		stopHealthCheck: make(chan struct{}),
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close stops the health checks and closes all pools.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.stopHealthCheck)

	for _, sp := range c.pools {
		sp.Close()
	}
}

// Limits returns the effective limits.
func (c *Client) Limits() collection.Limits {
	return c.limits
}

// getPoolForKey returns the pool of the server owning key, creating it lazily.
func (c *Client) getPoolForKey(key string) (*ServerPool, error) {
	servers := c.servers.List()
	if len(servers) == 0 {
		return nil, ErrNoServersAvailable
	}

	addr := servers[c.selectServer(key, len(servers))]

	c.mu.RLock()
	sp, exists := c.pools[addr]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClientClosed
	}
	if exists {
		return sp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	sp, err := c.createPool(addr)
	if err != nil {
		return nil, err
	}
	c.pools[addr] = sp
	return sp, nil
}

func (c *Client) createPool(addr string) (*ServerPool, error) {
	constructor := func(ctx context.Context) (*Connection, error) {
		netConn, err := c.config.dial(ctx, addr)
		if err != nil {
			return nil, err
		}
		return NewConnection(netConn, c.logger), nil
	}

	pool, err := c.config.NewPool(constructor, c.config.MaxSize)
	if err != nil {
		return nil, errors.Wrapf(err, "arcus: create pool for %s", addr)
	}

	var cb *CircuitBreaker
	if c.config.NewCircuitBreaker != nil {
		cb = c.config.NewCircuitBreaker(addr)
	}

	c.logger.Debug("arcus: pool created", "addr", addr, "max_size", c.config.MaxSize)
	return newServerPool(addr, pool, cb, c.logger), nil
}

// healthCheckLoop periodically prunes idle connections.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*ServerPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		sp.checkConnections(c.config.MaxConnLifetime, c.config.MaxConnIdleTime)
	}
}

// Do runs cmd on the server owning its key and delivers the outcome to cb.
// cb may be nil.
//
// The returned error is non-nil when the request was rejected, the
// transport failed, the response violated the protocol or ctx ended first.
// Server-reported failures are delivered to cb as statuses.
func (c *Client) Do(ctx context.Context, cmd collection.Command, cb collection.Callback) error {
	op, err := collection.NewOperation(cmd, c.limits, cb)
	if err != nil {
		c.stats.recordError()
		return err
	}

	sp, err := c.getPoolForKey(cmd.Key())
	if err != nil {
		op.Abort(err)
		c.stats.recordError()
		return err
	}

	if err := sp.Execute(ctx, op); err != nil {
		c.stats.recordError()

		var protoErr *collection.ProtocolError
		switch {
		case errors.As(err, &protoErr):
			c.stats.recordProtocolError()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.stats.recordCancellation()
		}
		return errors.Wrapf(err, "arcus: %s %s", cmd.CommandName(), cmd.Key())
	}
	return nil
}

// SopExist checks whether value is a member of the set at key. The status
// code is EXIST or NOT_EXIST, or a failure such as NOT_FOUND.
func (c *Client) SopExist(ctx context.Context, key string, value []byte) (collection.Status, error) {
	var status collection.Status
	err := c.Do(ctx, collection.NewSetExist(key, value), collection.StatusCallback(func(s collection.Status, _ error) {
		status = s
	}))
	if err != nil {
		return collection.Status{}, err
	}

	c.stats.recordExist()
	return status, nil
}

// BopFindPosition returns the 0-based rank of bkey in the B+Tree at key
// under order. The position is -1 unless the status is successful.
func (c *Client) BopFindPosition(ctx context.Context, key string, bkey collection.BKey, order collection.Order) (int, collection.Status, error) {
	return c.value(ctx, collection.NewFindPosition(key, bkey, order), c.stats.recordPosition)
}

// BopGetItemCount counts the elements of the B+Tree at key whose bkey is in
// [from, to]. The count is -1 unless the status is successful.
func (c *Client) BopGetItemCount(ctx context.Context, key string, from, to collection.BKey) (int, collection.Status, error) {
	return c.value(ctx, collection.NewCount(key, from, to), c.stats.recordCount)
}

func (c *Client) value(ctx context.Context, cmd collection.Command, record func()) (int, collection.Status, error) {
	var (
		status collection.Status
		value  = -1
	)
	err := c.Do(ctx, cmd, collection.ValueCallback(func(s collection.Status, v int, ok bool, _ error) {
		status = s
		if ok {
			value = v
		}
	}))
	if err != nil {
		return -1, collection.Status{}, err
	}

	record()
	return value, status, nil
}

// BopPipedInsertBulk inserts elements into the B+Tree at key. With attrs,
// the B+Tree is created when missing.
//
// The returned map holds the statuses of failed elements keyed by their
// index in elements; it is empty when every element was stored.
func (c *Client) BopPipedInsertBulk(ctx context.Context, key string, elements []collection.Element, attrs *collection.Attributes) (map[int]collection.Status, error) {
	return c.pipedBulk(ctx, len(elements), c.limits.MaxPipedItemCount, func(from, to int) collection.Command {
		return collection.NewBopPipedInsert(key, elements[from:to], attrs)
	})
}

// SopPipedInsertBulk inserts values into the set at key.
// See BopPipedInsertBulk for the result.
func (c *Client) SopPipedInsertBulk(ctx context.Context, key string, values [][]byte, attrs *collection.Attributes) (map[int]collection.Status, error) {
	return c.pipedBulk(ctx, len(values), c.limits.MaxPipedItemCount, func(from, to int) collection.Command {
		return collection.NewSopPipedInsert(key, values[from:to], attrs)
	})
}

// LopPipedInsertBulk inserts values into the list at key, each at index.
// See BopPipedInsertBulk for the result.
func (c *Client) LopPipedInsertBulk(ctx context.Context, key string, index int, values [][]byte, attrs *collection.Attributes) (map[int]collection.Status, error) {
	return c.pipedBulk(ctx, len(values), c.limits.MaxPipedItemCount, func(from, to int) collection.Command {
		return collection.NewLopPipedInsert(key, index, values[from:to], attrs)
	})
}

// BopPipedUpdateBulk updates the value and/or element flag of elements of
// the B+Tree at key. See BopPipedInsertBulk for the result.
func (c *Client) BopPipedUpdateBulk(ctx context.Context, key string, elements []collection.Element) (map[int]collection.Status, error) {
	return c.pipedBulk(ctx, len(elements), c.limits.MaxPipedUpdateCount, func(from, to int) collection.Command {
		return collection.NewBopPipedUpdate(key, elements[from:to])
	})
}

// BopPipedDeleteBulk deletes the elements with the given bkeys from the
// B+Tree at key. With drop, the B+Tree is removed once empty.
// See BopPipedInsertBulk for the result.
func (c *Client) BopPipedDeleteBulk(ctx context.Context, key string, bkeys []collection.BKey, drop bool) (map[int]collection.Status, error) {
	return c.pipedBulk(ctx, len(bkeys), c.limits.MaxPipedItemCount, func(from, to int) collection.Command {
		return collection.NewBopPipedDelete(key, bkeys[from:to], drop)
	})
}

// pipedBulk sends n items in sequential chunks of at most chunk items and
// merges the failures, offset to the index in the whole input.
//
// On error the failures of the chunks already applied are returned along
// with the error.
func (c *Client) pipedBulk(ctx context.Context, n, chunk int, build func(from, to int) collection.Command) (map[int]collection.Status, error) {
	failed := make(map[int]collection.Status)

	if n == 0 {
		// Rejected by validation
		return nil, c.Do(ctx, build(0, 0), nil)
	}

	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)

		var chunkFailed map[int]collection.Status
		err := c.Do(ctx, build(from, to), collection.BulkCallback(func(_ collection.Status, f map[int]collection.Status, _ error) {
			chunkFailed = f
		}))
		if err != nil {
			return failed, err
		}

		for i, status := range chunkFailed {
			failed[from+i] = status
		}
		c.stats.recordPiped(to-from, len(chunkFailed))
	}

	return failed, nil
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// AllPoolStats returns stats for all server pools.
func (c *Client) AllPoolStats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		stats = append(stats, sp.Stats())
	}
	return stats
}
