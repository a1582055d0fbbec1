package arcus

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pior/arcus/collection"
)

// Connection runs collection operations over one net.Conn, one at a time.
// It is not safe for concurrent use; the pool hands it to one caller.
type Connection struct {
	id     uuid.UUID
	conn   net.Conn
	Reader *bufio.Reader
	Writer *bufio.Writer
	logger *slog.Logger
}

// NewConnection wraps netConn. A nil logger uses slog.Default().
func NewConnection(netConn net.Conn, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	return &Connection{
		id:     id,
		conn:   netConn,
		Reader: bufio.NewReader(netConn),
		Writer: bufio.NewWriter(netConn),
		logger: logger.With("conn", id.String(), "addr", netConn.RemoteAddr().String()),
	}
}

// ID identifies the connection in logs.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Execute writes the request of op and reads its response until op is
// terminal.
//
// When ctx is done before that, op is cancelled and the pending socket I/O
// is interrupted; Execute then returns the context error. Any error leaves
// the connection in an unknown state and the caller must close it.
func (c *Connection) Execute(ctx context.Context, op *collection.Operation) error {
	if err := ctx.Err(); err != nil {
		op.Cancel()
		return err
	}

	deadline, hasDeadline := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		op.Abort(err)
		return &collection.ConnectionError{Op: "deadline", Err: err}
	}

	stop := context.AfterFunc(ctx, func() {
		if op.Cancel() {
			_ = c.conn.SetDeadline(time.Now())
		}
	})
	defer stop()

	cmd := op.Command()
	c.logger.Debug("arcus: request", "cmd", cmd.CommandName(), "key", cmd.Key(), "items", cmd.ItemCount())

	err := c.execute(op)
	if err == nil {
		return nil
	}

	ctxErr := ctx.Err()
	if ctxErr == nil && hasDeadline && !time.Now().Before(deadline) {
		// The socket deadline fired before the context timer
		ctxErr = context.DeadlineExceeded
	}
	if ctxErr != nil {
		return errors.Wrapf(ctxErr, "arcus: %s cancelled", cmd.CommandName())
	}

	var protoErr *collection.ProtocolError
	if errors.As(err, &protoErr) {
		c.logger.Warn("arcus: protocol violation", "cmd", cmd.CommandName(), "key", cmd.Key(), "error", err)
	}
	return err
}

func (c *Connection) execute(op *collection.Operation) error {
	buf, err := op.Buffer()
	if err != nil {
		return err
	}

	if _, err := c.Writer.Write(buf); err != nil {
		err = &collection.ConnectionError{Op: "write", Err: err}
		op.Abort(err)
		return err
	}
	if err := c.Writer.Flush(); err != nil {
		err = &collection.ConnectionError{Op: "flush", Err: err}
		op.Abort(err)
		return err
	}

	if err := op.WriteComplete(); err != nil {
		return err
	}

	if err := collection.ReadResponse(c.Reader, op); err != nil {
		var connErr *collection.ConnectionError
		if errors.As(err, &connErr) {
			op.Abort(err)
		}
		return err
	}
	return nil
}

// Close closes the underlying network connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}
