package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/wire"
)

// ConnectionStatus is the publish client's observable connection state
// machine (spec §8 scenario 4: Connected -> Error -> Connecting -> Connected).
type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Connecting
	Connected
	Error
)

func (s ConnectionStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

const (
	DefaultBatchSize      = 1000
	DefaultBatchTimeout   = 100 * time.Millisecond
	DefaultReconnectDelay = 1000 * time.Millisecond
)

// Config holds the publish client's tunable knobs (spec §6).
type Config struct {
	Addr           string
	BatchSize      int
	BatchTimeout   time.Duration
	ReconnectDelay time.Duration

	// DialOptions overrides the default insecure transport credentials,
	// e.g. to supply a custom dialer in tests (bufconn) or TLS in production.
	DialOptions []grpc.DialOption
}

func (c *Config) setDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
}

// Client pushes locally-sourced messages to a remote router over the
// Publish RPC, reconnecting automatically on failure.
type Client struct {
	cfg Config

	outbox chan *ipc.MessageWithId

	mu         sync.Mutex
	status     ConnectionStatus
	statusCh   chan struct{} // closed and replaced whenever status changes
	lastStatus *wire.PublishStatus
}

// New creates a publish Client. Call Run in its own goroutine to drive the
// connection; use Publish to enqueue messages.
func New(cfg Config) *Client {
	cfg.setDefaults()
	return &Client{
		cfg:      cfg,
		outbox:   make(chan *ipc.MessageWithId, cfg.BatchSize*2),
		statusCh: make(chan struct{}),
	}
}

// Publish enqueues a message for the next outbound batch, honoring ctx
// cancellation if the outbox is full (client-side backpressure).
func (c *Client) Publish(ctx context.Context, msg *ipc.MessageWithId) error {
	select {
	case c.outbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectionStatus returns the current connection state.
func (c *Client) ConnectionStatus() ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastPublishStatus returns the most recently received heartbeat, or nil if
// none has arrived yet.
func (c *Client) LastPublishStatus() *wire.PublishStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus
}

// WaitUntilConnected blocks until the client reaches Connected or timeout
// elapses, per spec §6.
func (c *Client) WaitUntilConnected(ctx context.Context, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		c.mu.Lock()
		if c.status == Connected {
			c.mu.Unlock()
			return nil
		}
		ch := c.statusCh
		c.mu.Unlock()

		select {
		case <-ch:
		case <-deadline.C:
			return fmt.Errorf("signaltap: wait_until_connected timed out after %s", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) setStatus(s ConnectionStatus) {
	c.mu.Lock()
	c.status = s
	ch := c.statusCh
	c.statusCh = make(chan struct{})
	c.mu.Unlock()
	close(ch)
}

func (c *Client) setLastStatus(s *wire.PublishStatus) {
	c.mu.Lock()
	c.lastStatus = s
	c.mu.Unlock()
}

// Run drives the reconnect loop until ctx is cancelled, honoring
// reconnect_delay between attempts (spec §8 scenario 4).
func (c *Client) Run(ctx context.Context) error {
	defer c.setStatus(Disconnected)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.setStatus(Connecting)
		if err := c.runOnce(ctx); err != nil {
			c.setStatus(Error)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-time.After(c.cfg.ReconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runOnce dials, opens the stream, and drives it until it fails or ctx is
// cancelled. A single connection attempt's lifetime.
func (c *Client) runOnce(ctx context.Context) error {
	dialOpts := c.cfg.DialOptions
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(c.cfg.Addr, dialOpts...)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConnectFailed, err)
	}
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := conn.NewStream(streamCtx, &streamDesc, methodName, grpc.ForceCodec(wire.Codec{}))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConnectFailed, err)
	}

	c.setStatus(Connected)

	recvErrCh := make(chan error, 1)
	go func() {
		for {
			resp := &wire.PublishResponse{}
			if err := stream.RecvMsg(resp); err != nil {
				recvErrCh <- err
				return
			}
			if resp.Status != nil {
				c.setLastStatus(resp.Status)
			}
		}
	}()

	batch := make([]*ipc.MessageWithId, 0, c.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		req := &wire.PublishRequest{TraceMessages: make([]*wire.TraceMessage, 0, len(batch))}
		for _, mwi := range batch {
			tm, err := wire.MessageToWire(mwi)
			if err != nil {
				return err
			}
			req.TraceMessages = append(req.TraceMessages, tm)
		}
		batch = batch[:0]
		return stream.SendMsg(req)
	}

	ticker := time.NewTicker(c.cfg.BatchTimeout)
	defer ticker.Stop()

	for {
		select {
		case err := <-recvErrCh:
			return fmt.Errorf("%w: %v", errs.ErrStreamEnded, err)
		case <-ctx.Done():
			stream.CloseSend()
			return ctx.Err()
		case msg := <-c.outbox:
			batch = append(batch, msg)
			if len(batch) >= c.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
