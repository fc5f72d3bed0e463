package subscribe

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signaltap/signaltap/errs"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/wire"
)

// Config holds the subscribe client's connection knobs.
type Config struct {
	Addr string

	// DialOptions overrides the default insecure transport credentials.
	DialOptions []grpc.DialOption
}

// Client drives the Subscribe RPC: it sends filter commands and forwards
// inbound batches to a caller-supplied sink function.
type Client struct {
	cfg   Config
	cmdCh chan *wire.SubscribeRequest
}

// New creates a subscribe Client. Call Run in its own goroutine to drive
// the connection; Subscribe/Unsubscribe/SubscribeAll/UnsubscribeAll enqueue
// filter commands that are sent once the stream is established.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, cmdCh: make(chan *wire.SubscribeRequest, 64)}
}

// Subscribe adds a parsed filter text to the server-side sink's filter list.
// An empty string subscribes to everything (spec §4.7).
func (c *Client) Subscribe(ctx context.Context, filterText string) error {
	return c.send(ctx, &wire.SubscribeRequest{Subscribe: &wire.SubscribeCmdSubscribe{Filter: filterText}})
}

// SubscribeAll subscribes with no filter (match-any).
func (c *Client) SubscribeAll(ctx context.Context) error {
	return c.Subscribe(ctx, "")
}

// Unsubscribe removes a structurally-equal filter.
func (c *Client) Unsubscribe(ctx context.Context, filterText string) error {
	return c.send(ctx, &wire.SubscribeRequest{Unsubscribe: &wire.SubscribeCmdUnsubscribe{Filter: filterText}})
}

// UnsubscribeAll removes the match-any filter.
func (c *Client) UnsubscribeAll(ctx context.Context) error {
	return c.Unsubscribe(ctx, "")
}

func (c *Client) send(ctx context.Context, req *wire.SubscribeRequest) error {
	select {
	case c.cmdCh <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run dials the server, opens the Subscribe stream, and forwards inbound
// messages to onBatch until ctx is cancelled or the stream ends. It does
// not reconnect — callers that want resilience should loop Run themselves,
// mirroring the publish client's explicit reconnect loop (spec §4.7 does
// not name a subscribe-side reconnect policy).
func (c *Client) Run(ctx context.Context, onBatch func([]*ipc.MessageWithId)) error {
	dialOpts := c.cfg.DialOptions
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(c.cfg.Addr, dialOpts...)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConnectFailed, err)
	}
	defer conn.Close()

	stream, err := conn.NewStream(ctx, &streamDesc, methodName, grpc.ForceCodec(wire.Codec{}))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConnectFailed, err)
	}

	recvErr := make(chan error, 1)
	go func() {
		for {
			resp := &wire.SubscribeResponse{}
			if err := stream.RecvMsg(resp); err != nil {
				recvErr <- err
				return
			}
			if resp.Batch == nil || len(resp.Batch.Messages) == 0 {
				continue
			}
			out := make([]*ipc.MessageWithId, 0, len(resp.Batch.Messages))
			for _, tm := range resp.Batch.Messages {
				mwi, err := wire.MessageFromWire(tm)
				if err != nil {
					recvErr <- fmt.Errorf("%w: %v", errs.ErrStreamEnded, err)
					return
				}
				out = append(out, mwi)
			}
			onBatch(out)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			stream.CloseSend()
			return ctx.Err()
		case err := <-recvErr:
			return fmt.Errorf("%w: %v", errs.ErrStreamEnded, err)
		case req := <-c.cmdCh:
			if err := stream.SendMsg(req); err != nil {
				return err
			}
		}
	}
}
