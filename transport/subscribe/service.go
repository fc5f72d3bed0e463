package subscribe

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signaltap/signaltap/filter"
	"github.com/signaltap/signaltap/router"
	"github.com/signaltap/signaltap/sink"
	"github.com/signaltap/signaltap/wire"
)

// DefaultSinkCapacity bounds the per-subscriber outbound queue the server
// attaches to the router (spec §6: "1024 messages / 10 ms" batching knobs
// reused here as the sink's buffer size).
const DefaultSinkCapacity = 1024

const batchWindow = 10 * time.Millisecond

// Service implements the server side of the Subscribe RPC: it attaches a
// sink.FilteredSink to a local router on the stream's first command and
// mutates that sink's filter list as Subscribe/Unsubscribe commands arrive.
type Service struct {
	Router *router.Router
}

// ServiceDesc registers Service.handle as the "Subscribe" stream method
// under the signaltap.Subscriber service name.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Service)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			ClientStreams: true,
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(*Service).handle(stream)
			},
		},
	},
	Metadata: "signaltap/subscribe",
}

func (s *Service) handle(stream grpc.ServerStream) error {
	ctx := stream.Context()

	done := make(chan struct{})
	defer close(done)

	sk := sink.NewFilteredSink(DefaultSinkCapacity, done)
	attached := false

	recvErr := make(chan error, 1)
	go func() {
		for {
			req := &wire.SubscribeRequest{}
			if err := stream.RecvMsg(req); err != nil {
				recvErr <- err
				return
			}
			switch {
			case req.Subscribe != nil:
				f, err := parseFilterText(req.Subscribe.Filter)
				if err != nil {
					recvErr <- wire.ToStatusError(err)
					return
				}
				sk.Subscribe(f)
				if !attached {
					attached = true
					replay, err := s.Router.Subscribe(ctx, sk)
					if err != nil {
						recvErr <- err
						return
					}
					for i := range replay {
						sk.SendAsync(ctx, &replay[i])
					}
				}
			case req.Unsubscribe != nil:
				f, err := parseFilterText(req.Unsubscribe.Filter)
				if err != nil {
					recvErr <- wire.ToStatusError(err)
					return
				}
				sk.Unsubscribe(f)
			default:
				recvErr <- status.Error(codes.InvalidArgument, "subscribe request has no oneof cmd set")
				return
			}
		}
	}()

	ticker := time.NewTicker(batchWindow)
	defer ticker.Stop()

	pending := make([]*wire.TraceMessage, 0, DefaultSinkCapacity)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		resp := &wire.SubscribeResponse{Batch: &wire.TraceMessageBatch{Messages: pending}}
		pending = make([]*wire.TraceMessage, 0, DefaultSinkCapacity)
		return stream.SendMsg(resp)
	}

	for {
		select {
		case <-ctx.Done():
			return status.Error(codes.Unavailable, "subscribe stream cancelled")
		case err := <-recvErr:
			return err
		case msg := <-sk.Messages():
			tm, err := wire.MessageToWire(msg)
			if err != nil {
				return wire.ToStatusError(err)
			}
			pending = append(pending, tm)
			if len(pending) >= DefaultSinkCapacity {
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

// parseFilterText parses a filter string, treating "" as filter.Any()
// per spec §4.7.
func parseFilterText(s string) (filter.Filter, error) {
	if s == "" {
		return filter.Any(), nil
	}
	return filter.Parse(s)
}
