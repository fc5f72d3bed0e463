package publish

import (
	"context"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signaltap/signaltap/router"
	"github.com/signaltap/signaltap/wire"
)

// heartbeatInterval is how often the server reports a PublishStatus
// heartbeat on an open Publish stream (spec §4.6).
const heartbeatInterval = 1 * time.Second

// Service implements the server side of the Publish RPC: it decodes inbound
// batches and forwards each message to a local router's ingress.
type Service struct {
	Router *router.Router
}

// ServiceDesc registers Service.handle as the "Publish" stream method under
// the signaltap.Publisher service name, for use with grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Service)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Publish",
			ClientStreams: true,
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(*Service).handle(stream)
			},
		},
	},
	Metadata: "signaltap/publish",
}

func (s *Service) handle(stream grpc.ServerStream) error {
	ctx := stream.Context()

	var total atomic.Uint64
	recvErr := make(chan error, 1)

	go func() {
		for {
			req := &wire.PublishRequest{}
			if err := stream.RecvMsg(req); err != nil {
				recvErr <- err
				return
			}
			for _, tm := range req.TraceMessages {
				mwi, err := wire.MessageFromWire(tm)
				if err != nil {
					recvErr <- wire.ToStatusError(err)
					return
				}
				select {
				case s.Router.Ingress() <- mwi:
					total.Add(1)
				case <-ctx.Done():
					recvErr <- ctx.Err()
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return status.Error(codes.Unavailable, "publish stream cancelled")
		case err := <-recvErr:
			if err == context.Canceled || status.Code(err) == codes.Canceled {
				return status.Error(codes.Unavailable, "publish stream cancelled")
			}
			return err
		case <-ticker.C:
			n := total.Load()
			resp := &wire.PublishResponse{Status: &wire.PublishStatus{
				TotalMessages:      n,
				SuccessfulMessages: n,
				FailedMessages:     0,
			}}
			if err := stream.SendMsg(resp); err != nil {
				return err
			}
		}
	}
}
