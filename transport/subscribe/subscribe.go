// Package subscribe implements the bidirectional-streamed Subscribe RPC
// (spec §4.7): the client sends Subscribe/Unsubscribe filter commands, the
// server attaches a filtered sink to its local router and streams back
// batched trace messages. Framed directly over wire.Codec (see
// transport/publish for the rationale — no protoc/buf available here).
package subscribe

import (
	"google.golang.org/grpc"
)

const serviceName = "signaltap.Subscriber"
const methodName = "/signaltap.Subscriber/Subscribe"

var streamDesc = grpc.StreamDesc{
	StreamName:    "Subscribe",
	ClientStreams: true,
	ServerStreams: true,
}
