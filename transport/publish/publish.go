// Package publish implements the client-streamed Publish RPC (spec §4.6):
// a client pushes batches of trace messages; the server periodically
// reports a heartbeat PublishStatus on the same stream. Framed over gRPC
// using wire.Codec directly (grpc.ForceCodec/ForceServerCodec) rather than
// protoc-generated stubs — this environment has no protoc/buf available,
// mirrored on the health-check client idiom in the teacher's ready package.
package publish

import (
	"google.golang.org/grpc"
)

const serviceName = "signaltap.Publisher"
const methodName = "/signaltap.Publisher/Publish"

// streamDesc describes the single client-streamed-with-heartbeat RPC this
// package exposes, shared between the client's NewStream call and the
// server's ServiceDesc registration.
var streamDesc = grpc.StreamDesc{
	StreamName:    "Publish",
	ClientStreams: true,
	ServerStreams: true,
}
