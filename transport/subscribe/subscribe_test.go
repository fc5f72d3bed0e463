package subscribe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/router"
	"github.com/signaltap/signaltap/store"
	"github.com/signaltap/signaltap/wire"
)

func TestSubscribeClientReceivesReplayThenLive(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)

	st := store.New()
	r, err := router.New(st)
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	id := uuid.Must(uuid.NewV7())
	r.Ingress() <- &ipc.MessageWithId{SegmentID: id, SourceName: "motor", Msg: ipc.TraceSegmentStart{TimeNs: 1, SourceName: "motor"}}
	time.Sleep(20 * time.Millisecond) // let the router fold the message into its metadata index before any subscriber attaches

	srv := grpc.NewServer(grpc.ForceServerCodec(wire.Codec{}))
	srv.RegisterService(&ServiceDesc, &Service{Router: r})
	go srv.Serve(lis)
	defer srv.Stop()

	client := New(Config{
		Addr: "passthrough:///bufnet",
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	})

	received := make(chan []*ipc.MessageWithId, 16)
	clientCtx, clientCancel := context.WithCancel(context.Background())
	defer clientCancel()

	go func() {
		_ = client.Run(clientCtx, func(batch []*ipc.MessageWithId) { received <- batch })
	}()

	time.Sleep(50 * time.Millisecond) // let the stream establish before sending the command
	if err := client.SubscribeAll(context.Background()); err != nil {
		t.Fatalf("SubscribeAll: %v", err)
	}

	select {
	case batch := <-received:
		if len(batch) == 0 {
			t.Fatalf("expected a non-empty replay batch")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for replay batch")
	}

	liveID := uuid.Must(uuid.NewV7())
	r.Ingress() <- &ipc.MessageWithId{SegmentID: liveID, SourceName: "battery", Msg: ipc.TraceSegmentStart{TimeNs: 2, SourceName: "battery"}}

	select {
	case batch := <-received:
		found := false
		for _, mwi := range batch {
			if mwi.SegmentID == liveID {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected live message with segment id %s in batch %+v", liveID, batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for live batch")
	}
}
