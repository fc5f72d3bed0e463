package publish

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

func TestPublishClientDeliversToRouter(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)

	st := store.New()
	r, err := router.New(st)
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	srv := grpc.NewServer(grpc.ForceServerCodec(wire.Codec{}))
	srv.RegisterService(&ServiceDesc, &Service{Router: r})
	go srv.Serve(lis)
	defer srv.Stop()

	client := New(Config{
		Addr:         "passthrough:///bufnet",
		BatchSize:    4,
		BatchTimeout: 10 * time.Millisecond,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	})
	clientCtx, clientCancel := context.WithCancel(context.Background())
	defer clientCancel()

	go func() {
		_ = client.Run(clientCtx)
	}()

	id := uuid.Must(uuid.NewV7())
	if err := client.Publish(context.Background(), &ipc.MessageWithId{
		SegmentID:  id,
		SourceName: "motor",
		Msg:        ipc.TraceSegmentStart{TimeNs: 1, SourceName: "motor"},
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := client.WaitUntilConnected(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitUntilConnected: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snapshot, err := st.MetadataAsIPC()
		if err != nil {
			t.Fatalf("MetadataAsIPC: %v", err)
		}
		if len(snapshot) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for router to observe published message")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
