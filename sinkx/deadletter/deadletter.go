// Package deadletter reports dropped messages to an SQS queue. It is meant
// to be wired through sink.WithOnDrop onto a FilteredSink so a subscriber
// that cannot keep up (spec §7's SubscriberLagged condition) leaves an
// auditable trail instead of silently losing data. Grounded on the
// config-loading idiom in
// _examples/ClusterCockpit-cc-backend/pkg/archive/parquet/target.go
// (aws-sdk-go-v2 config.LoadDefaultConfig), adapted to the SQS client —
// no pack example issues application SQS calls, so SendMessage usage here
// follows the aws-sdk-go-v2 service/sqs API directly.
package deadletter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/signaltap/signaltap/ipc"
)

// sendMessageAPI is the slice of *sqs.Client Notifier needs, narrowed so
// tests can substitute a fake without reaching a real queue.
type sendMessageAPI interface {
	SendMessage(ctx context.Context, input *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// droppedMessage is the JSON body written to the queue: enough to identify
// which segment and source lost data, and when.
type droppedMessage struct {
	SegmentID  string    `json:"segment_id"`
	SourceName string    `json:"source_name"`
	DroppedAt  time.Time `json:"dropped_at"`
}

// Notifier reports dropped messages to an SQS queue in the background,
// never blocking the caller that observed the drop.
type Notifier struct {
	client   sendMessageAPI
	queueURL string
	logger   *slog.Logger
	ch       chan *ipc.MessageWithId
}

// Option configures a Notifier at construction time.
type Option func(*Notifier)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

// WithQueueCapacity overrides the default buffered capacity (256) of the
// internal report queue.
func WithQueueCapacity(n int) Option {
	return func(notifier *Notifier) {
		// Recreate the channel at the requested capacity; called before Run.
		notifier.ch = make(chan *ipc.MessageWithId, n)
	}
}

// New builds a Notifier that reports to queueURL, loading AWS credentials
// the default way (env vars, shared config, instance role).
func New(ctx context.Context, queueURL string, opts ...Option) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := sqs.NewFromConfig(awsCfg)
	return newNotifier(client, queueURL, opts...), nil
}

func newNotifier(client sendMessageAPI, queueURL string, opts ...Option) *Notifier {
	n := &Notifier{client: client, queueURL: queueURL, logger: slog.Default(), ch: make(chan *ipc.MessageWithId, 256)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// OnDrop is the sink.WithOnDrop-compatible hook: it enqueues msg for
// background reporting and never blocks — a full queue drops the report
// itself (logged), since a dead-letter notifier that can stall the router
// would defeat its own purpose.
func (n *Notifier) OnDrop(msg *ipc.MessageWithId) {
	select {
	case n.ch <- msg:
	default:
		n.logger.Warn("sinkx/deadletter: report queue full, dropping notification", "segment_id", msg.SegmentID)
	}
}

// Run drains the report queue, sending one SQS message per drop, until ctx
// is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-n.ch:
			if err := n.send(ctx, msg); err != nil {
				n.logger.Error("sinkx/deadletter: send failed", "error", err, "segment_id", msg.SegmentID)
			}
		}
	}
}

func (n *Notifier) send(ctx context.Context, msg *ipc.MessageWithId) error {
	body, err := json.Marshal(droppedMessage{
		SegmentID:  msg.SegmentID.String(),
		SourceName: msg.SourceName,
		DroppedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	_, err = n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}
