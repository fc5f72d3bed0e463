// Package s3 periodically checkpoints a store.Store's metadata replay
// stream to S3 as a crash-recovery aid. It is explicitly not a durable
// event queue — it snapshots metadata only, never events. Grounded on the
// S3 upload idiom in
// _examples/ClusterCockpit-cc-backend/pkg/archive/parquet/target.go
// (aws-sdk-go-v2 config.LoadDefaultConfig + s3.Client.PutObject).
package s3

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/store"
)

// DefaultCheckpointInterval is how often CheckpointingStore uploads a
// snapshot unless overridden.
const DefaultCheckpointInterval = 30 * time.Second

func init() {
	gob.Register(ipc.TraceSegmentStart{})
	gob.Register(ipc.TraceSegmentEnd{})
	gob.Register(ipc.TraceEventSchema{})
	gob.Register(ipc.TraceEventFieldNamedValues{})
	gob.Register(ipc.TraceEvent{})
}

// putObjectAPI is the slice of *s3.Client CheckpointingStore needs, narrowed
// so tests can substitute a fake without reaching a real bucket.
type putObjectAPI interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the S3 checkpoint target and cadence.
type Config struct {
	Endpoint     string
	Bucket       string
	Key          string
	Region       string
	UsePathStyle bool
	Interval     time.Duration
}

func (c *Config) setDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Key == "" {
		c.Key = "signaltap/metadata-checkpoint.gob"
	}
	if c.Interval <= 0 {
		c.Interval = DefaultCheckpointInterval
	}
}

// CheckpointingStore decorates any store.Store, forwarding every call
// unchanged while periodically uploading a gob-encoded AsIPC() snapshot to
// S3 in the background.
type CheckpointingStore struct {
	inner  store.Store
	client putObjectAPI
	cfg    Config
	logger *slog.Logger
}

// New builds a CheckpointingStore around inner, loading AWS credentials
// the default way (env vars, shared config, instance role).
func New(ctx context.Context, inner store.Store, cfg Config) (*CheckpointingStore, error) {
	cfg.setDefaults()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("storex/s3: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newCheckpointingStore(inner, client, cfg), nil
}

func newCheckpointingStore(inner store.Store, client putObjectAPI, cfg Config) *CheckpointingStore {
	cfg.setDefaults()
	return &CheckpointingStore{inner: inner, client: client, cfg: cfg, logger: slog.Default()}
}

// MetadataAsIPC delegates to the wrapped store.
func (s *CheckpointingStore) MetadataAsIPC() ([]ipc.MessageWithId, error) {
	return s.inner.MetadataAsIPC()
}

// Update delegates to the wrapped store; checkpointing happens on its own
// timer via Run, not on every Update.
func (s *CheckpointingStore) Update(msg *ipc.MessageWithId) error {
	return s.inner.Update(msg)
}

// Run uploads a checkpoint every s.cfg.Interval until ctx is cancelled,
// then uploads one final checkpoint before returning.
func (s *CheckpointingStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.checkpoint(context.Background()); err != nil {
				s.logger.Error("storex/s3: final checkpoint failed", "error", err)
			}
			return nil
		case <-ticker.C:
			if err := s.checkpoint(ctx); err != nil {
				s.logger.Error("storex/s3: checkpoint failed", "error", err)
			}
		}
	}
}

func (s *CheckpointingStore) checkpoint(ctx context.Context) error {
	snapshot, err := s.inner.MetadataAsIPC()
	if err != nil {
		return fmt.Errorf("snapshot metadata: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(s.cfg.Key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", s.cfg.Key, err)
	}
	return nil
}
