// Package postgres persists segment metadata to Postgres so it survives
// router restarts, while still serving replay from an in-memory index
// (spec invariant: MetadataAsIPC must stay correct regardless of storage
// backend). Grounded on the connection idiom in
// _examples/matgreaves-rig/connect/pgx/pgx.go (pgxpool.New over a DSN) —
// the teacher itself never issues application queries against the pool,
// so the upsert statements below are an original extension in the same
// pgx/v5 style.
package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/store"
)

// execer is the slice of *pgxpool.Pool that Store needs, narrowed so tests
// can substitute a fake without a live database.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DefaultQueueCapacity bounds the number of pending persist writes buffered
// in front of Postgres before Store starts dropping them (best-effort, spec
// §7 propagation policy: persistence failures are logged, never propagated
// to the router).
const DefaultQueueCapacity = 4096

// Schema creates the segments table if it does not already exist. Callers
// run this once at startup before handing the Store to a router.
const Schema = `
CREATE TABLE IF NOT EXISTS segments (
	segment_id    UUID PRIMARY KEY,
	source_name   TEXT NOT NULL,
	start_time_ns BIGINT,
	end_time_ns   BIGINT,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema runs Schema against pool. Safe to call repeatedly.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}

var _ execer = (*pgxpool.Pool)(nil)

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithQueueCapacity overrides DefaultQueueCapacity.
func WithQueueCapacity(n int) Option {
	return func(s *Store) { s.queueCap = n }
}

// Store wraps the default in-memory metadata store and mirrors every
// Update to Postgres on a background worker, best-effort. MetadataAsIPC is
// always served from the in-memory index, never from Postgres.
type Store struct {
	inner    *store.MetadataOnlyStore
	pool     execer
	logger   *slog.Logger
	queueCap int
	queue    chan *ipc.MessageWithId
}

// New returns a Store that persists to pool in the background. Call
// EnsureSchema before New if the table may not exist yet. Close ends the
// background persist worker once the queue has been drained.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	return newStore(pool, opts...)
}

func newStore(pool execer, opts ...Option) *Store {
	s := &Store{
		inner:    store.New(),
		pool:     pool,
		logger:   slog.Default(),
		queueCap: DefaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan *ipc.MessageWithId, s.queueCap)
	go s.run()
	return s
}

// MetadataAsIPC delegates to the in-memory index (spec.md invariant: the
// store must still produce a correct replay stream).
func (s *Store) MetadataAsIPC() ([]ipc.MessageWithId, error) {
	return s.inner.MetadataAsIPC()
}

// Update folds msg into the in-memory index synchronously, then enqueues a
// best-effort Postgres persist. A full queue drops the write and logs a
// warning rather than blocking the router's single-writer loop.
func (s *Store) Update(msg *ipc.MessageWithId) error {
	if err := s.inner.Update(msg); err != nil {
		return err
	}
	select {
	case s.queue <- msg:
	default:
		s.logger.Warn("storex/postgres: persist queue full, dropping update", "segment_id", msg.SegmentID)
	}
	return nil
}

// Close closes the persist queue and returns at once; it does not wait for
// the queue to drain. The background worker persists the updates still
// queued and then exits. An Update after Close panics (send on a closed
// channel).
func (s *Store) Close() {
	close(s.queue)
}

func (s *Store) run() {
	for msg := range s.queue {
		if err := s.persist(context.Background(), msg); err != nil {
			s.logger.Error("storex/postgres: persist failed", "error", err, "segment_id", msg.SegmentID)
		}
	}
}

func (s *Store) persist(ctx context.Context, msg *ipc.MessageWithId) error {
	switch m := msg.Msg.(type) {
	case ipc.TraceSegmentStart:
		_, err := s.pool.Exec(ctx, `
			INSERT INTO segments (segment_id, source_name, start_time_ns, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (segment_id) DO UPDATE SET
				source_name = EXCLUDED.source_name,
				start_time_ns = LEAST(COALESCE(segments.start_time_ns, EXCLUDED.start_time_ns), EXCLUDED.start_time_ns),
				updated_at = now()`,
			msg.SegmentID, m.SourceName, m.TimeNs)
		return err

	case ipc.TraceSegmentEnd:
		_, err := s.pool.Exec(ctx, `
			INSERT INTO segments (segment_id, source_name, end_time_ns, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (segment_id) DO UPDATE SET
				end_time_ns = GREATEST(COALESCE(segments.end_time_ns, EXCLUDED.end_time_ns), EXCLUDED.end_time_ns),
				updated_at = now()`,
			msg.SegmentID, msg.SourceName, m.TimeNs)
		return err

	default:
		// Schema/named-values/event messages don't carry timing, just
		// ensure the row exists and its updated_at moves forward.
		_, err := s.pool.Exec(ctx, `
			INSERT INTO segments (segment_id, source_name, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (segment_id) DO UPDATE SET updated_at = now()`,
			msg.SegmentID, msg.SourceName)
		return err
	}
}
