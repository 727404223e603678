package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/get-eventually/go-subscriber/checkpoint"
	"github.com/get-eventually/go-subscriber/eventlog"
	"github.com/get-eventually/go-subscriber/postgres/internal"
	"github.com/get-eventually/go-subscriber/version"
)

// Default values used by an EventLog, if not specified.
const (
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultMaxPollInterval = 1 * time.Second
	DefaultPageSize        = 256
)

var _ eventlog.Client = EventLog{}

// EventLog is an Event Log backed by the "log_entries" table.
//
// Subscribe catches up by reading the table in pages, then keeps polling it
// for new entries, backing off exponentially between PollInterval and
// MaxPollInterval while no new entry is found.
type EventLog struct {
	Conn *pgxpool.Pool

	// PollInterval is the minimum interval between two polls of the table.
	//
	// Defaults to DefaultPollInterval if unspecified or negative.
	PollInterval time.Duration

	// MaxPollInterval is the maximum interval between two polls of the table.
	// Use this value to ensure a specific eventual consistency window.
	//
	// Defaults to DefaultMaxPollInterval if unspecified or negative.
	MaxPollInterval time.Duration

	// PageSize is the maximum number of rows read with a single query.
	//
	// Defaults to DefaultPageSize if unspecified or negative.
	PageSize int
}

func (l EventLog) pollInterval() time.Duration {
	if l.PollInterval <= 0 {
		return DefaultPollInterval
	}

	return l.PollInterval
}

func (l EventLog) maxPollInterval() time.Duration {
	if l.MaxPollInterval <= 0 {
		return DefaultMaxPollInterval
	}

	return l.MaxPollInterval
}

func (l EventLog) pageSize() int {
	if l.PageSize <= 0 {
		return DefaultPageSize
	}

	return l.PageSize
}

// Append appends the entries to the log, returning the position
// of the last one.
//
// Link entries are stored with a reference to their target.
// Appends are serialized, so that positions become visible to pollers in order.
func (l EventLog) Append(ctx context.Context, entries ...eventlog.Entry) (version.SequenceNumber, error) {
	if len(entries) == 0 {
		return 0, eventlog.ErrEmptyAppend
	}

	last, err := internal.WithTableLock(ctx, l.Conn, "log_entries",
		func(ctx context.Context, tx pgx.Tx) (int64, error) {
			var latest int64

			for _, entry := range entries {
				position, err := appendEntry(ctx, tx, entry)
				if err != nil {
					return 0, err
				}

				latest = position
			}

			return latest, nil
		})
	if err != nil {
		return 0, fmt.Errorf("postgres.EventLog: failed to append entries, %w", err)
	}

	return version.SequenceNumber(last), nil
}

func appendEntry(ctx context.Context, tx pgx.Tx, entry eventlog.Entry) (int64, error) {
	var linkPosition *int64

	if entry.IsLink() {
		target, err := entry.LinkTarget()
		if err != nil {
			return 0, err //nolint:wrapcheck // Already descriptive.
		}

		linkPosition = new(int64)
		*linkPosition = int64(target)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal metadata of entry '%s', %w", entry.ID, err)
	}

	var position int64

	err = tx.QueryRow(
		ctx,
		`INSERT INTO log_entries (id, type, stream_id, data, metadata, link_position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING position`,
		entry.ID, entry.Type, entry.StreamID, entry.Data, metadata, linkPosition,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry '%s', %w", entry.ID, err)
	}

	return position, nil
}

// Subscribe implements the eventlog.Client interface.
func (l EventLog) Subscribe(
	ctx context.Context,
	stream eventlog.StreamWrite,
	from checkpoint.Checkpoint,
	filter eventlog.Filter,
) error {
	defer close(stream)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.pollInterval()
	b.MaxInterval = l.maxPollInterval()
	b.MaxElapsedTime = 0 // Don't stop the backoff!

	after := int64(from.Next()) - 1

	for {
		read, last, err := l.poll(ctx, stream, after, filter)
		if err != nil {
			return err
		}

		after = last

		if read == l.pageSize() {
			continue
		}

		if read > 0 {
			b.Reset()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres.EventLog: context error, %w", ctx.Err())
		case <-time.After(b.NextBackOff()):
		}
	}
}

// poll delivers the next page of entries after the specified position,
// returning the number of rows read and the last position read.
func (l EventLog) poll(
	ctx context.Context,
	stream eventlog.StreamWrite,
	after int64,
	filter eventlog.Filter,
) (int, int64, error) {
	rows, err := l.Conn.Query(
		ctx,
		`SELECT
			e.position, e.id, e.type, e.stream_id, e.data, e.metadata, e.recorded_at,
			t.id, t.type, t.stream_id, t.data, t.metadata, t.recorded_at
		FROM log_entries e
		LEFT JOIN log_entries t
			ON $3::BOOLEAN AND t.position = e.link_position AND t.link_position IS NULL
		WHERE e.position > $1
		ORDER BY e.position
		LIMIT $2`,
		after, l.pageSize(), filter.ResolveLinks,
	)
	if err != nil {
		return 0, after, fmt.Errorf("postgres.EventLog: failed to query log entries, %w", err)
	}

	defer rows.Close()

	var read int

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return read, after, err
		}

		read++
		after = int64(entry.Position)

		if !filter.Allows(entry.Type) {
			continue
		}

		select {
		case stream <- entry:
		case <-ctx.Done():
			return read, after, fmt.Errorf("postgres.EventLog: context error, %w", ctx.Err())
		}
	}

	if err := rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return read, after, fmt.Errorf("postgres.EventLog: context error, %w", err)
		}

		return read, after, fmt.Errorf("postgres.EventLog: failed to read log entries, %w", err)
	}

	return read, after, nil
}

func scanEntry(rows pgx.Rows) (eventlog.Entry, error) {
	var (
		entry       eventlog.Entry
		position    int64
		rawMetadata []byte

		targetID, targetType, targetStreamID *string
		targetData, targetRawMetadata        []byte
		targetRecordedAt                     *time.Time
	)

	err := rows.Scan(
		&position, &entry.ID, &entry.Type, &entry.StreamID, &entry.Data, &rawMetadata, &entry.RecordedAt,
		&targetID, &targetType, &targetStreamID, &targetData, &targetRawMetadata, &targetRecordedAt,
	)
	if err != nil {
		return eventlog.Entry{}, fmt.Errorf("postgres.EventLog: failed to scan next row, %w", err)
	}

	entry.Position = version.SequenceNumber(position)

	if err := unmarshalMetadata(rawMetadata, &entry); err != nil {
		return eventlog.Entry{}, err
	}

	if targetID == nil {
		return entry, nil
	}

	target := eventlog.Entry{
		ID:         *targetID,
		Type:       *targetType,
		StreamID:   *targetStreamID,
		Data:       targetData,
		RecordedAt: *targetRecordedAt,
	}

	if err := unmarshalMetadata(targetRawMetadata, &target); err != nil {
		return eventlog.Entry{}, err
	}

	return entry.Resolve(target), nil
}

func unmarshalMetadata(data []byte, entry *eventlog.Entry) error {
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &entry.Metadata); err != nil {
		return fmt.Errorf("postgres.EventLog: failed to deserialize metadata of entry '%s', %w", entry.ID, err)
	}

	return nil
}
