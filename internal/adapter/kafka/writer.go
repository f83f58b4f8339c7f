// Package kafka publishes snapshot rows to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/county-strain-etl/internal/config"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

// Message header keys.
const (
	HeaderAnchorDate = "anchor_date"
	HeaderRunID      = "run_id"
)

// Writer produces snapshot rows to a Kafka topic.
// It implements pipeline.SnapshotSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadSnapshot publishes every row in a single WriteMessages call. Rows are
// keyed by county label so one county always lands on the same partition.
func (w *Writer) LoadSnapshot(ctx context.Context, runID string, anchor time.Time, rows []domain.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(runID, anchor, rows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	w.logger.Debug("snapshot published", "topic", w.writer.Topic, "rows", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a snapshot row into a Kafka message.
func serializeToMessage(runID string, anchor time.Time, row domain.SnapshotRow) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot row %q: %w", row.Label, err)
	}
	return kafkago.Message{
		Key:   []byte(row.Label),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderAnchorDate, Value: []byte(anchor.Format(time.DateOnly))},
			{Key: HeaderRunID, Value: []byte(runID)},
		},
	}, nil
}
