// Package consumer reads order events from Kafka and feeds them through the
// notification pipeline. Offsets commit only for documents that reached a
// terminal outcome; a retryable delivery failure holds its offset back so
// the group redelivers the message, and the dedupe guard absorbs genuine
// replays of delivered ones.
package consumer

import (
	"context"
	stderrors "errors"

	"github.com/segmentio/kafka-go"

	"sms-notifier/internal/common/config"
	"sms-notifier/internal/common/errors"
	"sms-notifier/internal/common/logger"
	"sms-notifier/internal/orchestrator"
	"sms-notifier/internal/xmlforge"
)

// Processor is the pipeline entry point. Implemented by
// orchestrator.Orchestrator.
type Processor interface {
	Process(ctx context.Context, raw string, format xmlforge.DocumentFormat) (*orchestrator.Outcome, error)
}

// Consumer owns one Kafka reader and drains it until its context ends.
type Consumer struct {
	reader    *kafka.Reader
	processor Processor
	log       logger.Logger
}

func New(cfg config.KafkaConfig, processor Processor, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return &Consumer{reader: reader, processor: processor, log: log}
}

// NewWithReader is used by tests to inject a preconfigured reader.
func NewWithReader(reader *kafka.Reader, processor Processor, log logger.Logger) *Consumer {
	return &Consumer{reader: reader, processor: processor, log: log}
}

// Run consumes until ctx is cancelled. It returns nil on clean shutdown and
// the fetch error otherwise.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started", map[string]interface{}{
		"topic": c.reader.Config().Topic,
		"group": c.reader.Config().GroupID,
	})

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if !c.handle(ctx, msg) {
			// Retryable failure: leave the offset uncommitted so the group
			// redelivers the message after a restart or rebalance.
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.WithError(err).Error("offset commit failed", map[string]interface{}{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			})
		}
	}
}

// handle runs one message to a definite outcome and reports whether its
// offset may be committed. Document-fatal failures are logged, dropped, and
// committed so a poison message cannot wedge the partition; retryable
// failures are not committed.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	raw := string(msg.Value)
	format := xmlforge.DetectFormat(raw)

	log := c.log.WithFields(map[string]interface{}{
		"partition": msg.Partition,
		"offset":    msg.Offset,
		"format":    string(format),
	})

	outcome, err := c.processor.Process(ctx, raw, format)
	if err != nil {
		var std *errors.StandardError
		if stderrors.As(err, &std) && std.Retryable {
			// Transient failure already exhausted its retries inside the
			// dispatcher; holding the offset back keeps the message eligible
			// for redelivery, so log loudly and do not commit.
			log.WithError(err).Error("document failed after exhausting delivery retries", nil)
			return false
		}
		log.WithError(err).Warn("document dropped", nil)
		return true
	}

	if outcome.Duplicate {
		log.Debug("duplicate document skipped", nil)
		return true
	}
	log.Debug("document processed", map[string]interface{}{
		"record_id": outcome.Record.ID,
	})
	return true
}

// Close releases the reader and its group membership.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
