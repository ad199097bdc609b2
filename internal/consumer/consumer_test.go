package consumer

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"sms-notifier/internal/common/errors"
	"sms-notifier/internal/common/logger"
	"sms-notifier/internal/models"
	"sms-notifier/internal/orchestrator"
	"sms-notifier/internal/xmlforge"
)

type fakeProcessor struct {
	raws    []string
	formats []xmlforge.DocumentFormat
	outcome *orchestrator.Outcome
	err     error
}

func (f *fakeProcessor) Process(ctx context.Context, raw string, format xmlforge.DocumentFormat) (*orchestrator.Outcome, error) {
	f.raws = append(f.raws, raw)
	f.formats = append(f.formats, format)
	return f.outcome, f.err
}

func testOutcome() *orchestrator.Outcome {
	record, _ := models.NewNotificationRecord("07700900123", "hi", "BQ")
	return &orchestrator.Outcome{Record: record}
}

func TestConsumer_Handle_SniffsFormat(t *testing.T) {
	p := &fakeProcessor{outcome: testOutcome()}
	c := NewWithReader(nil, p, logger.NewTestLogger(t))

	assert.True(t, c.handle(context.Background(), kafka.Message{Value: []byte(`<SOAP-ENV:Envelope/>`)}))
	assert.True(t, c.handle(context.Background(), kafka.Message{Value: []byte(`{"banner":"BQ"}`)}))

	assert.Equal(t, []xmlforge.DocumentFormat{xmlforge.FormatSOAP, xmlforge.FormatJSON}, p.formats)
	assert.Equal(t, `<SOAP-ENV:Envelope/>`, p.raws[0])
}

func TestConsumer_Handle_DocumentFatalFailureIsDropped(t *testing.T) {
	// A poison message must reach a definite outcome without panicking so
	// the caller can still commit past it.
	p := &fakeProcessor{err: errors.NewInvalidDocumentError(assert.AnError)}
	c := NewWithReader(nil, p, logger.NewTestLogger(t))

	assert.True(t, c.handle(context.Background(), kafka.Message{Value: []byte(`<broken`)}),
		"a poison message commits so it cannot wedge the partition")
	assert.Len(t, p.raws, 1)
}

func TestConsumer_Handle_RetryableFailureHoldsOffset(t *testing.T) {
	p := &fakeProcessor{err: errors.NewDispatchExhaustedError(assert.AnError)}
	c := NewWithReader(nil, p, logger.NewTestLogger(t))

	assert.False(t, c.handle(context.Background(), kafka.Message{Value: []byte(`{"banner":"BQ"}`)}),
		"an exhausted delivery must stay uncommitted for redelivery")
	assert.Len(t, p.raws, 1)
}

func TestConsumer_Handle_Duplicate(t *testing.T) {
	outcome := testOutcome()
	outcome.Duplicate = true
	p := &fakeProcessor{outcome: outcome}
	c := NewWithReader(nil, p, logger.NewTestLogger(t))

	assert.True(t, c.handle(context.Background(), kafka.Message{Value: []byte(`{"banner":"BQ"}`)}))
	assert.Len(t, p.raws, 1)
}
