// Package orchestrator sequences the notification pipeline: parse, extract,
// classify, render, dispatch. It is the single entry point the transport
// layer calls; every outcome that crosses it is a typed result.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"sms-notifier/internal/brand"
	"sms-notifier/internal/common/errors"
	"sms-notifier/internal/common/logger"
	"sms-notifier/internal/common/metrics"
	"sms-notifier/internal/common/observability"
	"sms-notifier/internal/common/validation"
	"sms-notifier/internal/gateway"
	"sms-notifier/internal/models"
	"sms-notifier/internal/resilience"
	"sms-notifier/internal/smsforge"
	"sms-notifier/internal/xmlforge"
)

// Deduper is the seen-marker guard. Implemented by dedupe.Store; nil-able
// behind the interface so deployments can run without Redis.
type Deduper interface {
	MarkIfNew(ctx context.Context, key string) (bool, error)
	Unmark(ctx context.Context, key string) error
}

// Outcome is the definite result of one processed document.
type Outcome struct {
	Record    *models.NotificationRecord
	Text      string
	Result    *gateway.SendResult
	Duplicate bool
}

// Orchestrator wires the pipeline stages together. It holds no mutable
// state of its own and is safe for concurrent use; the dispatcher's breaker
// is the only shared state underneath.
type Orchestrator struct {
	extractor  *xmlforge.Extractor
	templates  *smsforge.Registry
	brands     *brand.Registry
	validator  *validation.Validator
	deduper    Deduper
	dispatcher *resilience.Dispatcher
	gateway    gateway.Gateway
	obs        *observability.Observability
	log        logger.Logger
}

// Options carries the orchestrator's collaborators. Deduper and
// Observability may be nil.
type Options struct {
	Extractor     *xmlforge.Extractor
	Templates     *smsforge.Registry
	Brands        *brand.Registry
	Validator     *validation.Validator
	Deduper       Deduper
	Dispatcher    *resilience.Dispatcher
	Gateway       gateway.Gateway
	Observability *observability.Observability
	Logger        logger.Logger
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		extractor:  opts.Extractor,
		templates:  opts.Templates,
		brands:     opts.Brands,
		validator:  opts.Validator,
		deduper:    opts.Deduper,
		dispatcher: opts.Dispatcher,
		gateway:    opts.Gateway,
		obs:        opts.Observability,
		log:        opts.Logger,
	}
}

// Process runs one raw document through the full pipeline. It never panics
// across this boundary: every return is either a complete Outcome or a
// *errors.StandardError describing exactly where the document died.
func (o *Orchestrator) Process(ctx context.Context, raw string, format xmlforge.DocumentFormat) (*Outcome, error) {
	start := time.Now()
	outcome, err := o.process(ctx, raw, format)
	o.record(ctx, format, start, outcome, err)
	return outcome, err
}

func (o *Orchestrator) process(ctx context.Context, raw string, format xmlforge.DocumentFormat) (*Outcome, error) {
	if format == xmlforge.FormatJSON && o.validator != nil {
		if err := o.validator.Validate([]byte(raw)); err != nil {
			return nil, o.fail(err, "document failed schema validation", nil)
		}
	}

	doc, err := xmlforge.Parse(raw, format)
	if err != nil {
		return nil, o.fail(errors.NewInvalidDocumentError(err), "document failed to parse", nil)
	}

	record, err := o.extract(doc, format)
	if err != nil {
		return nil, err
	}

	log := o.log.WithFields(map[string]interface{}{
		"record_id": record.ID,
		"brand":     record.BrandCode,
		"order_id":  record.OrderID.Or(""),
	})

	b, ok := o.brands.Resolve(record.BrandCode)
	if !ok {
		return nil, o.fail(
			errors.NewInvalidDocumentError(fmt.Errorf("unrecognized brand code %q and no default brand configured", record.BrandCode)),
			"document carries unknown brand", log)
	}

	// The seen-marker is taken before dispatch so concurrent deliveries of
	// the same event race on SETNX, not on the gateway. Any failure past
	// this point releases it again: a marked-but-undelivered event must not
	// be suppressed when the transport redelivers it.
	var seenKey string
	if o.deduper != nil {
		seenKey = dedupeKey(record)
		fresh, err := o.deduper.MarkIfNew(ctx, seenKey)
		if err != nil {
			return nil, o.fail(err, "dedupe check failed", log)
		}
		if !fresh {
			log.Info("duplicate document, delivery suppressed", nil)
			return &Outcome{Record: record, Duplicate: true}, nil
		}
	}

	text, err := o.render(record, b, log)
	if err != nil {
		o.releaseSeen(ctx, seenKey, log)
		return nil, err
	}

	result, err := o.dispatch(ctx, record, b, text)
	if err != nil {
		metrics.SmsSent.WithLabelValues("failed", b.Code).Inc()
		o.releaseSeen(ctx, seenKey, log)
		return nil, o.fail(err, "delivery failed", log)
	}

	metrics.SmsSent.WithLabelValues("sent", b.Code).Inc()
	log.Info("notification delivered", map[string]interface{}{
		"message_id": result.MessageID,
		"status":     result.Status,
	})
	return &Outcome{Record: record, Text: text, Result: result}, nil
}

func (o *Orchestrator) extract(doc *xmlforge.Document, format xmlforge.DocumentFormat) (*models.NotificationRecord, error) {
	specs := xmlforge.SOAPFieldSpecs()
	if format == xmlforge.FormatJSON {
		specs = xmlforge.JSONFieldSpecs()
	}

	record, err := xmlforge.ExtractRecord(o.extractor, doc, specs)
	if err != nil {
		var failure *xmlforge.ExtractionFailure
		if stderrors.As(err, &failure) {
			return nil, o.fail(errors.NewMissingFieldsError(err), "required fields missing", o.log.WithFields(map[string]interface{}{
				"missing_fields": failure.MissingFields,
			}))
		}
		return nil, o.fail(errors.NewInvalidDocumentError(err), "record assembly failed", nil)
	}
	return record, nil
}

func (o *Orchestrator) render(record *models.NotificationRecord, b brand.Brand, log logger.Logger) (string, error) {
	c := Classify(record.ActionExpression.Or(""), record.Message)

	tmpl, err := o.templates.Lookup(c.Type, c.Status)
	if err != nil {
		return "", o.fail(errors.NewTemplateNotFoundError(string(c.Type), string(c.Status)), "no template for classification", log)
	}

	params := map[string]string{
		"brand": b.Name,
	}
	if orderID, ok := record.OrderID.Get(); ok {
		params["orderId"] = orderID
	}
	if c.ExpiryDate != "" {
		params["expiryDate"] = c.ExpiryDate
	}

	text, err := tmpl.Render(params)
	if err != nil {
		return "", o.fail(errors.NewTemplateParamsError(err), "template parameters missing", log)
	}
	return text, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, record *models.NotificationRecord, b brand.Brand, text string) (*gateway.SendResult, error) {
	var result *gateway.SendResult
	err := o.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
		r, err := o.gateway.Send(ctx, record.PhoneNumber, text, b.SenderID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var de *resilience.DispatchError
		if stderrors.As(err, &de) && de.Cancelled {
			return nil, errors.NewDispatchCancelledError(err)
		}
		return nil, errors.NewDispatchExhaustedError(err)
	}
	return result, nil
}

// releaseSeen drops the seen-marker after a failed delivery. Best effort: if
// the store is down the marker's TTL eventually clears it anyway.
func (o *Orchestrator) releaseSeen(ctx context.Context, key string, log logger.Logger) {
	if o.deduper == nil || key == "" {
		return
	}
	if err := o.deduper.Unmark(ctx, key); err != nil {
		log.WithError(err).Warn("seen-marker release failed, redelivery may be suppressed until the marker expires", nil)
	}
}

// dedupeKey builds a stable identity for repeat deliveries of the same
// event. The parse-time record ID is unique per parse, so it cannot serve;
// the order id with the creation time can.
func dedupeKey(record *models.NotificationRecord) string {
	if orderID, ok := record.OrderID.Get(); ok {
		return orderID + "|" + record.CreatedAt.Or("")
	}
	return record.PhoneNumber + "|" + record.Message
}

// fail normalizes any pipeline error into a StandardError and logs it once
// at the boundary.
func (o *Orchestrator) fail(err error, msg string, log logger.Logger) error {
	if log == nil {
		log = o.log
	}

	var std *errors.StandardError
	if !stderrors.As(err, &std) {
		std = errors.NewInvalidDocumentError(err)
	}

	log.WithError(std).Error(msg, map[string]interface{}{
		"error_code": string(std.Code),
		"retryable":  std.Retryable,
	})
	return std
}

func (o *Orchestrator) record(ctx context.Context, format xmlforge.DocumentFormat, start time.Time, outcome *Outcome, err error) {
	label := "success"
	switch {
	case err != nil:
		label = "failure"
	case outcome != nil && outcome.Duplicate:
		label = "duplicate"
	}
	metrics.DocumentsProcessed.WithLabelValues(string(format), label).Inc()
	if o.obs != nil {
		o.obs.RecordProcessed(ctx, label)
		o.obs.RecordDuration(ctx, time.Since(start), label)
	}
}
