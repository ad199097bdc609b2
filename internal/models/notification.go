// Package models holds the canonical entities flowing through the pipeline.
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// OptionalString is an explicitly present-or-absent string. Optional record
// fields use it so absence is distinguishable from an empty value; ad hoc
// ""-means-missing conventions are not allowed past extraction.
type OptionalString struct {
	value   string
	present bool
}

// Some wraps a present value.
func Some(v string) OptionalString {
	return OptionalString{value: v, present: true}
}

// None is the absent value.
func None() OptionalString {
	return OptionalString{}
}

// Get returns the value and whether it is present.
func (o OptionalString) Get() (string, bool) {
	return o.value, o.present
}

// Present reports whether a value is set.
func (o OptionalString) Present() bool {
	return o.present
}

// Or returns the value when present, def otherwise.
func (o OptionalString) Or(def string) string {
	if o.present {
		return o.value
	}
	return def
}

func (o OptionalString) String() string {
	if !o.present {
		return "<absent>"
	}
	return o.value
}

// NotificationRecord is the validated outcome of field extraction: the
// canonical set of notification fields a single order event carries.
// Required fields are always non-empty; the record is immutable once built
// and consumed exactly once by the orchestrator.
type NotificationRecord struct {
	ID          string
	PhoneNumber string
	Message     string
	BrandCode   string

	BrandName        OptionalString
	ChannelCode      OptionalString
	ChannelName      OptionalString
	OrderID          OptionalString
	CreatedAt        OptionalString
	ActionExpression OptionalString
}

// NewNotificationRecord builds a record, enforcing the required-field
// invariant. Callers that collected the fields themselves still cannot
// construct an invalid record.
func NewNotificationRecord(phoneNumber, message, brandCode string) (*NotificationRecord, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("notification record requires a phone number")
	}
	if message == "" {
		return nil, fmt.Errorf("notification record requires a message")
	}
	if brandCode == "" {
		return nil, fmt.Errorf("notification record requires a brand code")
	}
	return &NotificationRecord{
		ID:          uuid.New().String(),
		PhoneNumber: phoneNumber,
		Message:     message,
		BrandCode:   brandCode,
	}, nil
}
