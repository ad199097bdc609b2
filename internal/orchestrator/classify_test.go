package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sms-notifier/internal/smsforge"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		action         string
		message        string
		expectedType   smsforge.MessageType
		expectedStatus smsforge.OrderStatus
		expectedExpiry string
	}{
		{
			name:           "action verb",
			action:         "allocated",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusAllocated,
		},
		{
			name:           "action verb case insensitive",
			action:         "ALLOCATED",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusAllocated,
		},
		{
			name:           "cancellation routes to its own type",
			action:         "cancelled",
			expectedType:   smsforge.TypeCancellation,
			expectedStatus: smsforge.StatusCancelled,
		},
		{
			name:           "reminder carries expiry argument",
			action:         "reminder:2024-03-08",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusReminder,
			expectedExpiry: "2024-03-08",
		},
		{
			name:           "final reminder",
			action:         "final_reminder:2024-03-08",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusFinalReminder,
			expectedExpiry: "2024-03-08",
		},
		{
			name:           "message text fallback",
			message:        "Your order BQ123 is ready to collect from store.",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusAllocated,
		},
		{
			name:           "final reminder wins over plain reminder in text",
			message:        "Final reminder: collect your order.",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusFinalReminder,
		},
		{
			name:           "cancellation from text",
			message:        "Unfortunately your order has been cancelled.",
			expectedType:   smsforge.TypeCancellation,
			expectedStatus: smsforge.StatusCancelled,
		},
		{
			name:           "unrecognized everything falls back",
			action:         "frobnicate",
			message:        "Totally novel copy.",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusNewOrder,
		},
		{
			name:           "empty inputs fall back",
			expectedType:   smsforge.TypeOrder,
			expectedStatus: smsforge.StatusNewOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.action, tt.message)
			assert.Equal(t, tt.expectedType, c.Type)
			assert.Equal(t, tt.expectedStatus, c.Status)
			assert.Equal(t, tt.expectedExpiry, c.ExpiryDate)
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	a := Classify("reminder:2024-03-08", "some text")
	b := Classify("reminder:2024-03-08", "some text")
	assert.Equal(t, a, b)
}
