package orchestrator

import (
	"strings"

	"sms-notifier/internal/smsforge"
)

// Classification is the template coordinate derived from one record, plus
// any expiry date the action expression carried.
type Classification struct {
	Type       smsforge.MessageType
	Status     smsforge.OrderStatus
	ExpiryDate string
}

// actionStatuses maps normalized action verbs to order statuses. Action
// expressions arrive as "verb" or "verb:argument"; for the reminder family
// the argument is the collection expiry date.
var actionStatuses = map[string]smsforge.OrderStatus{
	"order_submitted": smsforge.StatusOrderSubmitted,
	"submitted":       smsforge.StatusOrderSubmitted,
	"new_order":       smsforge.StatusNewOrder,
	"created":         smsforge.StatusNewOrder,
	"allocated":       smsforge.StatusAllocated,
	"ready":           smsforge.StatusAllocated,
	"partial":         smsforge.StatusPartial,
	"cancelled":       smsforge.StatusCancelled,
	"cancel":          smsforge.StatusCancelled,
	"collected":       smsforge.StatusCollected,
	"reminder":        smsforge.StatusReminder,
	"final_reminder":  smsforge.StatusFinalReminder,
	"expiry_alert":    smsforge.StatusExpiryAlert,
	"expired":         smsforge.StatusExpiryAlert,
}

// messageStatuses are fallback keyword probes against the message text,
// checked in order because later phrases are substrings of earlier ones
// ("final reminder" before "reminder").
var messageStatuses = []struct {
	phrase string
	status smsforge.OrderStatus
}{
	{"final reminder", smsforge.StatusFinalReminder},
	{"reminder", smsforge.StatusReminder},
	{"part of your order", smsforge.StatusPartial},
	{"ready to collect", smsforge.StatusAllocated},
	{"been cancelled", smsforge.StatusCancelled},
	{"were collected", smsforge.StatusCollected},
	{"expired", smsforge.StatusExpiryAlert},
	{"been received", smsforge.StatusNewOrder},
}

// Classify derives the template coordinate for a record from its action
// expression, falling back to message-text keywords, and finally to the
// plain new-order acknowledgement. Pure: no side effects, no I/O.
func Classify(actionExpression, message string) Classification {
	verb, arg := splitAction(actionExpression)

	if status, ok := actionStatuses[verb]; ok {
		return Classification{
			Type:       typeForStatus(status),
			Status:     status,
			ExpiryDate: arg,
		}
	}

	lower := strings.ToLower(message)
	for _, probe := range messageStatuses {
		if strings.Contains(lower, probe.phrase) {
			return Classification{
				Type:       typeForStatus(probe.status),
				Status:     probe.status,
				ExpiryDate: arg,
			}
		}
	}

	return Classification{Type: smsforge.TypeOrder, Status: smsforge.StatusNewOrder}
}

func splitAction(expr string) (verb, arg string) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if i := strings.IndexByte(expr, ':'); i >= 0 {
		return strings.TrimSpace(expr[:i]), strings.TrimSpace(expr[i+1:])
	}
	return expr, ""
}

func typeForStatus(status smsforge.OrderStatus) smsforge.MessageType {
	if status == smsforge.StatusCancelled {
		return smsforge.TypeCancellation
	}
	return smsforge.TypeOrder
}
