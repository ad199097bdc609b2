// Package smsforge renders outbound SMS text from brand/status-specific
// message templates with required-parameter validation.
package smsforge

import (
	"fmt"
	"sort"
	"strings"
)

// MessageType categorizes outbound messages.
type MessageType string

const (
	TypeOrder        MessageType = "order"
	TypeCancellation MessageType = "cancellation"
)

// OrderStatus discriminates templates within a message type.
type OrderStatus string

const (
	StatusOrderSubmitted OrderStatus = "order_submitted"
	StatusNewOrder       OrderStatus = "new_order"
	StatusAllocated      OrderStatus = "allocated"
	StatusPartial        OrderStatus = "partial"
	StatusCancelled      OrderStatus = "cancelled"
	StatusCollected      OrderStatus = "collected"
	StatusReminder       OrderStatus = "reminder"
	StatusFinalReminder  OrderStatus = "final_reminder"
	StatusExpiryAlert    OrderStatus = "expiry_alert"
)

// ParameterError reports the required parameters a render call did not
// supply. Rendering fails closed: no text is produced.
type ParameterError struct {
	Missing []string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("missing required parameters: %s", strings.Join(e.Missing, ", "))
}

// Template is one registered message body with {param} placeholders.
// Immutable after registration.
type Template struct {
	Type           MessageType
	Status         OrderStatus
	Body           string
	RequiredParams []string
}

// Render substitutes {name} placeholders from params.
//
// Every required parameter must be present or a ParameterError names the
// missing ones. Placeholders without a matching param are left verbatim:
// optional placeholders are legitimate. Substitution is one left-to-right
// scan; a '{' that does not open a {identifier} placeholder passes through
// unchanged.
func (t *Template) Render(params map[string]string) (string, error) {
	var missing []string
	for _, name := range t.RequiredParams {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &ParameterError{Missing: missing}
	}

	var b strings.Builder
	b.Grow(len(t.Body))
	body := t.Body

	for i := 0; i < len(body); {
		c := body[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}

		name, end, ok := scanPlaceholder(body, i)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}
		if value, present := params[name]; present {
			b.WriteString(value)
		} else {
			b.WriteString(body[i:end])
		}
		i = end
	}
	return b.String(), nil
}

// scanPlaceholder checks for a {identifier} starting at open and returns the
// identifier and the index just past the closing brace.
func scanPlaceholder(s string, open int) (string, int, bool) {
	i := open + 1
	start := i
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == start || i >= len(s) || s[i] != '}' {
		return "", 0, false
	}
	return s[start:i], i + 1, true
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
