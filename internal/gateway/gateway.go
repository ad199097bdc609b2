// Package gateway holds the outbound SMS delivery clients. The pipeline
// talks to a single Gateway interface; which provider backs it is a
// deployment decision.
package gateway

import (
	"context"
	"fmt"
)

// SendResult is the provider's acknowledgement of one accepted message.
type SendResult struct {
	MessageID string
	Status    string
}

// Gateway delivers one rendered SMS. Implementations must honor ctx
// cancellation and deadlines; the dispatcher relies on it for per-attempt
// timeouts.
type Gateway interface {
	Send(ctx context.Context, phoneNumber, text, senderID string) (*SendResult, error)
}

// Error is a transient delivery failure. It drives retries; permanent
// provider rejections still surface as Errors because the provider does not
// reliably distinguish them.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway %s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
