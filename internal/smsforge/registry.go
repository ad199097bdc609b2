package smsforge

import "fmt"

// NotFoundError reports a registry miss. The absence of a template for a
// status is a caller-visible cannot-notify condition; there is deliberately
// no fallback template.
type NotFoundError struct {
	Type   MessageType
	Status OrderStatus
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no template registered for (%s, %s)", e.Type, e.Status)
}

type registryKey struct {
	messageType MessageType
	status      OrderStatus
}

// Registry maps (message type, order status) to exactly one template.
// Populated once at construction, read-only afterwards.
type Registry struct {
	templates map[registryKey]*Template
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[registryKey]*Template)}
}

// Register adds a template; a second template for the same (type, status)
// pair is a configuration error.
func (r *Registry) Register(t *Template) error {
	if t.Body == "" {
		return fmt.Errorf("template (%s, %s) has an empty body", t.Type, t.Status)
	}
	key := registryKey{messageType: t.Type, status: t.Status}
	if _, exists := r.templates[key]; exists {
		return fmt.Errorf("template (%s, %s) registered twice", t.Type, t.Status)
	}
	r.templates[key] = t
	return nil
}

// Lookup finds the template for the exact (type, status) pair.
func (r *Registry) Lookup(messageType MessageType, status OrderStatus) (*Template, error) {
	t, ok := r.templates[registryKey{messageType: messageType, status: status}]
	if !ok {
		return nil, &NotFoundError{Type: messageType, Status: status}
	}
	return t, nil
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}
