package xmlforge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// DocumentFormat identifies the wire shape of an inbound payload.
type DocumentFormat string

const (
	FormatSOAP DocumentFormat = "soap"
	FormatJSON DocumentFormat = "json"
)

// DetectFormat sniffs the payload: XML documents start with '<', everything
// else is treated as a flat JSON order event.
func DetectFormat(raw string) DocumentFormat {
	if strings.HasPrefix(strings.TrimSpace(raw), "<") {
		return FormatSOAP
	}
	return FormatJSON
}

// ParseError reports a malformed inbound document. Fatal for the document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("document parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is a parsed payload: an immutable tree plus an identity the
// extraction cache keys on. The root is always a map.
type Document struct {
	ID   string
	Root *TreeValue
}

// Parse dispatches on format.
func Parse(raw string, format DocumentFormat) (*Document, error) {
	if format == FormatJSON {
		return ParseJSON(raw)
	}
	return ParseSOAP(raw)
}

// ParseSOAP parses a SOAP-wrapped XML document into a TreeValue tree.
//
// The tree mirrors the shape path tables are written against: every child
// element name maps to an ordered list of the elements carrying that name,
// so repeated elements and single elements address identically (key, then
// index 0). Leaf elements become scalars carrying their attributes.
func ParseSOAP(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Err: fmt.Errorf("empty document")}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Err: fmt.Errorf("no root element")}
	}

	return &Document{
		ID:   uuid.New().String(),
		Root: NewMap(map[string]*TreeValue{qualifiedName(root): convertElement(root)}),
	}, nil
}

// ParseJSON parses a flat JSON order event. The top-level value must be an
// object, matching the invariant that a document root is always a map.
func ParseJSON(raw string) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var top interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, &ParseError{Err: err}
	}

	obj, ok := top.(map[string]interface{})
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("top-level JSON value must be an object, got %T", top)}
	}

	return &Document{
		ID:   uuid.New().String(),
		Root: convertJSON(obj),
	}, nil
}

func convertElement(e *etree.Element) *TreeValue {
	attrs := elementAttrs(e)
	children := e.ChildElements()

	if len(children) == 0 {
		text := strings.TrimSpace(e.Text())
		if len(attrs) > 0 {
			return NewAttributedScalar(text, attrs)
		}
		return NewScalar(text)
	}

	entries := make(map[string]*TreeValue)
	for _, child := range children {
		name := qualifiedName(child)
		converted := convertElement(child)
		if existing := entries[name]; existing != nil {
			entries[name] = NewList(append(existing.list, converted)...)
		} else {
			entries[name] = NewList(converted)
		}
	}
	if len(attrs) > 0 {
		return NewAttributedMap(entries, attrs)
	}
	return NewMap(entries)
}

func elementAttrs(e *etree.Element) map[string]string {
	if len(e.Attr) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(e.Attr))
	for _, a := range e.Attr {
		// Namespace declarations are wiring, not data.
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		attrs[a.Key] = a.Value
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func qualifiedName(e *etree.Element) string {
	if e.Space != "" {
		return e.Space + ":" + e.Tag
	}
	return e.Tag
}

func convertJSON(v interface{}) *TreeValue {
	switch val := v.(type) {
	case map[string]interface{}:
		entries := make(map[string]*TreeValue, len(val))
		for k, child := range val {
			entries[k] = convertJSON(child)
		}
		return NewMap(entries)
	case []interface{}:
		items := make([]*TreeValue, len(val))
		for i, child := range val {
			items[i] = convertJSON(child)
		}
		return NewList(items...)
	case string:
		return NewScalar(val)
	case json.Number:
		return NewScalar(val.String())
	case bool:
		return NewScalar(fmt.Sprintf("%t", val))
	case nil:
		return NewScalar("")
	default:
		return NewScalar(fmt.Sprintf("%v", val))
	}
}
