// Package cloudevents provides the CloudEvents v1.0 envelope committed events
// are wrapped in before they leave the process through a message sink.
package cloudevents

import (
	"fmt"
	"time"

	"github.com/drblury/netflight/internal/ids"
	"github.com/drblury/netflight/internal/jsoncodec"
)

// SpecVersion is the CloudEvents specification version implemented.
const SpecVersion = "1.0"

// Content types for the data attribute.
const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/protobuf"
)

// Extension attributes set by the recorder.
const (
	ExtKind     = "nfkind"
	ExtProvider = "nfprovider"
)

// Event is a CloudEvents v1.0 envelope. Extensions are flattened into the top
// level object when encoded.
type Event struct {
	SpecVersion     string
	Type            string
	Source          string
	ID              string
	Time            time.Time
	DataContentType string
	Subject         string
	Data            any
	Extensions      map[string]any
}

// New creates an event with a fresh ULID id stamped at t.
func New(eventType, source string, t time.Time, data any) Event {
	return Event{
		SpecVersion: SpecVersion,
		Type:        eventType,
		Source:      source,
		ID:          ids.NewAt(t),
		Time:        t.UTC(),
		Data:        data,
		Extensions:  make(map[string]any),
	}
}

// WithSubject sets the subject and returns the event.
func (e Event) WithSubject(subject string) Event {
	e.Subject = subject
	return e
}

// WithDataContentType sets the data content type and returns the event.
func (e Event) WithDataContentType(contentType string) Event {
	e.DataContentType = contentType
	return e
}

// WithExtension sets an extension attribute on a copy of the extensions and
// returns the event.
func (e Event) WithExtension(key string, value any) Event {
	ext := make(map[string]any, len(e.Extensions)+1)
	for k, v := range e.Extensions {
		ext[k] = v
	}
	ext[key] = value
	e.Extensions = ext
	return e
}

// ExtensionString returns the extension as a string, empty when absent.
func (e Event) ExtensionString(key string) string {
	v, ok := e.Extensions[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Validate checks that the event has all required CloudEvents attributes.
func (e Event) Validate() error {
	if e.SpecVersion == "" {
		return fmt.Errorf("specversion is required")
	}
	if e.SpecVersion != SpecVersion {
		return fmt.Errorf("specversion must be %q, got %q", SpecVersion, e.SpecVersion)
	}
	if e.Type == "" {
		return fmt.Errorf("type is required")
	}
	if e.Source == "" {
		return fmt.Errorf("source is required")
	}
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

var knownAttributes = map[string]bool{
	"specversion":     true,
	"type":            true,
	"source":          true,
	"id":              true,
	"time":            true,
	"datacontenttype": true,
	"subject":         true,
	"data":            true,
}

// Attributes returns the flattened attribute map used by every encoding.
func (e Event) Attributes() map[string]any {
	m := make(map[string]any, len(knownAttributes)+len(e.Extensions))
	for k, v := range e.Extensions {
		m[k] = v
	}
	m["specversion"] = e.SpecVersion
	m["type"] = e.Type
	m["source"] = e.Source
	m["id"] = e.ID
	if !e.Time.IsZero() {
		m["time"] = FormatTime(e.Time)
	}
	if e.DataContentType != "" {
		m["datacontenttype"] = e.DataContentType
	}
	if e.Subject != "" {
		m["subject"] = e.Subject
	}
	if e.Data != nil {
		m["data"] = e.Data
	}
	return m
}

// FromAttributes is the inverse of Attributes.
func FromAttributes(m map[string]any) (Event, error) {
	var e Event
	e.SpecVersion, _ = m["specversion"].(string)
	e.Type, _ = m["type"].(string)
	e.Source, _ = m["source"].(string)
	e.ID, _ = m["id"].(string)
	e.DataContentType, _ = m["datacontenttype"].(string)
	e.Subject, _ = m["subject"].(string)
	e.Data = m["data"]

	if raw, ok := m["time"]; ok {
		s, _ := raw.(string)
		t, err := ParseTime(s)
		if err != nil {
			return Event{}, fmt.Errorf("invalid time: %w", err)
		}
		e.Time = t
	}

	e.Extensions = make(map[string]any)
	for k, v := range m {
		if !knownAttributes[k] {
			e.Extensions[k] = v
		}
	}
	return e, nil
}

// MarshalJSON implements json.Marshaler for the structured JSON format.
func (e Event) MarshalJSON() ([]byte, error) {
	return jsoncodec.Marshal(e.Attributes())
}

// UnmarshalJSON implements json.Unmarshaler for the structured JSON format.
func (e *Event) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := jsoncodec.Unmarshal(data, &m); err != nil {
		return err
	}
	decoded, err := FromAttributes(m)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}
