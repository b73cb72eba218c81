// Package metadata holds the message headers attached to every event a sink
// publishes.
package metadata

import "github.com/ThreeDotsLabs/watermill/message"

// Header keys set on published event messages.
const (
	KeyEventID     = "ce_id"
	KeyEventType   = "ce_type"
	KeySource      = "ce_source"
	KeyContentType = "content-type"
	KeyKind        = "nf_kind"
	KeyProvider    = "nf_provider"
)

// Metadata represents the headers carried alongside an event.
type Metadata map[string]string

// Clone returns a shallow copy of the metadata map. It never returns nil.
func (m Metadata) Clone() Metadata {
	cloned := make(Metadata, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// With returns a cloned metadata map containing the provided key/value pair.
// Empty values are skipped.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.Clone()
	if value != "" {
		cloned[key] = value
	}
	return cloned
}

// New constructs a Metadata map from alternating key/value pairs. A trailing
// key without a value is ignored.
func New(pairs ...string) Metadata {
	md := make(Metadata, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		md[pairs[i]] = pairs[i+1]
	}
	return md
}

// Apply copies the entries onto a Watermill message.
func (m Metadata) Apply(msg *message.Message) {
	for k, v := range m {
		msg.Metadata.Set(k, v)
	}
}

// FromWatermill copies Watermill metadata.
func FromWatermill(md message.Metadata) Metadata {
	result := make(Metadata, len(md))
	for k, v := range md {
		result[k] = v
	}
	return result
}
