package cloudevents

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ToStruct converts the event into a protobuf Struct. The time attribute must
// be representable as a google.protobuf.Timestamp and is carried in its
// RFC3339 JSON form.
func (e Event) ToStruct() (*structpb.Struct, error) {
	attrs := e.Attributes()
	if !e.Time.IsZero() {
		ts := timestamppb.New(e.Time)
		if err := ts.CheckValid(); err != nil {
			return nil, fmt.Errorf("encode time: %w", err)
		}
		attrs["time"] = FormatTime(ts.AsTime())
	}
	if data, ok := attrs["data"]; ok {
		normalized, err := normalizeForStruct(data)
		if err != nil {
			return nil, fmt.Errorf("encode data: %w", err)
		}
		attrs["data"] = normalized
	}
	return structpb.NewStruct(attrs)
}

// FromStruct is the inverse of ToStruct.
func FromStruct(s *structpb.Struct) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("struct is nil")
	}
	return FromAttributes(s.AsMap())
}

// MarshalProto encodes the event as a binary google.protobuf.Struct.
func (e Event) MarshalProto() ([]byte, error) {
	s, err := e.ToStruct()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// UnmarshalProto decodes an event produced by MarshalProto.
func UnmarshalProto(data []byte) (Event, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return Event{}, err
	}
	return FromStruct(s)
}

// normalizeForStruct widens values structpb.NewValue does not accept, such as
// typed maps, into plain map[string]any.
func normalizeForStruct(v any) (any, error) {
	switch data := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(data))
		for k, item := range data {
			n, err := normalizeForStruct(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(data))
		for k, item := range data {
			out[k] = item
		}
		return out, nil
	default:
		if _, err := structpb.NewValue(v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
