package errors

import sterrors "errors"

var (
	ErrNoProvider        = sterrors.New("netflight: no event provider registered")
	ErrAmbiguousProvider = sterrors.New("netflight: more than one event provider registered")
	ErrUnknownProvider   = sterrors.New("netflight: unknown event provider")
	ErrProviderRequired  = sterrors.New("netflight: provider builder returned no gateway")
	ErrDowngrade         = sterrors.New("netflight: refusing to replace a resolved gateway")
	ErrUnknownKind       = sterrors.New("netflight: unknown event kind")
	ErrInvalidSetting    = sterrors.New("netflight: invalid event setting")
	ErrUnknownSink       = sterrors.New("netflight: unknown sink")
	ErrPublisherRequired = sterrors.New("netflight: publisher is required")
	ErrTopicRequired     = sterrors.New("netflight: topic is required")
	ErrConfigRequired    = sterrors.New("netflight: configuration is required")
)
