package netflight

import (
	"github.com/drblury/netflight/gateway"
	ce "github.com/drblury/netflight/internal/cloudevents"
	configpkg "github.com/drblury/netflight/internal/config"
	errspkg "github.com/drblury/netflight/internal/errors"
	idspkg "github.com/drblury/netflight/internal/ids"
	"github.com/drblury/netflight/internal/jsoncodec"
	loggingpkg "github.com/drblury/netflight/internal/logging"
	metadatapkg "github.com/drblury/netflight/internal/metadata"
	runtimepkg "github.com/drblury/netflight/internal/runtime"
	"github.com/drblury/netflight/netio"
	"github.com/drblury/netflight/recorder"
	"github.com/drblury/netflight/sink"

	// Register every built-in sink.
	_ "github.com/drblury/netflight/sink/sinks"
)

type (
	Config              = configpkg.Config
	EventSetting        = configpkg.EventSetting
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies

	// Gateway contract
	Kind             = gateway.Kind
	Ticks            = gateway.Ticks
	Event            = gateway.Event
	Publisher        = gateway.Publisher
	Gateway          = gateway.Gateway
	Binding          = gateway.Binding
	Locator          = gateway.Locator
	LocatorOption    = gateway.Option
	Discoverer       = gateway.Discoverer
	Probe            = gateway.Probe
	Outcome          = gateway.Outcome
	Endpoint         = gateway.Endpoint
	InetAddr         = gateway.InetAddr
	ProviderConfig   = gateway.Config
	ProviderBuilder  = gateway.Builder
	ProviderRegistry = gateway.Registry

	// Instrumented connections
	Conn              = netio.Conn
	PacketConn        = netio.PacketConn
	Listener          = netio.Listener
	AsyncConn         = netio.AsyncConn
	CompletionHandler = netio.CompletionHandler
	CompletionFuncs   = netio.CompletionFuncs
	Future            = netio.Future
	Binder            = netio.Binder
	ConnOption        = netio.Option

	// Recorder backend
	Recorder          = recorder.Recorder
	RecorderOption    = recorder.Option
	Record            = recorder.Record
	Sink              = recorder.Sink
	SinkFunc          = recorder.SinkFunc
	Memory            = recorder.Memory
	LogSink           = recorder.LogSink
	MessageSink       = recorder.MessageSink
	MessageSinkConfig = recorder.MessageSinkConfig
	Metrics           = recorder.Metrics
	TracingSink       = recorder.TracingSink
	StatusHandler     = recorder.StatusHandler
	StatusOptions     = recorder.StatusOptions
	Status            = recorder.Status
	Counters          = recorder.Counters

	// Message sinks
	SinkBuilder      = sink.Builder
	SinkConfig       = sink.Config
	SinkRegistry     = sink.Registry
	SinkCapabilities = sink.Capabilities

	CloudEvent = ce.Event
	Metadata   = metadatapkg.Metadata

	LogFields                 = loggingpkg.LogFields
	ServiceLogger             = loggingpkg.ServiceLogger
	EntryLoggerAdapter[T any] = loggingpkg.EntryLoggerAdapter[T]
)

// Event kinds.
const (
	SocketRead      = gateway.SocketRead
	SocketWrite     = gateway.SocketWrite
	DatagramSend    = gateway.DatagramSend
	DatagramReceive = gateway.DatagramReceive

	UnixSocketHost = gateway.UnixSocketHost
)

var (
	NewService     = runtimepkg.NewService
	TryNewService  = runtimepkg.TryNewService
	ValidateConfig = configpkg.ValidateConfig
	LoadConfig     = configpkg.LoadFile
	ConfigFromEnv  = configpkg.FromEnv
	ParseSettings  = configpkg.ParseSettings
	FormatSettings = configpkg.FormatSettings

	// Gateway contract
	Kinds          = gateway.Kinds
	ParseKind      = gateway.ParseKind
	Stub           = gateway.Stub
	StubBinding    = gateway.StubBinding
	IsStub         = gateway.IsStub
	NewBinding     = gateway.NewBinding
	Begin          = gateway.Begin
	Completed      = gateway.Completed
	EndOfStream    = gateway.EndOfStream
	Failed         = gateway.Failed
	Describe       = gateway.Describe
	CommitFailures = gateway.CommitFailures

	// Locator and provider discovery
	NewLocator              = gateway.NewLocator
	WithDiscoverer          = gateway.WithDiscoverer
	WithRegistry            = gateway.WithRegistry
	WithBootCheck           = gateway.WithBootCheck
	DefaultLocator          = gateway.Default
	Lookup                  = gateway.Lookup
	Boot                    = gateway.Boot
	MarkBooted              = gateway.MarkBooted
	Booted                  = gateway.Booted
	SetLogger               = gateway.SetLogger
	DefaultProviderRegistry = gateway.DefaultRegistry
	NewProviderRegistry     = gateway.NewRegistry
	RegisterProvider        = gateway.Register

	// Instrumented connections
	Wrap              = netio.Wrap
	WrapPacketConn    = netio.WrapPacketConn
	WrapListener      = netio.WrapListener
	Dial              = netio.Dial
	DialContext       = netio.DialContext
	Listen            = netio.Listen
	ListenPacket      = netio.ListenPacket
	NewAsyncConn      = netio.NewAsyncConn
	WithBinder        = netio.WithBinder
	WithDialer        = netio.WithDialer
	WithListenConfig  = netio.WithListenConfig
	WithReverseLookup = netio.WithReverseLookup

	// Recorder backend
	NewRecorder           = recorder.New
	NewRecorderFromConfig = recorder.NewFromConfig
	WithName              = recorder.WithName
	WithClock             = recorder.WithClock
	WithLogger            = recorder.WithLogger
	WithSink              = recorder.WithSink
	WithRecent            = recorder.WithRecent
	WithSettings          = recorder.WithSettings
	NewMemory             = recorder.NewMemory
	NewLogSink            = recorder.NewLogSink
	NewMessageSink        = recorder.NewMessageSink
	NewMetrics            = recorder.NewMetrics
	NewTracingSink        = recorder.NewTracingSink
	NewStatusHandler      = recorder.NewStatusHandler
	Discard               = recorder.Discard

	// Message sinks
	DefaultSinkRegistry = sink.DefaultRegistry
	RegisterSink        = sink.Register
	BuildSink           = sink.Build
	GetSinkCapabilities = sink.GetCapabilities

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal
	Encode    = jsoncodec.Encode
	Decode    = jsoncodec.Decode

	ErrNoProvider        = errspkg.ErrNoProvider
	ErrAmbiguousProvider = errspkg.ErrAmbiguousProvider
	ErrUnknownProvider   = errspkg.ErrUnknownProvider
	ErrProviderRequired  = errspkg.ErrProviderRequired
	ErrDowngrade         = errspkg.ErrDowngrade
	ErrUnknownKind       = errspkg.ErrUnknownKind
	ErrInvalidSetting    = errspkg.ErrInvalidSetting
	ErrUnknownSink       = errspkg.ErrUnknownSink
	ErrPublisherRequired = errspkg.ErrPublisherRequired
	ErrTopicRequired     = errspkg.ErrTopicRequired
	ErrConfigRequired    = errspkg.ErrConfigRequired

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger

	NewMetadata = metadatapkg.New
	NewEventID  = idspkg.New
)

func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}
