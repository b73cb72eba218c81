package sink

// Capabilities describes the delivery properties of a sink.
type Capabilities struct {
	// Name is the registered sink name.
	Name string `json:"name"`

	// Durable indicates published events survive a restart of the consumer.
	Durable bool `json:"durable"`

	// SupportsOrdering indicates events from one kind are delivered in
	// commit order.
	SupportsOrdering bool `json:"supports_ordering"`

	// SupportsBatching indicates the sink accepts several messages per
	// Publish call efficiently.
	SupportsBatching bool `json:"supports_batching"`

	// SupportsHeaders indicates message metadata reaches the consumer.
	SupportsHeaders bool `json:"supports_headers"`

	// MaxMessageSize is the maximum message size in bytes (0 = unlimited or
	// unknown).
	MaxMessageSize int64 `json:"max_message_size,omitempty"`
}

// Predefined capability sets for the built-in sinks.
var (
	ChannelCapabilities = Capabilities{
		Name:             "channel",
		SupportsOrdering: true,
		SupportsHeaders:  true,
	}

	IOCapabilities = Capabilities{
		Name:             "io",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
		SupportsHeaders:  true,
	}

	SQLiteCapabilities = Capabilities{
		Name:             "sqlite",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
		SupportsHeaders:  true,
	}

	PostgresCapabilities = Capabilities{
		Name:             "postgres",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
		SupportsHeaders:  true,
	}

	KafkaCapabilities = Capabilities{
		Name:             "kafka",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
		SupportsHeaders:  true,
		MaxMessageSize:   1048576,
	}

	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		Durable:          true,
		SupportsOrdering: true,
		SupportsHeaders:  true,
	}

	NATSCapabilities = Capabilities{
		Name:            "nats",
		SupportsHeaders: true,
		MaxMessageSize:  1048576,
	}

	JetStreamCapabilities = Capabilities{
		Name:             "jetstream",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
		SupportsHeaders:  true,
		MaxMessageSize:   1048576,
	}

	HTTPCapabilities = Capabilities{
		Name:            "http",
		SupportsHeaders: true,
	}

	AWSCapabilities = Capabilities{
		Name:             "aws",
		Durable:          true,
		SupportsBatching: true,
		SupportsHeaders:  true,
		MaxMessageSize:   262144,
	}
)
