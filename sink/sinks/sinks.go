// Package sinks registers every built-in sink with the default sink registry.
//
//	import _ "github.com/drblury/netflight/sink/sinks"
package sinks

import (
	// Register every built-in sink.
	_ "github.com/drblury/netflight/sink/aws"
	_ "github.com/drblury/netflight/sink/channel"
	_ "github.com/drblury/netflight/sink/http"
	_ "github.com/drblury/netflight/sink/io"
	_ "github.com/drblury/netflight/sink/jetstream"
	_ "github.com/drblury/netflight/sink/kafka"
	_ "github.com/drblury/netflight/sink/nats"
	_ "github.com/drblury/netflight/sink/postgres"
	_ "github.com/drblury/netflight/sink/rabbitmq"
	_ "github.com/drblury/netflight/sink/sqlite"
)

// Names lists the sinks registered by this package.
var Names = []string{"aws", "channel", "http", "io", "jetstream", "kafka", "nats", "postgres", "rabbitmq", "sqlite"}
