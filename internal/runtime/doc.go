/*
Package runtime hosts a recorder for a process.

A Service validates the configuration, builds the recorder with its sinks,
binds it to a locator and serves the optional status and metrics endpoints.
Start blocks until its context is cancelled, then stops the HTTP servers and
closes the recorder and its sinks.

# Usage Example

	cfg := &netflight.Config{
		Events:         "socket-write#enabled=true,socket-write#threshold=5ms",
		SinkSystem:     "kafka",
		KafkaBrokers:   []string{"localhost:9092"},
		MetricsEnabled: true,
		MetricsPort:    9090,
	}

	svc, err := netflight.TryNewService(cfg, logger, ctx, netflight.ServiceDependencies{})
	if err != nil {
		return err
	}
	return svc.Start(ctx)
*/
package runtime
