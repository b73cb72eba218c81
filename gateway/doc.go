// Package gateway connects instrumented network code to an optional event
// backend.
//
// Call sites obtain a Binding from the process Locator and the Publisher for
// the operation kind they perform. A Probe brackets the operation: Begin
// checks Enabled and reads the clock, Finish applies the duration threshold,
// reduces the remote address to an Endpoint and commits the Event.
//
//	pub := gateway.Lookup().SocketWrite()
//	probe := gateway.Begin(pub)
//	n, err := conn.Write(p)
//	if err != nil {
//		probe.Finish(conn.RemoteAddr(), gateway.Failed(err))
//	} else {
//		probe.Finish(conn.RemoteAddr(), gateway.Completed(n))
//	}
//
// When no backend is registered, or the process has not called MarkBooted
// yet, every publisher is Stub and the probe never reads the clock.
//
// Backends register a Builder with Register, usually from an init function,
// and are discovered once after boot.
package gateway
