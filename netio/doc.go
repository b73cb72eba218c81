// Package netio instruments net.Conn, net.PacketConn and net.Listener with
// the gateway publishers. Every wrapped Read, Write, ReadFrom and WriteTo
// asks the current binding whether its kind is enabled; when it is not the
// call is delegated directly and nothing else happens. Enabled operations
// are timed from start to completion and committed once they pass the
// publisher's threshold. Results and errors reach the caller unchanged.
//
//	conn, err := netio.Dial("tcp", "example.com:443")
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
// AsyncConn offers completion-based reads and writes for callers that want
// a handler invoked when the operation finishes instead of blocking.
package netio
