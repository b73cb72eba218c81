package gateway

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		addr net.Addr
		want Endpoint
	}{
		{
			name: "resolved inet address",
			addr: &InetAddr{HostString: "example/203.0.113.5", Port: 443},
			want: Endpoint{Host: "example", Address: "203.0.113.5", Port: 443},
		},
		{
			name: "unresolved inet address",
			addr: &InetAddr{HostString: "/203.0.113.5", Port: 80},
			want: Endpoint{Address: "203.0.113.5", Port: 80},
		},
		{
			name: "host string without slash",
			addr: &InetAddr{HostString: "198.51.100.7", Port: 53},
			want: Endpoint{Address: "198.51.100.7", Port: 53},
		},
		{
			name: "tcp",
			addr: &net.TCPAddr{IP: net.ParseIP("203.0.113.5"), Port: 443},
			want: Endpoint{Address: "203.0.113.5", Port: 443},
		},
		{
			name: "udp v6 with zone",
			addr: &net.UDPAddr{IP: net.ParseIP("fe80::1"), Port: 5353, Zone: "eth0"},
			want: Endpoint{Address: "fe80::1%eth0", Port: 5353},
		},
		{
			name: "ip",
			addr: &net.IPAddr{IP: net.ParseIP("192.0.2.1")},
			want: Endpoint{Address: "192.0.2.1"},
		},
		{
			name: "unix socket",
			addr: &net.UnixAddr{Name: "/tmp/sock", Net: "unix"},
			want: Endpoint{Host: "Unix domain socket", Address: "[/tmp/sock]", Port: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Describe(tt.addr)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type opaqueAddr struct{}

func (opaqueAddr) Network() string { return "opaque" }
func (opaqueAddr) String() string  { return "opaque" }

func TestDescribeRejectsUnknownShapes(t *testing.T) {
	var nilTCP *net.TCPAddr
	var nilInet *InetAddr

	for _, addr := range []net.Addr{nil, nilTCP, nilInet, opaqueAddr{}} {
		_, ok := Describe(addr)
		assert.False(t, ok, "%T", addr)
	}
}

func TestInetAddrString(t *testing.T) {
	addr := &InetAddr{HostString: "example/203.0.113.5", Port: 443}
	assert.Equal(t, "example/203.0.113.5:443", addr.String())
	assert.Equal(t, "inet", addr.Network())
}

func TestResolveInetAddrKeepsLiteral(t *testing.T) {
	resolver := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, &net.OpError{Op: "dial", Err: net.UnknownNetworkError("offline")}
		},
	}

	got, err := ResolveInetAddr(context.Background(), resolver, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 8080})
	require.NoError(t, err)

	ep, ok := Describe(got)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.10", ep.Address)
	assert.Equal(t, 8080, ep.Port)
}

func TestResolveInetAddrRejectsUnix(t *testing.T) {
	_, err := ResolveInetAddr(context.Background(), nil, &net.UnixAddr{Name: "/tmp/sock", Net: "unix"})
	assert.Error(t, err)
}
