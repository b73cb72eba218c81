package gateway

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// UnixSocketHost is the host reported for Unix domain socket endpoints.
const UnixSocketHost = "Unix domain socket"

// Endpoint is the uniform form every remote address is reduced to.
type Endpoint struct {
	Host    string
	Address string
	Port    int
}

// InetAddr is an internet address that carries an already resolved host
// string in "hostname/literal" form. The hostname part may be empty.
type InetAddr struct {
	HostString string
	Port       int
}

func (a *InetAddr) Network() string { return "inet" }

func (a *InetAddr) String() string {
	return a.HostString + ":" + strconv.Itoa(a.Port)
}

// Describe reduces addr to an Endpoint. It reports false for nil addresses and
// for address types it does not know how to format; callers skip the commit
// in that case. Describe never performs name resolution.
func Describe(addr net.Addr) (Endpoint, bool) {
	switch a := addr.(type) {
	case *InetAddr:
		if a == nil {
			return Endpoint{}, false
		}
		host, literal := splitHostString(a.HostString)
		return Endpoint{Host: host, Address: literal, Port: a.Port}, true
	case *net.TCPAddr:
		if a == nil {
			return Endpoint{}, false
		}
		return Endpoint{Address: ipLiteral(a.IP, a.Zone), Port: a.Port}, true
	case *net.UDPAddr:
		if a == nil {
			return Endpoint{}, false
		}
		return Endpoint{Address: ipLiteral(a.IP, a.Zone), Port: a.Port}, true
	case *net.IPAddr:
		if a == nil {
			return Endpoint{}, false
		}
		return Endpoint{Address: ipLiteral(a.IP, a.Zone)}, true
	case *net.UnixAddr:
		if a == nil {
			return Endpoint{}, false
		}
		return Endpoint{Host: UnixSocketHost, Address: "[" + a.Name + "]"}, true
	default:
		return Endpoint{}, false
	}
}

// splitHostString splits "hostname/literal" at the last slash. A string
// without a slash is taken as a bare literal.
func splitHostString(s string) (host, literal string) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

func ipLiteral(ip net.IP, zone string) string {
	if len(ip) == 0 {
		return ""
	}
	if zone != "" {
		return ip.String() + "%" + zone
	}
	return ip.String()
}

// ResolveInetAddr converts an IP based address into an InetAddr whose host
// part is the reverse resolved name of the IP. Lookup failures leave the host
// part empty. A nil resolver uses net.DefaultResolver.
func ResolveInetAddr(ctx context.Context, resolver *net.Resolver, addr net.Addr) (*InetAddr, error) {
	var (
		ip   net.IP
		zone string
		port int
	)
	if _, ok := Describe(addr); !ok {
		return nil, fmt.Errorf("resolve %T: address is not describable", addr)
	}
	switch a := addr.(type) {
	case *InetAddr:
		return a, nil
	case *net.TCPAddr:
		ip, zone, port = a.IP, a.Zone, a.Port
	case *net.UDPAddr:
		ip, zone, port = a.IP, a.Zone, a.Port
	case *net.IPAddr:
		ip, zone = a.IP, a.Zone
	default:
		return nil, fmt.Errorf("resolve %T: unsupported address type", addr)
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	literal := ipLiteral(ip, zone)
	host := ""
	if names, err := resolver.LookupAddr(ctx, ip.String()); err == nil && len(names) > 0 {
		host = strings.TrimSuffix(names[0], ".")
	}
	return &InetAddr{HostString: host + "/" + literal, Port: port}, nil
}
