package gateway

import (
	"fmt"
	"strings"

	nferrors "github.com/drblury/netflight/internal/errors"
)

// Kind identifies one instrumented network operation.
type Kind uint8

const (
	SocketRead Kind = iota
	SocketWrite
	DatagramSend
	DatagramReceive

	kindCount
)

var kindNames = [kindCount]string{
	SocketRead:      "socket-read",
	SocketWrite:     "socket-write",
	DatagramSend:    "datagram-send",
	DatagramReceive: "datagram-receive",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{SocketRead, SocketWrite, DatagramSend, DatagramReceive}
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k < kindCount }

// IsRead reports whether the kind can observe end of stream.
func (k Kind) IsRead() bool { return k == SocketRead || k == DatagramReceive }

// ParseKind maps a kind name back to its Kind. Matching ignores case and
// accepts underscores in place of dashes.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for k, n := range kindNames {
		if n == normalized {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", nferrors.ErrUnknownKind, name)
}
