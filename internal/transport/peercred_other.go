//go:build !linux

package transport

import (
	"net"

	"github.com/pkg/errors"
)

// Credentials identifies the process on the other end of a Unix domain
// socket. See peercred_linux.go; this platform cannot read it.
type Credentials struct {
	UID uint32
	GID uint32
	PID int32
}

// ErrPeerCredentialsUnsupported is returned by PeerCredentials on any
// platform other than Linux.
var ErrPeerCredentialsUnsupported = errors.New("transport: peer credentials unsupported on this platform")

// PeerCredentials is unavailable outside Linux: there is no portable
// SO_PEERCRED equivalent wired here.
func PeerCredentials(conn net.Conn) (Credentials, error) {
	return Credentials{}, ErrPeerCredentialsUnsupported
}
