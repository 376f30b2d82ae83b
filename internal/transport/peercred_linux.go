//go:build linux

package transport

import (
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Credentials identifies the process on the other end of a Unix domain
// socket, as reported by the kernel via SO_PEERCRED.
type Credentials struct {
	UID uint32
	GID uint32
	PID int32
}

// PeerCredentials reads SO_PEERCRED off conn's underlying file descriptor,
// letting a caller verify which local user/process owns the daemon end of
// a dialed Unix socket before trusting it. Linux only; on other platforms
// PeerCredentials (peercred_other.go) returns ErrPeerCredentialsUnsupported.
func PeerCredentials(conn net.Conn) (Credentials, error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return Credentials{}, errors.New("transport: not a unix socket connection")
	}

	raw, err := uc.SyscallConn()
	if err != nil {
		return Credentials{}, errors.Wrap(err, "transport: obtaining raw socket")
	}

	var cred *unix.Ucred
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		cred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return Credentials{}, errors.Wrap(err, "transport: reading SO_PEERCRED")
	}
	if sockErr != nil {
		return Credentials{}, errors.Wrap(sockErr, "transport: reading SO_PEERCRED")
	}

	return Credentials{UID: cred.Uid, GID: cred.Gid, PID: cred.Pid}, nil
}
