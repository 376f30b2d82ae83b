// Package transport owns socket dial/close and the buffered connection
// wrapper the wire codec reads and writes through.
package transport

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"github.com/docker/go-connections/sockets"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultUnixSocket is the conventional Docker daemon socket path.
const DefaultUnixSocket = "/var/run/docker.sock"

// ErrUnsupportedScheme is returned by NewClient for any scheme other than
// "unix" — the sole concrete transport this client speaks today, with the
// factory left scheme-dispatched as an extension point.
var ErrUnsupportedScheme = errors.New("transport: unsupported client URI scheme")

// Dialer opens one fresh connection; Client wraps a Dialer and the host
// label to present to the daemon as the HTTP "host" header.
type Dialer func(ctx context.Context) (net.Conn, error)

// Client is an immutable factory for connections, carrying the scheme's
// dial thunk and logical host string.
type Client struct {
	dial   Dialer
	host   string
	logger logrus.FieldLogger // nil means "log nothing"
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger attaches a logger for low-volume diagnostic lines (dial,
// clone, and connection close failures); the demultiplexer's termination
// cause is not logged. A Client built without
// WithLogger logs nothing — this is ambient diagnostics, not a behavior knob.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDialer overrides the dial thunk entirely, the extension point reserved
// for TCP/TLS transports beyond the unix scheme this package dials by
// default.
func WithDialer(d Dialer, host string) Option {
	return func(c *Client) {
		c.dial = d
		c.host = host
	}
}

// NewClient builds a Client from a URI of the form "unix:///path/to.sock".
// An empty path defaults to DefaultUnixSocket. Schemes other than "unix"
// (or no scheme) fail with ErrUnsupportedScheme; options such as WithDialer
// are applied only after that check, so they do not lift it.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	c := &Client{}

	if rawURL == "" {
		rawURL = "unix://" + DefaultUnixSocket
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "transport: parsing client URL")
	}

	switch u.Scheme {
	case "unix", "":
		path := u.Path
		if path == "" {
			path = DefaultUnixSocket
		}
		dial, err := unixDialer(path)
		if err != nil {
			return nil, errors.Wrap(err, "transport: configuring unix dialer")
		}
		c.dial = dial
		c.host = "localhost"
	default:
		return nil, errors.Wrapf(ErrUnsupportedScheme, "scheme %q", u.Scheme)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// unixDialer borrows docker/go-connections/sockets' unix-socket transport
// wiring: sockets.ConfigureTransport equips an *http.Transport's
// DialContext to dial the given unix socket path, tolerating the
// "unix://" URL form; rather than duplicate that dial logic, this client
// lifts the resulting DialContext straight out of the transport and uses
// it as its own Dialer, matching the shape docker/compose's go.mod pulls
// this dependency in for.
func unixDialer(path string) (Dialer, error) {
	tr := &http.Transport{}
	if err := sockets.ConfigureTransport(tr, "unix", path); err != nil {
		return nil, err
	}
	return func(ctx context.Context) (net.Conn, error) {
		return tr.DialContext(ctx, "unix", path)
	}, nil
}

// Host returns the logical host label this client presents to the daemon.
func (c *Client) Host() string { return c.host }

// Logger returns the client's diagnostic logger, or nil if none was set.
func (c *Client) Logger() logrus.FieldLogger { return c.logger }

// Dial opens a fresh socket using the client's configured dialer.
func (c *Client) Dial(ctx context.Context) (net.Conn, error) {
	return c.dial(ctx)
}
