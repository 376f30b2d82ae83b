// Package dockhttp is a dependency-light client for the Docker Engine HTTP
// API (v1.46), speaking HTTP/1.1 directly to the daemon over a Unix domain
// socket.
package dockhttp

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/asdine/dockhttp/internal/transport"
	"github.com/asdine/dockhttp/internal/wire"
)

// Re-exported wire types: this package is a thin facade over internal/wire's
// request/response codec.
type (
	Request    = wire.Request
	Response   = wire.Response
	Header     = wire.Header
	Query      = wire.Query
	QueryParam = wire.QueryParam
	Method     = wire.Method
)

const (
	MethodGet    = wire.MethodGet
	MethodPost   = wire.MethodPost
	MethodPut    = wire.MethodPut
	MethodDelete = wire.MethodDelete
	MethodHead   = wire.MethodHead
)

// UnexpectedStatusError is returned by AssertStatus when a response's
// status code is not in the caller-declared acceptable set.
type UnexpectedStatusError = wire.UnexpectedStatusError

// AssertStatus validates resp against accept, a predicate over status codes.
func AssertStatus(resp *Response, accept func(int) bool) error {
	return wire.AssertStatus(resp, accept)
}

// StatusIn builds an AssertStatus predicate matching any of codes.
func StatusIn(codes ...int) func(int) bool { return wire.StatusIn(codes...) }

// Client is a factory for Connections against one Docker daemon.
type Client struct {
	t *transport.Client
}

// Option configures a Client.
type Option func(*transport.Client)

// WithLogger attaches a logger for connection-lifecycle diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *transport.Client) { transport.WithLogger(l)(c) }
}

// WithDialer overrides the dial thunk, the extension point for transports
// beyond "unix".
func WithDialer(d transport.Dialer, host string) Option {
	return func(c *transport.Client) { transport.WithDialer(d, host)(c) }
}

// NewClient builds a Client from a URI such as "unix:///var/run/docker.sock".
// An empty string uses transport.DefaultUnixSocket.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	tOpts := make([]transport.Option, len(opts))
	for i, o := range opts {
		tOpts[i] = transport.Option(o)
	}
	t, err := transport.NewClient(rawURL, tOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{t: t}, nil
}

// Connection is an exclusively-owned socket plus its buffered read/write
// wrappers. At most one in-flight HTTP request may use a Connection at a
// time; the caller serializes that itself.
type Connection struct {
	inner *transport.Connection
}

// Dial opens a new Connection.
func (c *Client) Dial(ctx context.Context) (*Connection, error) {
	inner, err := transport.Dial(ctx, c.t)
	if err != nil {
		return nil, err
	}
	return &Connection{inner: inner}, nil
}

// Clone dials a fresh sibling connection from the same client template —
// required before an attach/exec upgrade, since a hijacked connection can
// no longer serve HTTP requests.
func (conn *Connection) Clone(ctx context.Context) (*Connection, error) {
	inner, err := conn.inner.Clone(ctx)
	if err != nil {
		return nil, err
	}
	return &Connection{inner: inner}, nil
}

// Close closes the connection. Idempotent.
func (conn *Connection) Close() error { return conn.inner.Close() }

// Credentials identifies the process on the other end of a Unix domain
// socket connection.
type Credentials = transport.Credentials

// PeerCredentials reads the daemon's SO_PEERCRED identity off conn, letting
// a caller verify which local user/process it is actually talking to
// before trusting a socket path it did not create itself. Linux only; on
// other platforms this returns transport.ErrPeerCredentialsUnsupported.
func (conn *Connection) PeerCredentials() (Credentials, error) {
	return transport.PeerCredentials(conn.inner.Raw())
}

// Do writes req on conn and reads the response. The caller retains
// ownership of conn; Do never closes it.
func (c *Client) Do(ctx context.Context, conn *Connection, req *Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := wire.WriteRequest(conn.inner.Writer, conn.inner.Host, req); err != nil {
		return nil, errors.Wrap(err, "dockhttp: writing request")
	}
	if err := conn.inner.Writer.Flush(); err != nil {
		return nil, errors.Wrap(err, "dockhttp: flushing request")
	}

	resp, err := wire.ReadResponse(conn.inner.Reader, req.ExpectJSONSeq)
	if err != nil {
		return nil, errors.Wrap(err, "dockhttp: reading response")
	}
	return resp, nil
}

// SimpleRequest dials a short-lived connection if conn is nil, executes req,
// and closes that connection before returning; if conn is non-nil, it is
// used and left open for the caller.
func (c *Client) SimpleRequest(ctx context.Context, conn *Connection, req *Request) (*Response, error) {
	if conn != nil {
		return c.Do(ctx, conn, req)
	}

	owned, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer owned.Close()

	return c.Do(ctx, owned, req)
}
