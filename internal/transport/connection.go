package transport

import (
	"bufio"
	"context"
	"net"

	"github.com/pkg/errors"
)

// Connection owns a dialed socket and its buffered read/write wrappers.
// The buffered reader's default 4096-byte window comfortably satisfies the
// 5-byte look-ahead the chunked codec's quirk absorber needs.
type Connection struct {
	client *Client
	conn   net.Conn
	Reader *bufio.Reader
	Writer *bufio.Writer
	Host   string
}

// Dial opens a new Connection from client.
func Dial(ctx context.Context, client *Client) (*Connection, error) {
	conn, err := client.Dial(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "transport: dialing connection")
	}
	if l := client.Logger(); l != nil {
		l.WithField("host", client.Host()).Debug("dialed connection")
	}
	return &Connection{
		client: client,
		conn:   conn,
		Reader: bufio.NewReader(conn),
		Writer: bufio.NewWriter(conn),
		Host:   client.Host(),
	}, nil
}

// Clone dials a fresh sibling connection from the same client template.
// Required because a hijacked connection can no longer serve HTTP requests.
func (c *Connection) Clone(ctx context.Context) (*Connection, error) {
	if l := c.client.Logger(); l != nil {
		l.Debug("cloning connection")
	}
	return Dial(ctx, c.client)
}

// Raw returns the underlying net.Conn, for use after a protocol upgrade
// hands framing off to the caller.
func (c *Connection) Raw() net.Conn { return c.conn }

// Close closes the connection's socket. Safe to call more than once; each
// close attempt is independent so a failure on one leg never masks an
// earlier error on another.
func (c *Connection) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if l := c.client.Logger(); l != nil && err != nil {
		l.WithError(err).Debug("error closing connection")
	}
	return err
}
