package dockhttp

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/asdine/dockhttp/internal/frame"
	"github.com/asdine/dockhttp/internal/pipe"
	"github.com/asdine/dockhttp/internal/wire"
)

// multiplexedStreamContentType is the content-type a successful attach/exec
// upgrade response must carry.
const multiplexedStreamContentType = "application/vnd.docker.multiplexed-stream"

// StderrMode selects how a session's stderr is exposed: left alone, given
// its own independent pipe, or merged into stdout's pipe.
type StderrMode int

const (
	// StderrNone means stderr was not requested; Stderr() returns nil.
	StderrNone StderrMode = iota
	// StderrSeparate gives stderr its own pipe, independent of stdout.
	StderrSeparate
	// StderrMergedWithStdout routes stderr-id frames into the stdout pipe.
	StderrMergedWithStdout
)

// UpgradeOptions selects which streams an attach/exec upgrade should carry.
type UpgradeOptions struct {
	Stdin  bool
	Stdout bool
	Stderr StderrMode
}

// UpgradeError is returned when an attach/exec request does not result in a
// successful protocol upgrade.
type UpgradeError struct {
	Response *Response
}

func (e *UpgradeError) Error() string {
	if e.Response == nil {
		return "dockhttp: upgrade failed"
	}
	return "dockhttp: upgrade failed: status " + strconv.Itoa(e.Response.StatusCode)
}

// StreamSession is the result of a successful attach/exec upgrade.
// Construction acquires conn exclusively; Close cancels the background
// demultiplexer and releases conn, its socket, and both pipes.
type StreamSession struct {
	conn   *Connection
	Stdin  io.Writer     // nil unless requested
	Stdout io.ReadCloser // nil unless requested; Close abandons the stream without closing the whole session
	Stderr io.ReadCloser // nil unless StderrMode != StderrNone

	demuxDone chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Upgrade sends req with the headers Docker's attach/exec handshake
// requires, and on a successful 101 response constructs a StreamSession
// bound to conn. The caller must have already cloned a fresh Connection
// for this purpose — a hijacked connection can no longer serve further
// HTTP requests.
func Upgrade(ctx context.Context, c *Client, conn *Connection, req *Request, opts UpgradeOptions) (*StreamSession, error) {
	if req.Header == nil {
		req.Header = Header{}
	}
	req.Header.Set("connection", "Upgrade")
	req.Header.Set("upgrade", "tcp")
	req.Header.Set("content-type", "application/vnd.docker.raw-stream")
	req.Header.Set("accept", multiplexedStreamContentType)

	resp, err := c.Do(ctx, conn, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wire.StatusSwitchingProtocols || resp.Header.Get("content-type") != multiplexedStreamContentType {
		return nil, &UpgradeError{Response: resp}
	}

	return newStreamSession(conn, opts), nil
}

func newStreamSession(conn *Connection, opts UpgradeOptions) *StreamSession {
	s := &StreamSession{conn: conn, demuxDone: make(chan struct{})}

	if opts.Stdin {
		s.Stdin = conn.inner.Raw()
	}

	var stdoutSink, stderrSink frame.Sink
	if opts.Stdout {
		p := pipe.New()
		s.Stdout = p
		stdoutSink = p
	}
	switch opts.Stderr {
	case StderrSeparate:
		p := pipe.New()
		s.Stderr = p
		stderrSink = p
	case StderrMergedWithStdout:
		s.Stderr = s.Stdout
		stderrSink = stdoutSink
	}

	go func() {
		defer close(s.demuxDone)
		_ = frame.Demux(conn.inner.Reader, stdoutSink, stderrSink)
	}()

	return s
}

// Close cancels the demultiplexer, closes the connection, and waits for the
// demultiplexer to finish. It also closes Stdout and Stderr from the
// consumer side, which is what actually guarantees the demultiplexer
// terminates: conn.Close only unblocks a goroutine parked on a socket read,
// but the goroutine can just as easily be parked handing a frame to a full
// Stdout/Stderr pipe, and only the consumer-side close of Pipe reaches that
// wait. Idempotent: a second Close neither blocks nor errors.
func (s *StreamSession) Close() error {
	s.closeOnce.Do(func() {
		err := s.conn.Close()
		if s.Stdout != nil {
			_ = s.Stdout.Close()
		}
		if s.Stderr != nil && s.Stderr != s.Stdout {
			_ = s.Stderr.Close()
		}
		<-s.demuxDone
		if err != nil {
			s.closeErr = errors.Wrap(err, "dockhttp: closing session connection")
		}
	})
	return s.closeErr
}
