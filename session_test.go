package dockhttp_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asdine/dockhttp"
)

// frameBytes builds one frame of Docker's multiplexed raw-stream format.
func frameBytes(streamID byte, payload string) []byte {
	header := make([]byte, 8)
	header[0] = streamID
	n := len(payload)
	header[4] = byte(n >> 24)
	header[5] = byte(n >> 16)
	header[6] = byte(n >> 8)
	header[7] = byte(n)
	return append(header, payload...)
}

// drainRequestLine reads a request line + header block off br, discarding
// it; the fake daemon below only needs to know a request arrived. Runs on a
// background goroutine, so it reports failure via ok rather than a *testing.T
// call (those are unsafe once the test goroutine may have already returned).
func drainRequestLine(br *bufio.Reader) (ok bool) {
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return false
		}
		if line == "\r\n" {
			return true
		}
	}
}

// TestContainerAttachDemultiplexesFrames exercises the full upgrade +
// demultiplex path end to end: a fake daemon accepts the attach request,
// answers 101 with the multiplexed-stream content-type, then writes
// interleaved stdout/stderr frames before closing the pipe to signal
// end-of-stream.
func TestContainerAttachDemultiplexesFrames(t *testing.T) {
	// ContainerAttach clones the connection it is given before upgrading, so
	// the dialer fires twice: once for the primary connection the test holds
	// (never used for a request), once for the clone that actually carries
	// the attach handshake. Only the second dial needs to behave like a
	// daemon; the first just idles until closed.
	var dialCount int32
	dialer := func(ctx context.Context) (net.Conn, error) {
		client, server := net.Pipe()
		if atomic.AddInt32(&dialCount, 1) == 1 {
			go func() {
				defer server.Close()
				_, _ = io.Copy(io.Discard, server)
			}()
			return client, nil
		}
		go func() {
			defer server.Close()
			if !drainRequestLine(bufio.NewReader(server)) {
				return
			}
			_, _ = server.Write([]byte("HTTP/1.1 101 UPGRADED\r\n" +
				"Content-Type: application/vnd.docker.multiplexed-stream\r\n" +
				"\r\n"))
			_, _ = server.Write(frameBytes(1, "hello"))
			_, _ = server.Write(frameBytes(2, "ERROR"))
			_, _ = server.Write(frameBytes(1, "!\n"))
		}()
		return client, nil
	}

	c, err := dockhttp.NewClient("", dockhttp.WithDialer(dialer, "localhost"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := c.Dial(ctx)
	require.NoError(t, err)
	defer conn.Close()

	session, err := c.ContainerAttach(ctx, conn, "deadbeef", dockhttp.ContainerAttachOptions{
		Stdout: true,
		Stderr: dockhttp.StderrSeparate,
		Stream: true,
	})
	require.NoError(t, err)
	defer session.Close()

	stdout, err := io.ReadAll(session.Stdout)
	require.NoError(t, err)
	require.Equal(t, "hello!\n", string(stdout))

	stderr, err := io.ReadAll(session.Stderr)
	require.NoError(t, err)
	require.Equal(t, "ERROR", string(stderr))

	require.NoError(t, session.Close())
}

// TestUpgradeRejectsWrongContentType ensures a 101 response lacking the
// multiplexed-stream content-type is treated as an upgrade failure rather
// than a successful session.
func TestUpgradeRejectsWrongContentType(t *testing.T) {
	var dialCount int32
	dialer := func(ctx context.Context) (net.Conn, error) {
		client, server := net.Pipe()
		if atomic.AddInt32(&dialCount, 1) == 1 {
			go func() {
				defer server.Close()
				_, _ = io.Copy(io.Discard, server)
			}()
			return client, nil
		}
		go func() {
			defer server.Close()
			if !drainRequestLine(bufio.NewReader(server)) {
				return
			}
			_, _ = server.Write([]byte("HTTP/1.1 101 UPGRADED\r\n\r\n"))
		}()
		return client, nil
	}

	c, err := dockhttp.NewClient("", dockhttp.WithDialer(dialer, "localhost"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := c.Dial(ctx)
	require.NoError(t, err)
	defer conn.Close()

	_, err = c.ContainerAttach(ctx, conn, "deadbeef", dockhttp.ContainerAttachOptions{Stdout: true})
	require.Error(t, err)
	var upgradeErr *dockhttp.UpgradeError
	require.ErrorAs(t, err, &upgradeErr)
}
