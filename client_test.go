package dockhttp_test

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asdine/dockhttp"
)

// fakeDaemon dials a net.Pipe per connection and lets the test script one
// canned request/response exchange, standing in for the real Docker daemon
// without requiring an actual socket.
func fakeDaemon(t *testing.T, handle func(br *bufio.Reader, conn net.Conn)) dockhttp.Option {
	t.Helper()
	dialer := func(ctx context.Context) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			handle(bufio.NewReader(server), server)
		}()
		return client, nil
	}
	return dockhttp.WithDialer(dialer, "localhost")
}

func TestClientImageList(t *testing.T) {
	respond := fakeDaemon(t, func(br *bufio.Reader, conn net.Conn) {
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" {
				break
			}
		}
		_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n" +
			"Content-Type: application/json\r\n" +
			"Content-Length: 33\r\n" +
			"\r\n" +
			`[{"Id":"abc","RepoTags":["x:1"]}]`))
	})

	c, err := dockhttp.NewClient("", respond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	images, err := c.ImageList(ctx, nil, dockhttp.ImageListOptions{})
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.Equal(t, "abc", images[0].ID)
	require.Equal(t, []string{"x:1"}, images[0].RepoTags)
}

func TestClientContainerStartMapsStatusToResult(t *testing.T) {
	respond := fakeDaemon(t, func(br *bufio.Reader, conn net.Conn) {
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" {
				break
			}
		}
		_, _ = conn.Write([]byte("HTTP/1.1 304 Not Modified\r\nContent-Length: 0\r\n\r\n"))
	})

	c, err := dockhttp.NewClient("", respond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := c.ContainerStart(ctx, nil, "deadbeef")
	require.NoError(t, err)
	require.Equal(t, dockhttp.AlreadyStarted, result)
}

func TestClientUnexpectedStatusSurfacesDaemonMessage(t *testing.T) {
	respond := fakeDaemon(t, func(br *bufio.Reader, conn net.Conn) {
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" {
				break
			}
		}
		body := `{"message":"no such container"}`
		_, _ = conn.Write([]byte("HTTP/1.1 404 Not Found\r\n" +
			"Content-Type: application/json\r\n" +
			"Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body))
	})

	c, err := dockhttp.NewClient("", respond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.ContainerInspect(ctx, nil, "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such container")
}

