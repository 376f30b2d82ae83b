// Package frame decodes Docker's multiplexed raw-stream frame format that
// appears on a hijacked connection after a successful attach/exec upgrade.
package frame

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Stream identifies which sink a frame's payload belongs to, mirroring the
// byte layout jandre/dockerpc's attach client decodes off the same API.
type Stream byte

const (
	StreamStdin  Stream = 0
	StreamStdout Stream = 1
	StreamStderr Stream = 2
)

// Sink receives demultiplexed payload bytes for one stream.
type Sink interface {
	Write(p []byte) (int, error)
	CloseWithError(err error)
}

// Demux runs the frame-decoding loop against r, routing stdout-id payloads
// to out and stderr-id payloads to errw (either may be nil to discard that
// stream, and they may alias the same Sink to merge streams). Demux returns
// when r reaches EOF, when cancellation closes r out from under it
// (surfaced as the read error), or on a protocol error. The terminal error
// (nil on clean EOF) is delivered to both sinks via CloseWithError so
// consumers observe end-of-stream.
func Demux(r io.Reader, out, errw Sink) error {
	runErr := demuxLoop(r, out, errw)
	if runErr == io.EOF {
		runErr = nil
	}
	if out != nil {
		out.CloseWithError(runErr)
	}
	if errw != nil && errw != out {
		errw.CloseWithError(runErr)
	}
	return runErr
}

func demuxLoop(r io.Reader, out, errw Sink) error {
	var header [8]byte
	for {
		// Peek one byte so a clean EOF between frames terminates without
		// error.
		n, err := io.ReadFull(r, header[:1])
		if n == 0 && err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return errors.Wrap(err, "frame: reading stream id")
		}

		if _, err := io.ReadFull(r, header[1:8]); err != nil {
			return errors.Wrap(err, "frame: reading frame header")
		}

		streamID := Stream(header[0])
		length := binary.BigEndian.Uint32(header[4:8])

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return errors.Wrap(err, "frame: reading frame payload")
		}

		sink := sinkFor(streamID, out, errw)
		if sink == nil {
			continue // unknown or unrequested stream id: discard silently
		}
		if _, err := sink.Write(payload); err != nil {
			return errors.Wrap(err, "frame: routing payload to sink")
		}
	}
}

func sinkFor(id Stream, out, errw Sink) Sink {
	switch id {
	case StreamStdout:
		return out
	case StreamStderr:
		return errw
	default:
		// StreamStdin (mirrored stdin) or any other id: not emitted by the
		// daemon in practice; discarding is the safest policy.
		return nil
	}
}
