// Package pipe implements a single-producer/single-consumer bounded byte
// queue exposed to the consumer as an io.Reader.
package pipe

import (
	"io"
	"sync"
)

// capacity bounds the number of buffered chunks in flight; this is the
// pipe's only flow-control mechanism, which is enough because the producer
// (the frame demultiplexer) is itself paced by socket reads.
const capacity = 256

// Pipe is a readable stream fed by a single producer. The zero value is not
// usable; construct with New.
type Pipe struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue [][]byte

	writerClosed bool // producer closed via CloseWithError/CloseWrite
	writerErr    error

	readerClosed bool // consumer closed via Close
}

// New returns a ready-to-use Pipe.
func New() *Pipe {
	p := &Pipe{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Write appends buf for the consumer to read. It blocks while the queue is
// at capacity. Write returns io.ErrClosedPipe once either side has closed
// the pipe: the producer via CloseWrite/CloseWithError, or the consumer via
// Close — including unblocking a Write already waiting for queue room, so a
// consumer that walks away from Read can never strand the producer.
func (p *Pipe) Write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) >= capacity && !p.writerClosed && !p.readerClosed {
		p.cond.Wait()
	}
	if p.writerClosed || p.readerClosed {
		return 0, io.ErrClosedPipe
	}

	cp := make([]byte, len(buf))
	copy(cp, buf)
	p.queue = append(p.queue, cp)
	p.cond.Broadcast()
	return len(buf), nil
}

// CloseWithError marks end-of-stream for the consumer from the producer
// side, recording err (nil for a clean EOF) to be returned once the queue
// drains. Safe to call more than once; only the first call has effect.
func (p *Pipe) CloseWithError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writerClosed {
		return
	}
	p.writerClosed = true
	p.writerErr = err
	p.cond.Broadcast()
}

// CloseWrite is equivalent to CloseWithError(nil); it is the producer's
// half of the pipe's lifecycle.
func (p *Pipe) CloseWrite() error {
	p.CloseWithError(nil)
	return nil
}

// Close closes the consumer side of the pipe. Any buffered data is
// discarded, and any producer Write — in progress or future — fails
// immediately with io.ErrClosedPipe instead of blocking on a queue no one
// will ever drain again. Safe to call more than once.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readerClosed {
		return nil
	}
	p.readerClosed = true
	p.queue = nil
	p.cond.Broadcast()
	return nil
}

// Read implements io.Reader, draining one buffered chunk at a time and
// honoring partial reads exactly like any other io.Reader.
func (p *Pipe) Read(out []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readerClosed {
		return 0, io.ErrClosedPipe
	}

	for len(p.queue) == 0 && !p.writerClosed {
		p.cond.Wait()
	}

	if len(p.queue) == 0 {
		if p.writerErr != nil {
			return 0, p.writerErr
		}
		return 0, io.EOF
	}

	head := p.queue[0]
	n := copy(out, head)
	if n == len(head) {
		p.queue = p.queue[1:]
	} else {
		p.queue[0] = head[n:]
	}
	p.cond.Broadcast()
	return n, nil
}
