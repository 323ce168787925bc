package engine

import (
	"context"
	"io"

	"github.com/morgatz/gitseer/internal/gitseerd/service/engine/entity"
)

// StreamReader is the receiving end of a chat event stream. Recv returns
// io.EOF after the stream is closed and drained; the last real event is
// always terminal (done or error).
type StreamReader struct {
	ch <-chan *entity.ChatEvent
}

// Recv returns the next event, blocking until one is available, the stream
// closes (io.EOF), or ctx is done.
func (r *StreamReader) Recv(ctx context.Context) (*entity.ChatEvent, error) {
	select {
	case ev, ok := <-r.ch:
		if !ok {
			return nil, io.EOF
		}
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StreamWriter is the sending end of a chat event stream.
type StreamWriter struct {
	ch chan<- *entity.ChatEvent
}

// Send delivers one event, blocking until the reader takes it or ctx is
// done. A ctx error means the consumer is gone and the producer should
// stop.
func (w *StreamWriter) Send(ctx context.Context, ev *entity.ChatEvent) error {
	select {
	case w.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the stream. No Send may follow.
func (w *StreamWriter) Close() {
	close(w.ch)
}

// Pipe creates a connected reader/writer pair with the given buffer.
func Pipe(capacity int) (*StreamReader, *StreamWriter) {
	ch := make(chan *entity.ChatEvent, capacity)
	return &StreamReader{ch: ch}, &StreamWriter{ch: ch}
}
