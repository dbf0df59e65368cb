// Package viewer implements the typed viewer connection protocol:
// SendingPastEvents (the handshake moment, before history has been
// received) transitions into SendingEvents once the history snapshot frame
// has been read.
package viewer

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/wire"
)

// SendingPastEvents is a freshly connected viewer stream that has
// announced itself but not yet received the history snapshot.
type SendingPastEvents struct {
	conn net.Conn
	r    *wire.Reader
}

// Connect opens a TCP connection to addr and announces the connection as a
// Viewer.
func Connect(addr string) (*SendingPastEvents, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("viewer: dialing %s: %w", addr, err)
	}
	w := wire.NewWriter(conn)
	if err := w.WriteFrame(model.ConnViewer); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &SendingPastEvents{conn: conn, r: wire.NewReader(conn)}, nil
}

// ReceivePastEvents reads the single framed history snapshot and returns a
// SendingEvents handle for the live stream that follows.
func (s *SendingPastEvents) ReceivePastEvents() (*SendingEvents, []model.Event, error) {
	var history []model.Event
	if err := s.r.ReadFrame(&history); err != nil {
		return nil, nil, err
	}
	return &SendingEvents{conn: s.conn, r: s.r}, history, nil
}

// Close releases the underlying connection.
func (s *SendingPastEvents) Close() error {
	return s.conn.Close()
}

// SendingEvents is a viewer connection that has received its history
// snapshot and now reads the live event stream.
type SendingEvents struct {
	conn net.Conn
	r    *wire.Reader
}

// ReceiveEvent reads the next framed event. io.EOF indicates a clean
// server-side shutdown of the stream.
func (s *SendingEvents) ReceiveEvent() (model.Event, error) {
	var ev model.Event
	if err := s.r.ReadFrame(&ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// Run reads events in a loop, forwarding each to sink, until the stream
// ends cleanly (io.EOF) or an error occurs.
func (s *SendingEvents) Run(sink func(model.Event)) error {
	for {
		ev, err := s.ReceiveEvent()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		sink(ev)
	}
}

// Close releases the underlying connection.
func (s *SendingEvents) Close() error {
	return s.conn.Close()
}
