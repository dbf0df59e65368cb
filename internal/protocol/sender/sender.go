// Package sender implements the typed sender connection protocol. The
// connection lifecycle is encoded as distinct Go types per phase
// (LoggingIn, SendingMessages) returned only by the methods that represent
// a legal transition: Go has no phantom-type system, so the guarantee is
// simulated by never exposing a constructor for SendingMessages other than
// a successful Login on a LoggingIn value.
package sender

import (
	"fmt"
	"net"

	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/wire"
)

// LoggingIn is a freshly connected sender stream that has not yet
// established a nickname. The only operation available on it is Login.
type LoggingIn struct {
	conn net.Conn
	w    *wire.Writer
	r    *wire.Reader
}

// Connect opens a TCP connection to addr, announces the connection as a
// Sender, and returns a LoggingIn handle.
func Connect(addr string) (*LoggingIn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sender: dialing %s: %w", addr, err)
	}
	w := wire.NewWriter(conn)
	if err := w.WriteFrame(model.ConnSender); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &LoggingIn{conn: conn, w: w, r: wire.NewReader(conn)}, nil
}

// Login claims a nickname. On success it returns a SendingMessages handle
// and a nil *LoggingIn; on a taken nickname it returns the same LoggingIn
// so the caller can retry without reconnecting.
func (l *LoggingIn) Login(u model.User) (*SendingMessages, *LoggingIn, error) {
	if err := l.w.WriteFrame(model.NewLoginRequest(u)); err != nil {
		return nil, l, err
	}
	var resp model.LoginResponse
	if err := l.r.ReadFrame(&resp); err != nil {
		return nil, l, err
	}
	switch resp {
	case model.LoginSucceeded:
		return &SendingMessages{conn: l.conn, w: l.w, r: l.r}, nil, nil
	case model.LoginTaken:
		return nil, l, nil
	default:
		return nil, l, fmt.Errorf("sender: unexpected login response %q", resp)
	}
}

// Close releases the underlying connection.
func (l *LoggingIn) Close() error {
	return l.conn.Close()
}

// SendingMessages is a logged-in sender connection. It may send messages
// and typing events indefinitely.
type SendingMessages struct {
	conn net.Conn
	w    *wire.Writer
	r    *wire.Reader
}

// SendMessage transmits a chat message.
func (s *SendingMessages) SendMessage(body string) error {
	return s.w.WriteFrame(model.NewMessageRequest(model.Message{Body: body}))
}

// SendTyping transmits a typing-indicator transition.
func (s *SendingMessages) SendTyping(state model.TypingState) error {
	return s.w.WriteFrame(model.NewTypingRequest(state))
}

// Close releases the underlying connection.
func (s *SendingMessages) Close() error {
	return s.conn.Close()
}
