// Package hub wires together the five server actors described by the
// broadcast protocol: the Acceptor, the per-connection Sender handler
// workers, the Nickname Registrar, the History handler, and the Viewer
// handler, joined by a fan-out splitter that duplicates every sender event
// to both the history log and the live viewer broadcast.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/arzg/nunitius/internal/history"
	"github.com/arzg/nunitius/internal/log"
	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/nickname"
	"github.com/arzg/nunitius/internal/wire"
)

// Hub owns the registrar, history handler, and viewer handler actors and
// the acceptor loop that feeds them.
type Hub struct {
	capacity  int
	registrar *nickname.Registrar
	historyH  *history.Handler

	eventCh     chan model.Event // fed by sender handlers, drained by the fan-out splitter
	viewerEvtCh chan model.Event // fed by the fan-out splitter, drained by the viewer handler
	newViewerCh chan net.Conn
}

// New creates a Hub. channelCapacity bounds the hub's event and new-viewer
// channels, matching the configured backpressure threshold; the nickname
// registrar and history handler take requests over unbuffered channels.
func New(channelCapacity int) *Hub {
	return &Hub{
		capacity:    channelCapacity,
		registrar:   nickname.New(),
		historyH:    history.New(),
		eventCh:     make(chan model.Event, channelCapacity),
		viewerEvtCh: make(chan model.Event, channelCapacity),
		newViewerCh: make(chan net.Conn, channelCapacity),
	}
}

// Serve starts every actor and the accept loop, and blocks until ctx is
// cancelled or the listener fails.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() { defer wg.Done(); h.registrar.Run(ctx) }()

	wg.Add(1)
	go func() { defer wg.Done(); h.historyH.Run(ctx) }()

	wg.Add(1)
	go func() { defer wg.Done(); h.runFanOut(ctx) }()

	wg.Add(1)
	go func() { defer wg.Done(); h.runViewerHandler(ctx) }()

	acceptErr := h.runAcceptor(ctx, ln)

	wg.Wait()
	return acceptErr
}

func (h *Hub) runAcceptor(ctx context.Context, ln net.Listener) error {
	log.Info(log.CatHub, "acceptor started", "addr", ln.Addr().String())
	defer log.Info(log.CatHub, "acceptor stopped")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("hub: accept: %w", err)
		}

		connID := uuid.NewString()
		go h.dispatch(ctx, conn, connID)
	}
}

func (h *Hub) dispatch(ctx context.Context, conn net.Conn, connID string) {
	r := wire.NewReader(conn)

	var kind model.ConnectionKind
	if err := r.ReadFrame(&kind); err != nil {
		log.ErrorErr(log.CatHub, "failed to read connection kind", err, "conn", connID)
		_ = conn.Close()
		return
	}

	switch kind {
	case model.ConnSender:
		log.Info(log.CatHub, "sender connected", "conn", connID)
		h.handleSender(ctx, conn, r, connID)
	case model.ConnViewer:
		log.Info(log.CatHub, "viewer connected", "conn", connID)
		select {
		case h.newViewerCh <- conn:
		case <-ctx.Done():
			_ = conn.Close()
		}
	default:
		log.Error(log.CatHub, "unknown connection kind", "conn", connID, "kind", string(kind))
		_ = conn.Close()
	}
}

func (h *Hub) handleSender(ctx context.Context, conn net.Conn, r *wire.Reader, connID string) {
	w := wire.NewWriter(conn)

	user, ok := h.runLoginLoop(ctx, r, w, connID)
	if !ok {
		_ = conn.Close()
		return
	}

	h.emitEvent(ctx, model.Event{Kind: model.NewLoginKind(), User: user, At: time.Now()})

	defer func() {
		h.registrar.Logout(user.Nickname)
		h.emitEvent(ctx, model.Event{Kind: model.NewLogoutKind(), User: user, At: time.Now()})
		_ = conn.Close()
		log.Info(log.CatHub, "sender disconnected", "conn", connID, "nickname", user.Nickname)
	}()

	h.runMessageLoop(ctx, r, user, connID)
}

// runLoginLoop runs the sender's login subprotocol: repeated Login
// requests, replying Taken until a nickname is free.
func (h *Hub) runLoginLoop(ctx context.Context, r *wire.Reader, w *wire.Writer, connID string) (model.User, bool) {
	_, span := tracer.Start(ctx, "hub.login")
	defer span.End()

	for {
		var req model.SenderRequest
		if err := r.ReadFrame(&req); err != nil {
			if !errors.Is(err, io.EOF) {
				log.ErrorErr(log.CatHub, "failed to read login request", err, "conn", connID)
			}
			return model.User{}, false
		}
		if err := req.Validate(); err != nil || req.Tag != model.ReqLogin {
			log.Error(log.CatHub, "expected login request", "conn", connID)
			return model.User{}, false
		}

		user := *req.Login
		taken := h.registrar.Login(user.Nickname, user)

		resp := model.LoginSucceeded
		if taken {
			resp = model.LoginTaken
		}
		if err := w.WriteFrame(resp); err != nil {
			log.ErrorErr(log.CatHub, "failed to write login response", err, "conn", connID)
			return model.User{}, false
		}
		if !taken {
			return user, true
		}
	}
}

func (h *Hub) runMessageLoop(ctx context.Context, r *wire.Reader, user model.User, connID string) {
	for {
		var req model.SenderRequest
		if err := r.ReadFrame(&req); err != nil {
			if !errors.Is(err, io.EOF) {
				log.ErrorErr(log.CatHub, "sender read error", err, "conn", connID)
			}
			return
		}
		if err := req.Validate(); err != nil {
			log.ErrorErr(log.CatHub, "invalid sender request", err, "conn", connID)
			continue
		}

		switch req.Tag {
		case model.ReqNewMessage:
			h.emitEvent(ctx, model.Event{Kind: model.NewMessageKind(*req.Message), User: user, At: time.Now()})
		case model.ReqTyping:
			h.emitEvent(ctx, model.Event{Kind: model.NewTypingKind(req.Typing), User: user, At: time.Now()})
		default:
			log.Error(log.CatHub, "unexpected sender request after login", "conn", connID, "tag", string(req.Tag))
		}
	}
}

func (h *Hub) emitEvent(ctx context.Context, ev model.Event) {
	_, span := tracer.Start(ctx, "hub.ingress")
	defer span.End()

	select {
	case h.eventCh <- ev:
	case <-ctx.Done():
	}
}

// runFanOut duplicates every sender-produced event to the history handler
// and then to the viewer handler. Delivery to the history handler always
// precedes broadcast: Append blocks until the event is recorded, so a
// viewer greeted after this point can never observe the live event without
// also seeing it in its history snapshot. Typing events are never
// persisted to history — they are inherently ephemeral — but are still
// broadcast live so viewers can drive a typing indicator.
func (h *Hub) runFanOut(ctx context.Context) {
	log.Info(log.CatHub, "fan-out started")
	defer log.Info(log.CatHub, "fan-out stopped")

	for {
		select {
		case ev := <-h.eventCh:
			_, span := tracer.Start(ctx, "hub.broadcast")
			if !ev.IsTyping() {
				h.historyH.Append(ev)
			}
			select {
			case h.viewerEvtCh <- ev:
			case <-ctx.Done():
				span.End()
				return
			}
			span.End()
		case <-ctx.Done():
			return
		}
	}
}

type viewerConn struct {
	conn net.Conn
	w    *wire.Writer
}

// runViewerHandler owns the ViewerId -> connection map, multiplexing new
// viewer registrations with live event broadcast in a single select.
func (h *Hub) runViewerHandler(ctx context.Context) {
	log.Info(log.CatHub, "viewer handler started")
	defer log.Info(log.CatHub, "viewer handler stopped")

	viewers := make(map[uint64]*viewerConn)
	var nextID uint64

	for {
		select {
		case conn := <-h.newViewerCh:
			snapshot := h.historyH.Snapshot()
			w := wire.NewWriter(conn)
			if err := w.WriteFrame(snapshot); err != nil {
				log.ErrorErr(log.CatHub, "failed to greet viewer with history", err)
				_ = conn.Close()
				continue
			}
			id := nextID
			nextID++
			viewers[id] = &viewerConn{conn: conn, w: w}
			log.Debug(log.CatHub, "viewer registered", "viewerID", id, "historyLen", len(snapshot))

		case ev := <-h.viewerEvtCh:
			var toRemove []uint64
			for id, vc := range viewers {
				if err := vc.w.WriteFrame(ev); err != nil {
					if isBrokenPipe(err) {
						toRemove = append(toRemove, id)
					} else {
						log.ErrorErr(log.CatHub, "failed to write event to viewer", err, "viewerID", id)
					}
				}
			}
			for _, id := range toRemove {
				_ = viewers[id].conn.Close()
				delete(viewers, id)
				log.Debug(log.CatHub, "viewer removed", "viewerID", id)
			}

		case <-ctx.Done():
			for _, vc := range viewers {
				_ = vc.conn.Close()
			}
			return
		}
	}
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
