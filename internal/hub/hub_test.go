package hub_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/hub"
	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/protocol/sender"
	"github.com/arzg/nunitius/internal/protocol/viewer"
)

func startHub(t *testing.T) (addr string, stop func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := hub.New(100)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Serve(ctx, ln)
	}()

	return ln.Addr().String(), func() {
		cancel()
		<-done
	}
}

func TestHub_LoginAndMessageReachesViewer(t *testing.T) {
	addr, stop := startHub(t)
	defer stop()

	v, err := viewer.Connect(addr)
	require.NoError(t, err)
	defer v.Close()

	live, history, err := v.ReceivePastEvents()
	require.NoError(t, err)
	assert.Empty(t, history)

	loggingIn, err := sender.Connect(addr)
	require.NoError(t, err)
	defer loggingIn.Close()

	alice := model.User{Nickname: "alice", Color: model.ColorRed}
	sendingMsgs, retry, err := loggingIn.Login(alice)
	require.NoError(t, err)
	require.Nil(t, retry)
	require.NotNil(t, sendingMsgs)
	defer sendingMsgs.Close()

	loginEvent, err := live.ReceiveEvent()
	require.NoError(t, err)
	assert.Equal(t, model.KindLogin, loginEvent.Kind.Tag)
	assert.Equal(t, alice, loginEvent.User)

	require.NoError(t, sendingMsgs.SendMessage("hello"))

	msgEvent, err := live.ReceiveEvent()
	require.NoError(t, err)
	assert.Equal(t, model.KindMessage, msgEvent.Kind.Tag)
	assert.Equal(t, "hello", msgEvent.Kind.Message.Body)
	assert.Equal(t, alice, msgEvent.User)
}

func TestHub_LoginContentionThenFreedAfterLogout(t *testing.T) {
	addr, stop := startHub(t)
	defer stop()

	first, err := sender.Connect(addr)
	require.NoError(t, err)

	alice := model.User{Nickname: "alice"}
	firstSession, retry, err := first.Login(alice)
	require.NoError(t, err)
	require.Nil(t, retry)
	require.NotNil(t, firstSession)

	second, err := sender.Connect(addr)
	require.NoError(t, err)
	defer second.Close()

	secondSession, stillLoggingIn, err := second.Login(alice)
	require.NoError(t, err)
	assert.Nil(t, secondSession, "login should be taken while alice is already connected")
	require.NotNil(t, stillLoggingIn)

	require.NoError(t, firstSession.Close())

	// Give the server time to observe the EOF and process the logout
	// before the retry races it.
	time.Sleep(100 * time.Millisecond)

	thirdSession, retryAgain, err := stillLoggingIn.Login(alice)
	require.NoError(t, err)
	require.Nil(t, retryAgain)
	require.NotNil(t, thirdSession)
	defer thirdSession.Close()
}

func TestHub_ViewerGreetedWithExistingHistory(t *testing.T) {
	addr, stop := startHub(t)
	defer stop()

	loggingIn, err := sender.Connect(addr)
	require.NoError(t, err)
	defer loggingIn.Close()

	bob := model.User{Nickname: "bob"}
	session, _, err := loggingIn.Login(bob)
	require.NoError(t, err)
	require.NoError(t, session.SendMessage("before viewer connects"))

	// Allow the event to land in history before the viewer connects,
	// since there's no synchronous ack for a sender's fire-and-forget send.
	time.Sleep(100 * time.Millisecond)

	v, err := viewer.Connect(addr)
	require.NoError(t, err)
	defer v.Close()

	_, history, err := v.ReceivePastEvents()
	require.NoError(t, err)
	require.Len(t, history, 2) // login + message
	assert.Equal(t, model.KindLogin, history[0].Kind.Tag)
	assert.Equal(t, model.KindMessage, history[1].Kind.Tag)
	assert.Equal(t, "before viewer connects", history[1].Kind.Message.Body)
}

func TestHub_TypingEventsExcludedFromHistory(t *testing.T) {
	addr, stop := startHub(t)
	defer stop()

	loggingIn, err := sender.Connect(addr)
	require.NoError(t, err)
	defer loggingIn.Close()

	carol := model.User{Nickname: "carol"}
	session, _, err := loggingIn.Login(carol)
	require.NoError(t, err)
	require.NoError(t, session.SendTyping(model.TypingStart))

	time.Sleep(100 * time.Millisecond)

	v, err := viewer.Connect(addr)
	require.NoError(t, err)
	defer v.Close()

	_, history, err := v.ReceivePastEvents()
	require.NoError(t, err)
	require.Len(t, history, 1) // login only, typing excluded
	assert.Equal(t, model.KindLogin, history[0].Kind.Tag)
}
