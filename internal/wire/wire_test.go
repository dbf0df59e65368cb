package wire_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/wire"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)

	events := []model.Event{
		{Kind: model.NewLoginKind(), User: model.User{Nickname: "bob"}, At: time.Now().UTC()},
		{Kind: model.NewMessageKind(model.Message{Body: "hi"}), User: model.User{Nickname: "bob"}, At: time.Now().UTC()},
	}
	for _, e := range events {
		require.NoError(t, w.WriteFrame(e))
	}

	r := wire.NewReader(&buf)
	for _, want := range events {
		var got model.Event
		require.NoError(t, r.ReadFrame(&got))
		require.Equal(t, want.Kind, got.Kind)
		require.Equal(t, want.User, got.User)
		require.True(t, want.At.Equal(got.At))
	}

	var eofTarget model.Event
	require.ErrorIs(t, r.ReadFrame(&eofTarget), io.EOF)
}

func TestReadFrameListValue(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	history := []model.Event{
		{Kind: model.NewLoginKind(), User: model.User{Nickname: "bob"}, At: time.Now().UTC()},
	}
	require.NoError(t, w.WriteFrame(history))

	r := wire.NewReader(&buf)
	var got []model.Event
	require.NoError(t, r.ReadFrame(&got))
	require.Len(t, got, 1)
	require.Equal(t, "bob", got[0].User.Nickname)
}

func TestDecodeErrorIsWrapped(t *testing.T) {
	r := wire.NewReader(bytes.NewBufferString("not json\n"))
	var v model.Event
	err := r.ReadFrame(&v)
	require.Error(t, err)
	var syntaxErr *json.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}
