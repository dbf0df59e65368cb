package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/model"
)

func TestEventRoundTrip(t *testing.T) {
	events := []model.Event{
		{Kind: model.NewLoginKind(), User: model.User{Nickname: "bob"}, At: time.Now().UTC()},
		{Kind: model.NewMessageKind(model.Message{Body: "hi"}), User: model.User{Nickname: "bob", Color: model.ColorCyan}, At: time.Now().UTC()},
		{Kind: model.NewLogoutKind(), User: model.User{Nickname: "bob"}, At: time.Now().UTC()},
		{Kind: model.NewTypingKind(model.TypingStart), User: model.User{Nickname: "bob"}, At: time.Now().UTC()},
	}

	for _, e := range events {
		data, err := json.Marshal(e)
		require.NoError(t, err)

		var decoded model.Event
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.True(t, decoded.At.Equal(e.At))
		require.Equal(t, e.Kind, decoded.Kind)
		require.Equal(t, e.User, decoded.User)
	}
}

func TestValidColor(t *testing.T) {
	require.True(t, model.ValidColor(model.ColorRed))
	require.False(t, model.ValidColor(model.Color("orange")))
	require.False(t, model.ValidColor(model.Color("")))
}

func TestSenderRequestValidate(t *testing.T) {
	require.NoError(t, model.NewLoginRequest(model.User{Nickname: "a"}).Validate())
	require.NoError(t, model.NewMessageRequest(model.Message{Body: "hi"}).Validate())
	require.NoError(t, model.NewTypingRequest(model.TypingStart).Validate())

	require.Error(t, model.SenderRequest{Tag: model.ReqLogin}.Validate())
	require.Error(t, model.SenderRequest{Tag: model.ReqNewMessage}.Validate())
	require.Error(t, model.SenderRequest{Tag: model.ReqTyping, Typing: "sideways"}.Validate())
	require.Error(t, model.SenderRequest{Tag: "bogus"}.Validate())
}

func TestIsTyping(t *testing.T) {
	require.True(t, model.Event{Kind: model.NewTypingKind(model.TypingStop)}.IsTyping())
	require.False(t, model.Event{Kind: model.NewLoginKind()}.IsTyping())
}
