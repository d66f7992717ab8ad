package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/models"
	"github.com/teamup-campus/teamup/internal/utils"
)

type chatFixture struct {
	chats    *fakeChats
	messages *fakeMessages
	pub      *fakePublisher
	tracker  *fakeTracker
	svc      ChatService
}

func newChatFixture() *chatFixture {
	log, _ := test.NewNullLogger()
	f := &chatFixture{
		chats:    newFakeChats(),
		messages: &fakeMessages{},
		pub:      &fakePublisher{},
		tracker:  &fakeTracker{},
	}
	profiles := newFakeProfiles(models.Profile{ID: "alice"}, models.Profile{ID: "bob"}, models.Profile{ID: "carol"})
	f.svc = NewChatService(f.chats, f.messages, profiles, f.pub, f.tracker, log)
	return f
}

func TestChatService_OpenIsIdempotentPerPair(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()

	c1, err := f.svc.Open(ctx, "alice", "bob")
	require.NoError(t, err)
	c2, err := f.svc.Open(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, c1.ChatID, c2.ChatID)
	assert.Equal(t, []string{"alice", "bob"}, c1.MemberIDs)

	_, err = f.svc.Open(ctx, "alice", "alice")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	_, err = f.svc.Open(ctx, "alice", "nobody")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	list, err := f.svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.Open(ctx, "alice", "bob")
	require.NoError(t, err)

	msg, err := f.svc.Send(ctx, "alice", chat.ChatID, "  hi bob  ")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", msg.Content)
	assert.Equal(t, "alice", msg.SenderID)

	require.Len(t, f.messages.rows, 1)
	require.Len(t, f.pub.msgs, 1)
	assert.Equal(t, events.ChatChannel(chat.ChatID), f.pub.msgs[0].channel)
	ev, ok := f.pub.msgs[0].payload.(events.ChatEvent)
	require.True(t, ok)
	assert.Equal(t, "chat:message", ev.Type)
	assert.Equal(t, msg.MessageID, ev.MessageID)

	require.Len(t, f.tracker.calls, 1)
	assert.Equal(t, "bob", f.tracker.calls[0].to)
	assert.Equal(t, "chat", f.tracker.calls[0].action)

	stored, _ := f.chats.GetByChatID(ctx, chat.ChatID)
	assert.NotNil(t, stored.LastMessageAt)

	history, err := f.svc.Messages(ctx, "bob", chat.ChatID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChatService_SendRejects(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.Open(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, "carol", chat.ChatID, "hello")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	_, err = f.svc.Send(ctx, "alice", chat.ChatID, "   ")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = f.svc.Send(ctx, "alice", chat.ChatID, strings.Repeat("x", maxMessageRunes+1))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = f.svc.Send(ctx, "alice", "missing", "hello")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = f.svc.Messages(ctx, "carol", chat.ChatID, 10)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	assert.Empty(t, f.messages.rows)
	assert.Empty(t, f.pub.msgs)
}

func TestChatService_SendSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.Open(ctx, "alice", "bob")
	require.NoError(t, err)
	f.pub.err = errors.New("redis down")

	_, err = f.svc.Send(ctx, "alice", chat.ChatID, "still saved")
	require.NoError(t, err)
	assert.Len(t, f.messages.rows, 1)
}

func TestChatService_Join(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.Open(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.svc.Join(ctx, "bob", chat.ChatID))
	require.Len(t, f.pub.msgs, 1)
	ev := f.pub.msgs[0].payload.(events.ChatEvent)
	assert.Equal(t, "system", ev.Type)
	assert.Equal(t, "bob joined", ev.Content)

	assert.True(t, utils.IsCode(f.svc.Join(ctx, "carol", chat.ChatID), utils.CodeForbidden))

	f.pub.err = errors.New("redis down")
	assert.True(t, utils.IsCode(f.svc.Join(ctx, "alice", chat.ChatID), utils.CodeUnavailable))
}
