package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/utils"
)

type recordingStore struct {
	got []events.InteractionEvent
	err error
}

func (s *recordingStore) Persist(_ context.Context, ev events.InteractionEvent) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, ev)
	return nil
}

func newTestPool(store InteractionPersister) *InteractionWorkerPool {
	log, _ := test.NewNullLogger()
	p := &InteractionWorkerPool{Store: store, Logger: log}
	p.defaults()
	return p
}

func TestInteractionWorker_HandleMsg(t *testing.T) {
	store := &recordingStore{}
	p := newTestPool(store)

	values, err := events.EncodeInteraction(events.InteractionEvent{FromUserID: "a", ToUserID: "b", Action: "view"})
	require.NoError(t, err)

	ack := p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: values})
	assert.True(t, ack)
	require.Len(t, store.got, 1)
	assert.Equal(t, "b", store.got[0].ToUserID)
}

func TestInteractionWorker_MalformedIsAcked(t *testing.T) {
	store := &recordingStore{}
	p := newTestPool(store)

	ack := p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]any{"action": "view"}})
	assert.True(t, ack, "poison messages must not be redelivered forever")
	assert.Empty(t, store.got)
}

func TestInteractionWorker_RejectedEventIsAcked(t *testing.T) {
	store := &recordingStore{err: utils.E(utils.CodeInvalidArgument, "InteractionService.Persist", "invalid interaction event", nil)}
	p := newTestPool(store)

	values, err := events.EncodeInteraction(events.InteractionEvent{FromUserID: "u1", ToUserID: "u1", Action: "view"})
	require.NoError(t, err)

	ack := p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: values})
	assert.True(t, ack, "a self interaction fails the same way on every redelivery")
	assert.Empty(t, store.got)
}

func TestInteractionWorker_StoreFailureStaysPending(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	p := newTestPool(store)

	values, _ := events.EncodeInteraction(events.InteractionEvent{FromUserID: "a", ToUserID: "b", Action: "chat"})
	assert.False(t, p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: values}))
}

func TestInteractionWorker_Defaults(t *testing.T) {
	p := newTestPool(&recordingStore{})
	assert.Equal(t, events.InteractionStream, p.Stream)
	assert.Equal(t, events.InteractionGroup, p.Group)
	assert.Equal(t, 2, p.NumWorkers)

	err := (&InteractionWorkerPool{}).Start(context.Background())
	assert.Error(t, err)
}
