package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/metrics"
	"github.com/teamup-campus/teamup/internal/utils"
)

// InteractionPersister stores one decoded interaction event.
type InteractionPersister interface {
	Persist(ctx context.Context, ev events.InteractionEvent) error
}

// InteractionWorkerPool drains the interaction stream through a consumer group.
type InteractionWorkerPool struct {
	Redis      *redis.Client
	Store      InteractionPersister
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *InteractionWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Store == nil {
		return errors.New("InteractionWorkerPool missing dependency: Redis/Store must be set")
	}
	p.defaults()

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	p.Logger.WithFields(logrus.Fields{
		"stream":  p.Stream,
		"group":   p.Group,
		"workers": p.NumWorkers,
	}).Info("interaction workers started")
	return nil
}

func (p *InteractionWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = events.InteractionStream
	}
	if p.Group == "" {
		p.Group = events.InteractionGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

func (p *InteractionWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				p.reclaim(ctx, consumer)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("xreadgroup failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				if p.handleMsg(ctx, msg) {
					_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
				}
			}
		}
	}
}

// reclaim takes over entries another consumer left pending for too long.
func (p *InteractionWorkerPool) reclaim(ctx context.Context, consumer string) {
	msgs, _, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   p.Stream,
		Group:    p.Group,
		Consumer: consumer,
		MinIdle:  time.Minute,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil {
		return
	}
	for _, msg := range msgs {
		if p.handleMsg(ctx, msg) {
			_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
		}
	}
}

// handleMsg reports whether the message is done with and can be acked.
// Store failures leave the entry pending for redelivery.
func (p *InteractionWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) bool {
	log := p.Logger.WithField("redis_id", msg.ID)

	ev, err := events.DecodeInteraction(msg.Values)
	if err != nil {
		log.WithError(err).Warn("dropping malformed interaction event")
		metrics.InteractionEvents.WithLabelValues("malformed").Inc()
		return true
	}

	log = log.WithFields(logrus.Fields{
		"from_user_id": ev.FromUserID,
		"to_user_id":   ev.ToUserID,
		"action":       ev.Action,
	})
	if err := p.Store.Persist(ctx, ev); err != nil {
		// rejected events never become valid on redelivery
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			log.WithError(err).Warn("dropping rejected interaction event")
			metrics.InteractionEvents.WithLabelValues("malformed").Inc()
			return true
		}
		log.WithError(err).Error("persist interaction failed")
		metrics.InteractionEvents.WithLabelValues("failed").Inc()
		return false
	}
	metrics.InteractionEvents.WithLabelValues("stored").Inc()
	return true
}
