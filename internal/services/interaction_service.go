package services

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/models"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
	"gorm.io/datatypes"
)

const maxActionLen = 32

type InteractionInput struct {
	TargetUserID string         `json:"target_user_id"`
	Action       string         `json:"action"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// InteractionTracker records interactions on behalf of other modules. It never fails the caller.
type InteractionTracker interface {
	Track(ctx context.Context, fromUserID, toUserID, action string, meta map[string]any)
}

type InteractionService interface {
	InteractionTracker
	Record(ctx context.Context, fromUserID string, in InteractionInput) (*models.Interaction, error)
	Persist(ctx context.Context, ev events.InteractionEvent) error
}

type interactionService struct {
	interactions pgrepo.InteractionRepository
	queue        events.InteractionQueue
	log          *logrus.Logger
}

// NewInteractionService persists tracked events through queue when set, directly otherwise.
func NewInteractionService(interactions pgrepo.InteractionRepository, queue events.InteractionQueue, log *logrus.Logger) InteractionService {
	if log == nil {
		log = logrus.New()
	}
	return &interactionService{interactions: interactions, queue: queue, log: log}
}

func normalizeAction(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

func (s *interactionService) Record(ctx context.Context, fromUserID string, in InteractionInput) (*models.Interaction, error) {
	const op = "InteractionService.Record"

	action := normalizeAction(in.Action)
	switch {
	case fromUserID == "":
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	case strings.TrimSpace(in.TargetUserID) == "":
		return nil, utils.E(utils.CodeInvalidArgument, op, "target_user_id is required", nil)
	case action == "" || len(action) > maxActionLen:
		return nil, utils.E(utils.CodeInvalidArgument, op, "action is required", nil)
	case in.TargetUserID == fromUserID:
		return nil, utils.E(utils.CodeInvalidArgument, op, "cannot interact with yourself", nil)
	}

	row, err := newInteraction(fromUserID, strings.TrimSpace(in.TargetUserID), action, in.Meta, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid meta", err)
	}
	if err := s.interactions.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record interaction", err)
	}
	return row, nil
}

func (s *interactionService) Persist(ctx context.Context, ev events.InteractionEvent) error {
	const op = "InteractionService.Persist"

	action := normalizeAction(ev.Action)
	if ev.FromUserID == "" || ev.ToUserID == "" || action == "" || ev.FromUserID == ev.ToUserID {
		return utils.E(utils.CodeInvalidArgument, op, "invalid interaction event", nil)
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row, err := newInteraction(ev.FromUserID, ev.ToUserID, action, ev.Meta, at)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid meta", err)
	}
	if err := s.interactions.Insert(ctx, row); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to persist interaction", err)
	}
	return nil
}

func (s *interactionService) Track(ctx context.Context, fromUserID, toUserID, action string, meta map[string]any) {
	if fromUserID == "" || toUserID == "" || fromUserID == toUserID {
		return
	}
	ev := events.InteractionEvent{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Action:     action,
		Meta:       meta,
		At:         time.Now().UTC(),
	}

	var err error
	if s.queue != nil {
		err = s.queue.EnqueueInteraction(ctx, ev)
	} else {
		err = s.Persist(ctx, ev)
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"from_user_id": fromUserID,
			"to_user_id":   toUserID,
			"action":       action,
		}).Warn("failed to track interaction")
	}
}

func newInteraction(from, to, action string, meta map[string]any, at time.Time) (*models.Interaction, error) {
	row := &models.Interaction{
		ID:         uuid.NewString(),
		FromUserID: from,
		ToUserID:   to,
		Action:     action,
		CreatedAt:  at,
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		row.Meta = datatypes.JSON(raw)
	}
	return row, nil
}
