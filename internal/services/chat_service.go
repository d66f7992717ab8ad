package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/metrics"
	"github.com/teamup-campus/teamup/internal/models"
	mongorepo "github.com/teamup-campus/teamup/internal/repositories/mongo"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
)

const (
	maxMessageRunes     = 4000
	defaultMessageLimit = 50
	maxMessageLimit     = 200
	maxChatList         = 100
)

type ChatService interface {
	Open(ctx context.Context, userID, peerID string) (*models.Chat, error)
	List(ctx context.Context, userID string) ([]models.Chat, error)
	// Authorize returns the chat if userID is one of its members.
	Authorize(ctx context.Context, userID, chatID string) (*models.Chat, error)
	Messages(ctx context.Context, userID, chatID string, limit int) ([]models.Message, error)
	Send(ctx context.Context, userID, chatID, content string) (*models.Message, error)
	// Join announces userID to the other sockets of the chat.
	Join(ctx context.Context, userID, chatID string) error
}

type chatService struct {
	chats    mongorepo.ChatRepository
	messages mongorepo.MessageRepository
	profiles pgrepo.ProfileRepository
	pub      events.Publisher
	tracker  InteractionTracker
	log      *logrus.Logger
}

func NewChatService(
	chats mongorepo.ChatRepository,
	messages mongorepo.MessageRepository,
	profiles pgrepo.ProfileRepository,
	pub events.Publisher,
	tracker InteractionTracker,
	log *logrus.Logger,
) ChatService {
	if log == nil {
		log = logrus.New()
	}
	return &chatService{chats: chats, messages: messages, profiles: profiles, pub: pub, tracker: tracker, log: log}
}

func (s *chatService) Open(ctx context.Context, userID, peerID string) (*models.Chat, error) {
	const op = "ChatService.Open"

	peerID = strings.TrimSpace(peerID)
	switch {
	case userID == "" || peerID == "":
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and peer_user_id are required", nil)
	case userID == peerID:
		return nil, utils.E(utils.CodeInvalidArgument, op, "cannot chat with yourself", nil)
	}

	if _, err := s.profiles.GetByID(ctx, peerID); err != nil {
		return nil, utils.FromStore(op, "peer profile", "failed to load peer profile", err)
	}

	chat, err := s.chats.GetOrCreateDirect(ctx, uuid.NewString(), userID, peerID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to open chat", err)
	}
	return chat, nil
}

func (s *chatService) List(ctx context.Context, userID string) ([]models.Chat, error) {
	const op = "ChatService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.chats.ListByMember(ctx, userID, maxChatList)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list chats", err)
	}
	return out, nil
}

func (s *chatService) Authorize(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	const op = "ChatService.Authorize"

	if userID == "" || strings.TrimSpace(chatID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and chat_id are required", nil)
	}
	chat, err := s.chats.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, utils.FromStore(op, "chat", "failed to get chat", err)
	}
	if !chat.HasMember(userID) {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return chat, nil
}

func (s *chatService) Messages(ctx context.Context, userID, chatID string, limit int) ([]models.Message, error) {
	const op = "ChatService.Messages"

	if _, err := s.Authorize(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	out, err := s.messages.ListByChat(ctx, chatID, int64(limit))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return out, nil
}

func (s *chatService) Send(ctx context.Context, userID, chatID, content string) (*models.Message, error) {
	const op = "ChatService.Send"

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is required", nil)
	}
	if utf8.RuneCountInString(content) > maxMessageRunes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is too long", nil)
	}

	chat, err := s.Authorize(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		MessageID: uuid.NewString(),
		ChatID:    chat.ChatID,
		SenderID:  userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save message", err)
	}
	metrics.ChatMessages.Inc()

	log := s.log.WithFields(logrus.Fields{"chat_id": chat.ChatID, "message_id": msg.MessageID})
	if err := s.chats.Touch(ctx, chat.ChatID, msg.CreatedAt); err != nil {
		log.WithError(err).Warn("failed to update chat activity")
	}
	if s.pub != nil {
		err := s.pub.Publish(ctx, events.ChatChannel(chat.ChatID), events.ChatEvent{
			Type:      "chat:message",
			ChatID:    chat.ChatID,
			MessageID: msg.MessageID,
			SenderID:  userID,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
		if err != nil {
			log.WithError(err).Warn("failed to publish chat message")
		}
	}
	if s.tracker != nil {
		s.tracker.Track(ctx, userID, chat.Peer(userID), string(models.ActionChat), map[string]any{"chat_id": chat.ChatID})
	}
	return msg, nil
}

func (s *chatService) Join(ctx context.Context, userID, chatID string) error {
	const op = "ChatService.Join"

	chat, err := s.Authorize(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if s.pub == nil {
		return nil
	}
	err = s.pub.Publish(ctx, events.ChatChannel(chat.ChatID), events.ChatEvent{
		Type:      "system",
		ChatID:    chat.ChatID,
		Content:   userID + " joined",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to announce join", err)
	}
	return nil
}
