package mongo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/teamup-campus/teamup/internal/models"
	"github.com/teamup-campus/teamup/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChatRepository interface {
	// GetOrCreateDirect returns the single chat shared by two users, creating it on first use.
	GetOrCreateDirect(ctx context.Context, chatID, userA, userB string) (*models.Chat, error)
	GetByChatID(ctx context.Context, chatID string) (*models.Chat, error)
	ListByMember(ctx context.Context, userID string, limit int64) ([]models.Chat, error)
	Touch(ctx context.Context, chatID string, at time.Time) error
}

type chatRepo struct {
	col *mongo.Collection
}

func NewChatRepo(db *mongo.Database) ChatRepository {
	return &chatRepo{col: db.Collection("chats")}
}

// PairKey is order independent: PairKey(a, b) == PairKey(b, a).
func PairKey(userA, userB string) (string, []string) {
	members := []string{userA, userB}
	sort.Strings(members)
	return strings.Join(members, ":"), members
}

func (r *chatRepo) GetOrCreateDirect(ctx context.Context, chatID, userA, userB string) (*models.Chat, error) {
	key, members := PairKey(userA, userB)
	now := time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c models.Chat
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"pair_key": key},
		bson.M{"$setOnInsert": bson.M{
			"chat_id":    chatID,
			"member_ids": members,
			"pair_key":   key,
			"created_at": now,
		}},
		opts,
	).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		// lost a concurrent upsert on uniq_pair_key; the winner's document exists now
		err = r.col.FindOne(ctx, bson.M{"pair_key": key}).Decode(&c)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *chatRepo) GetByChatID(ctx context.Context, chatID string) (*models.Chat, error) {
	var c models.Chat
	err := r.col.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *chatRepo) ListByMember(ctx context.Context, userID string, limit int64) ([]models.Chat, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_message_at", Value: -1}, {Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, bson.M{"member_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Chat{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatRepo) Touch(ctx context.Context, chatID string, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$set": bson.M{"last_message_at": at.UTC()}},
	)
	return err
}
