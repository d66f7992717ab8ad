package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a direct conversation between two users.
type Chat struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ChatID        string             `bson:"chat_id" json:"chat_id"`
	MemberIDs     []string           `bson:"member_ids" json:"member_ids"` // sorted
	PairKey       string             `bson:"pair_key" json:"-"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	LastMessageAt *time.Time         `bson:"last_message_at,omitempty" json:"last_message_at,omitempty"`
}

func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.MemberIDs {
		if m == userID {
			return true
		}
	}
	return false
}

// Peer returns the other member, or "" if userID is not a member.
func (c *Chat) Peer(userID string) string {
	if !c.HasMember(userID) {
		return ""
	}
	for _, m := range c.MemberIDs {
		if m != userID {
			return m
		}
	}
	return ""
}

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	MessageID string             `bson:"message_id" json:"message_id"`
	ChatID    string             `bson:"chat_id" json:"chat_id"`
	SenderID  string             `bson:"sender_id" json:"sender_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
