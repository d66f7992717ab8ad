package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chats := db.Collection("chats")
	_, err := chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}},
			Options: options.Index().SetName("uniq_chat_id").SetUnique(true),
		},
		// one direct chat per unordered pair of users
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetName("uniq_pair_key").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}, {Key: "last_message_at", Value: -1}},
			Options: options.Index().SetName("by_member_activity"),
		},
	})
	if err != nil {
		return err
	}

	messages := db.Collection("messages")
	_, err = messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetName("uniq_message_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_chat_created"),
		},
	})
	return err
}
