package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(database *mongo.Database) domain.MessageRepository {
	return &messageRepository{
		db: database,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	collection := r.db.Collection(db.MessagesCollection)

	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	_, err := collection.InsertOne(ctx, message)
	return err
}

func (r *messageRepository) ListByRoom(ctx context.Context, roomID string, limit int64) ([]domain.Message, error) {
	collection := r.db.Collection(db.MessagesCollection)

	filter := bson.M{"roomId": roomID}

	// Take the newest N descending, then flip so callers read oldest first.
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	collection := r.db.Collection(db.MessagesCollection)

	return collection.CountDocuments(ctx, bson.M{"roomId": roomID})
}

func (r *messageRepository) Watch(ctx context.Context, roomID string, onChange func([]domain.Message)) (domain.Subscription, error) {
	collection := r.db.Collection(db.MessagesCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":       "insert",
			"fullDocument.roomId": roomID,
		}}},
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	stream, err := collection.Watch(watchCtx, pipeline)
	if err != nil {
		cancel()
		return nil, err
	}

	deliver := func(ctx context.Context) {
		messages, err := r.ListByRoom(ctx, roomID, domain.MessageHistoryLimit)
		if err != nil {
			return
		}
		onChange(messages)
	}

	deliver(ctx)

	go func() {
		defer stream.Close(context.Background())

		for stream.Next(watchCtx) {
			deliver(watchCtx)
		}
	}()

	return &changeStreamSubscription{cancel: cancel}, nil
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.MessagesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "roomId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
