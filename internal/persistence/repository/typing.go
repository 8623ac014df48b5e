package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// typingDoc keys the shared per-room typing document by room id. Each writer
// merges only its own signals sub-key, so concurrent writers never clobber
// each other.
type typingDoc struct {
	ID      string                         `bson:"_id"`
	Signals map[string]*domain.TypingEntry `bson:"signals"`
}

func (d *typingDoc) toStatus() *domain.TypingStatus {
	signals := d.Signals
	if signals == nil {
		signals = make(map[string]*domain.TypingEntry)
	}
	return &domain.TypingStatus{
		RoomID:  d.ID,
		Signals: signals,
	}
}

type typingRepository struct {
	db *mongo.Database
}

func NewTypingRepository(database *mongo.Database) domain.TypingRepository {
	return &typingRepository{
		db: database,
	}
}

func (r *typingRepository) merge(ctx context.Context, roomID, clientID string, entry *domain.TypingEntry) error {
	collection := r.db.Collection(db.TypingCollection)

	update := bson.M{
		"$set": bson.M{"signals." + clientID: entry},
	}

	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, bson.M{"_id": roomID}, update, opts)
	return err
}

func (r *typingRepository) Merge(ctx context.Context, roomID, clientID string, at time.Time) error {
	return r.merge(ctx, roomID, clientID, &domain.TypingEntry{Timestamp: at})
}

func (r *typingRepository) Clear(ctx context.Context, roomID, clientID string) error {
	// Null entry rather than key removal, so readers can tell "cleared" from
	// "never signalled".
	return r.merge(ctx, roomID, clientID, nil)
}

func (r *typingRepository) Get(ctx context.Context, roomID string) (*domain.TypingStatus, error) {
	collection := r.db.Collection(db.TypingCollection)

	var doc typingDoc
	err := collection.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.TypingStatus{RoomID: roomID, Signals: map[string]*domain.TypingEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}

	return doc.toStatus(), nil
}

func (r *typingRepository) Watch(ctx context.Context, roomID string, onChange func(*domain.TypingStatus)) (domain.Subscription, error) {
	collection := r.db.Collection(db.TypingCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": roomID}}},
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	stream, err := collection.Watch(watchCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, err
	}

	status, err := r.Get(ctx, roomID)
	if err != nil {
		_ = stream.Close(context.Background())
		cancel()
		return nil, err
	}
	onChange(status)

	go func() {
		defer stream.Close(context.Background())

		for stream.Next(watchCtx) {
			var event struct {
				OperationType string    `bson:"operationType"`
				FullDocument  typingDoc `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				continue
			}

			switch event.OperationType {
			case "delete":
				onChange(&domain.TypingStatus{RoomID: roomID, Signals: map[string]*domain.TypingEntry{}})
			default:
				onChange(event.FullDocument.toStatus())
			}
		}
	}()

	return &changeStreamSubscription{cancel: cancel}, nil
}

func (r *typingRepository) ListRoomIDs(ctx context.Context, limit int64) ([]string, error) {
	collection := r.db.Collection(db.TypingCollection)

	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{"_id": 1})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}

	return ids, nil
}

func (r *typingRepository) DeleteAll(ctx context.Context, roomIDs []string) (int64, error) {
	if len(roomIDs) == 0 {
		return 0, nil
	}

	collection := r.db.Collection(db.TypingCollection)

	result, err := collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": roomIDs}})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
