package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type roomRepository struct {
	db *mongo.Database
}

func NewRoomRepository(database *mongo.Database) domain.RoomRepository {
	return &roomRepository{
		db: database,
	}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	collection := r.db.Collection(db.RoomsCollection)

	if room.ID == "" {
		room.ID = uuid.NewString()
	}

	_, err := collection.InsertOne(ctx, room)
	return err
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	collection := r.db.Collection(db.RoomsCollection)

	var room domain.Room
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepository) FindWaitingFor(ctx context.Context, clientID string) (*domain.Room, error) {
	collection := r.db.Collection(db.RoomsCollection)

	filter := bson.M{
		"status":       domain.RoomWaiting,
		"participants": clientID,
	}

	var room domain.Room
	err := collection.FindOne(ctx, filter).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNoWaitingRoom
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepository) JoinWaiting(ctx context.Context, clientID string) (*domain.Room, error) {
	collection := r.db.Collection(db.RoomsCollection)

	// The filter and update run as one conditional document update, so two
	// clients racing for the same waiting room cannot both get in.
	filter := bson.M{
		"status":       domain.RoomWaiting,
		"participants": bson.M{"$size": 1, "$ne": clientID},
	}

	update := bson.M{
		"$push": bson.M{"participants": clientID},
		"$set": bson.M{
			"status":    domain.RoomActive,
			"updatedAt": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	var room domain.Room
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNoWaitingRoom
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepository) RemoveParticipant(ctx context.Context, roomID, clientID string) error {
	collection := r.db.Collection(db.RoomsCollection)

	update := bson.M{
		"$pull": bson.M{"participants": clientID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}

func (r *roomRepository) DeleteWithMessages(ctx context.Context, roomID string) (int64, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return 0, err
	}
	defer session.EndSession(ctx)

	deleted, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		messages := r.db.Collection(db.MessagesCollection)
		result, err := messages.DeleteMany(sessCtx, bson.M{"roomId": roomID})
		if err != nil {
			return nil, err
		}

		rooms := r.db.Collection(db.RoomsCollection)
		if _, err := rooms.DeleteOne(sessCtx, bson.M{"_id": roomID}); err != nil {
			return nil, err
		}

		return result.DeletedCount, nil
	})
	if err != nil {
		return 0, err
	}

	return deleted.(int64), nil
}

func (r *roomRepository) Touch(ctx context.Context, roomID string) error {
	collection := r.db.Collection(db.RoomsCollection)

	update := bson.M{
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}

func (r *roomRepository) List(ctx context.Context, limit int64) ([]domain.Room, error) {
	collection := r.db.Collection(db.RoomsCollection)

	opts := options.Find().SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []domain.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *roomRepository) Watch(ctx context.Context, roomID string, onChange func(*domain.Room)) (domain.Subscription, error) {
	collection := r.db.Collection(db.RoomsCollection)

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

	// Deliver the current state before streaming changes so subscribers never
	// start from a blind spot.
	room, err := r.GetByID(ctx, roomID)
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		_ = stream.Close(context.Background())
		cancel()
		return nil, err
	}
	onChange(room)

	go func() {
		defer stream.Close(context.Background())

		for stream.Next(watchCtx) {
			var event struct {
				OperationType string      `bson:"operationType"`
				FullDocument  domain.Room `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				continue
			}

			switch event.OperationType {
			case "delete":
				onChange(nil)
			default:
				doc := event.FullDocument
				onChange(&doc)
			}
		}
	}()

	return &changeStreamSubscription{cancel: cancel}, nil
}

type changeStreamSubscription struct {
	cancel context.CancelFunc
}

func (s *changeStreamSubscription) Close() error {
	s.cancel()
	return nil
}

func (r *roomRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RoomsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "participants", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "updatedAt", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
