package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mkarpenko/campushub/internal/model"
)

const eventCollection = "events"

type EventStore struct {
	coll *mongo.Collection
}

func NewEventStore(db *mongo.Database) *EventStore {
	return &EventStore{coll: db.Collection(eventCollection)}
}

func (s *EventStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "club_id", Value: 1}, {Key: "starts_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	return nil
}

func (s *EventStore) Create(ctx context.Context, clubID, title, details, venue string, startsAt time.Time) (*model.ClubEvent, error) {
	now := time.Now().UTC()
	event := &model.ClubEvent{
		ID:        uuid.NewString(),
		ClubID:    clubID,
		Title:     title,
		Details:   details,
		Venue:     venue,
		StartsAt:  startsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*model.ClubEvent, error) {
	var event model.ClubEvent
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (s *EventStore) ListByClub(ctx context.Context, clubID string) ([]model.ClubEvent, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"club_id": clubID},
		options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []model.ClubEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func (s *EventStore) Update(ctx context.Context, id, title, details, venue string, startsAt time.Time) (*model.ClubEvent, error) {
	update := bson.M{"$set": bson.M{
		"title":      title,
		"details":    details,
		"venue":      venue,
		"starts_at":  startsAt,
		"updated_at": time.Now().UTC(),
	}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *EventStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// DeleteByClub removes all events belonging to a club, used when the club
// itself is deleted.
func (s *EventStore) DeleteByClub(ctx context.Context, clubID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"club_id": clubID}); err != nil {
		return fmt.Errorf("delete club events: %w", err)
	}
	return nil
}
