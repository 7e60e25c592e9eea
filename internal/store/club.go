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

const clubCollection = "clubs"

type ClubStore struct {
	coll *mongo.Collection
}

func NewClubStore(db *mongo.Database) *ClubStore {
	return &ClubStore{coll: db.Collection(clubCollection)}
}

// EnsureIndexes creates the unique club-name index. Call once at startup.
func (s *ClubStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create club indexes: %w", err)
	}
	return nil
}

func (s *ClubStore) Create(ctx context.Context, name, description, category string, ownerID int64) (*model.Club, error) {
	now := time.Now().UTC()
	club := &model.Club{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Category:    category,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.coll.InsertOne(ctx, club); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert club: %w: %w", ErrDuplicateName, err)
		}
		return nil, fmt.Errorf("insert club: %w", err)
	}
	return club, nil
}

func (s *ClubStore) GetByID(ctx context.Context, id string) (*model.Club, error) {
	var club model.Club
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&club)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get club: %w", err)
	}
	return &club, nil
}

func (s *ClubStore) List(ctx context.Context) ([]model.Club, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	defer cursor.Close(ctx)

	var clubs []model.Club
	if err := cursor.All(ctx, &clubs); err != nil {
		return nil, fmt.Errorf("decode clubs: %w", err)
	}
	return clubs, nil
}

func (s *ClubStore) Update(ctx context.Context, id, name, description, category string) (*model.Club, error) {
	update := bson.M{"$set": bson.M{
		"name":        name,
		"description": description,
		"category":    category,
		"updated_at":  time.Now().UTC(),
	}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("update club: %w: %w", ErrDuplicateName, err)
		}
		return nil, fmt.Errorf("update club: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *ClubStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete club: %w", err)
	}
	return nil
}

// ErrDuplicateName marks a unique-index violation on the club name.
var ErrDuplicateName = errors.New("name already taken")
