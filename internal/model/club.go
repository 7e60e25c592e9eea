package model

import "time"

// Club is a student club document stored in MongoDB.
type Club struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category" json:"category"`
	OwnerID     int64     `bson:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ClubEvent is an event organized by a club.
type ClubEvent struct {
	ID        string    `bson:"_id" json:"id"`
	ClubID    string    `bson:"club_id" json:"club_id"`
	Title     string    `bson:"title" json:"title"`
	Details   string    `bson:"details" json:"details"`
	Venue     string    `bson:"venue" json:"venue"`
	StartsAt  time.Time `bson:"starts_at" json:"starts_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
