package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentcare/rentcare-gobackend/internal/models"
)

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection("users")}
}

// userIndexes make email and username unique ignoring case. Accounts may
// leave one of them empty, so empty values are left out of the index.
func userIndexes() []mongo.IndexModel {
	caseless := &options.Collation{Locale: "en", Strength: 2}
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
			Options: options.Index().
				SetName(field + "_unique").
				SetUnique(true).
				SetCollation(caseless).
				SetPartialFilterExpression(bson.M{field: bson.M{"$gt": ""}}),
		}
	}
	return []mongo.IndexModel{unique("email"), unique("username")}
}

func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.collection.Indexes().CreateMany(ctx, userIndexes()); err != nil {
		log.Printf("Failed to create user indexes: %v", err)
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (s *MongoUserStore) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	projection := bson.D{{Key: "passwordHash", Value: 0}}
	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
	if err != nil {
		log.Printf("Failed to fetch users: %v", err)
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		log.Printf("Failed to fetch user %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) Insert(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.collection.InsertOne(ctx, u); err != nil {
		return insertUserError(err)
	}
	return nil
}

// insertUserError maps a unique index violation to ErrDuplicateUser.
func insertUserError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUser
	}
	log.Printf("Failed to insert user: %v", err)
	return fmt.Errorf("failed to save user: %w", err)
}

func (s *MongoUserStore) FindOwners(ctx context.Context, identifier string) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{
		"role": models.RoleOwner,
		"$or": []bson.M{
			{"email": caseInsensitive(identifier)},
			{"username": caseInsensitive(identifier)},
		},
	}
	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		log.Printf("Failed to search owners: %v", err)
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}
