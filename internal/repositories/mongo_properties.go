package repositories

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentcare/rentcare-gobackend/internal/models"
)

type MongoPropertyStore struct {
	collection *mongo.Collection
}

func NewMongoPropertyStore(db *mongo.Database) *MongoPropertyStore {
	return &MongoPropertyStore{collection: db.Collection("properties")}
}

// EnsureIndexes creates the indexes the property queries rely on.
func (s *MongoPropertyStore) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.M{"ownerId": 1}},
		{Keys: bson.M{"tenants.username": 1}},
		{Keys: bson.M{"tenants.flatNo": 1}},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("Failed to create property indexes: %v", err)
		return fmt.Errorf("failed to create property indexes: %w", err)
	}
	return nil
}

func (s *MongoPropertyStore) List(ctx context.Context, ownerID string) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if ownerID != "" {
		query["ownerId"] = ownerID
	}

	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		log.Printf("Failed to fetch properties for owner %q: %v", ownerID, err)
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	defer cur.Close(ctx)

	properties := []models.Property{}
	if err := cur.All(ctx, &properties); err != nil {
		log.Printf("Failed to decode properties: %v", err)
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func (s *MongoPropertyStore) Get(ctx context.Context, id string) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var property models.Property
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Printf("Failed to fetch property %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}
	Normalize(&property)
	return &property, nil
}

func (s *MongoPropertyStore) Insert(ctx context.Context, p *models.Property) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	Normalize(p)
	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		log.Printf("Failed to insert property: %v", err)
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (s *MongoPropertyStore) Replace(ctx context.Context, p *models.Property) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	Normalize(p)
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		log.Printf("Failed to replace property %s: %v", p.ID, err)
		return fmt.Errorf("failed to update property: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPropertyStore) UpdateDetails(ctx context.Context, id, name, location string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":      name,
		"location":  location,
		"updatedAt": time.Now(),
	}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		log.Printf("Failed to update property %s: %v", id, err)
		return fmt.Errorf("failed to update property: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPropertyStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Printf("Failed to delete property %s: %v", id, err)
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPropertyStore) AddTenant(ctx context.Context, propertyID string, t models.Tenant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	NormalizeTenant(&t)
	filter := bson.M{"_id": propertyID, "tenants.flatNo": bson.M{"$ne": t.FlatNo}}
	update := bson.M{
		"$push": bson.M{"tenants": t},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to add tenant %s to property %s: %v", t.FlatNo, propertyID, err)
		return fmt.Errorf("failed to add tenant: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.unmatched(ctx, propertyID, ErrDuplicateFlat)
	}
	return nil
}

func (s *MongoPropertyStore) RemoveTenant(ctx context.Context, propertyID, flatNo string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": propertyID, "tenants.flatNo": flatNo}
	update := bson.M{
		"$pull": bson.M{"tenants": bson.M{"flatNo": flatNo}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to remove tenant %s from property %s: %v", flatNo, propertyID, err)
		return fmt.Errorf("failed to remove tenant: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.unmatched(ctx, propertyID, ErrTenantNotFound)
	}
	return nil
}

func (s *MongoPropertyStore) PushNotification(ctx context.Context, propertyID, flatNo string, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": propertyID, "tenants.flatNo": flatNo}
	update := bson.M{
		"$push": bson.M{"tenants.$.notifiedMessages": n},
		"$set":  bson.M{"tenants.$.lastNotify": n.Date, "updatedAt": time.Now()},
	}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to notify tenant %s in property %s: %v", flatNo, propertyID, err)
		return fmt.Errorf("failed to save notification: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.unmatched(ctx, propertyID, ErrTenantNotFound)
	}
	return nil
}

func (s *MongoPropertyStore) RecordPayment(ctx context.Context, propertyID, flatNo string, entry models.PaymentEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := paymentFilter(propertyID, flatNo, entry.SessionID)
	update := bson.M{
		"$set": bson.M{
			"tenants.$.paymentStatus": models.PaymentPaid,
			"tenants.$.lastNotify":    entry.Date,
			"updatedAt":               time.Now(),
		},
		"$push": bson.M{"tenants.$.paymentHistory": entry},
	}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to record payment for tenant %s in property %s: %v", flatNo, propertyID, err)
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if res.MatchedCount == 0 {
		if entry.SessionID == "" {
			return s.unmatched(ctx, propertyID, ErrTenantNotFound)
		}
		n, err := s.collection.CountDocuments(ctx, bson.M{"_id": propertyID, "tenants.flatNo": flatNo})
		if err != nil {
			return fmt.Errorf("failed to fetch property: %w", err)
		}
		if n > 0 {
			return ErrPaymentRecorded
		}
		return s.unmatched(ctx, propertyID, ErrTenantNotFound)
	}
	return nil
}

// paymentFilter selects the tenant a payment goes to. With a session id it
// only matches while that session is absent from the tenant's history, so a
// retried confirmation cannot append twice.
func paymentFilter(propertyID, flatNo, sessionID string) bson.M {
	if sessionID == "" {
		return bson.M{"_id": propertyID, "tenants.flatNo": flatNo}
	}
	return bson.M{
		"_id": propertyID,
		"tenants": bson.M{"$elemMatch": bson.M{
			"flatNo":                   flatNo,
			"paymentHistory.sessionId": bson.M{"$ne": sessionID},
		}},
	}
}

func (s *MongoPropertyStore) AddRequest(ctx context.Context, propertyID string, r models.MaintenanceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"maintenanceRequests": r},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": propertyID}, update)
	if err != nil {
		log.Printf("Failed to add maintenance request to property %s: %v", propertyID, err)
		return fmt.Errorf("failed to save maintenance request: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPropertyStore) UpdateRequest(ctx context.Context, propertyID, requestID, status, remarks string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": propertyID, "maintenanceRequests.id": requestID}
	update := bson.M{"$set": bson.M{
		"maintenanceRequests.$.status":  status,
		"maintenanceRequests.$.remarks": remarks,
		"updatedAt":                     time.Now(),
	}}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to update maintenance request %s: %v", requestID, err)
		return fmt.Errorf("failed to update maintenance request: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.unmatched(ctx, propertyID, ErrRequestNotFound)
	}
	return nil
}

func (s *MongoPropertyStore) RemoveRequest(ctx context.Context, propertyID, requestID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": propertyID, "maintenanceRequests.id": requestID}
	update := bson.M{
		"$pull": bson.M{"maintenanceRequests": bson.M{"id": requestID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to delete maintenance request %s: %v", requestID, err)
		return fmt.Errorf("failed to delete maintenance request: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.unmatched(ctx, propertyID, ErrRequestNotFound)
	}
	return nil
}

func (s *MongoPropertyStore) FindTenantLogins(ctx context.Context, identifier string) ([]TenantLogin, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{"$or": []bson.M{
		{"tenants.username": caseInsensitive(identifier)},
		{"tenants.flatNo": identifier},
	}}
	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		log.Printf("Failed to search tenants: %v", err)
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	defer cur.Close(ctx)

	var properties []models.Property
	if err := cur.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return matchTenants(properties, identifier), nil
}

// unmatched explains an update that matched no document: either the
// property is gone or the element the filter named is.
func (s *MongoPropertyStore) unmatched(ctx context.Context, propertyID string, elementErr error) error {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": propertyID})
	if err != nil {
		return fmt.Errorf("failed to fetch property: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return elementErr
}

func caseInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}
