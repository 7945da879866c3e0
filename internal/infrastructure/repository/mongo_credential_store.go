package repository

import (
	"context"
	"fmt"
	"time"

	"trazoo-cod-gateway/internal/domain"
	"trazoo-cod-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCredentialStore persists shop credentials in the "shops" collection,
// one document per shop domain.
type MongoCredentialStore struct {
	collection *mongo.Collection
}

// NewMongoCredentialStore creates a credential store backed by MongoDB.
func NewMongoCredentialStore(db *mongo.Database) ports.CredentialStore {
	return &MongoCredentialStore{
		collection: db.Collection("shops"),
	}
}

// Get retrieves the access token for a shop. A shop with no stored
// credential yields ("", nil).
func (r *MongoCredentialStore) Get(ctx context.Context, shop string) (string, error) {
	var doc domain.ShopCredential
	filter := bson.M{"shop": shop}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential: %w", err)
	}

	return doc.AccessToken, nil
}

// Put upserts the access token for a shop; the last write wins.
func (r *MongoCredentialStore) Put(ctx context.Context, shop string, accessToken string) error {
	now := time.Now()
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shop": shop}
	update := bson.M{
		"$set": bson.M{
			"shop":        shop,
			"accessToken": accessToken,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}
