package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when an id has no matching document.
var ErrNotFound = errors.New("document not found")

const opTimeout = 8 * time.Second

// Mongo wraps the client and database handle shared by the report stores.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	start := time.Now()
	log.Info().Str("uri", redactURI(uri)).Str("db", dbName).Msg("Connecting to MongoDB...")

	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(dctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info().
		Dur("took", time.Since(start).Round(time.Millisecond)).
		Msg("MongoDB connected")

	return &Mongo{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// HealthCheck verifies the MongoDB connection.
func (m *Mongo) HealthCheck(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo health check failed: %w", err)
	}
	return nil
}

// redactURI masks credentials before the URI reaches the logs.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}

// ensureCreatedAtIndex creates a descending createdAt index, warning rather
// than failing when index creation is not possible.
func ensureCreatedAtIndex(col *mongo.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		log.Warn().Err(err).Str("collection", col.Name()).Msg("Failed to create createdAt index")
	}
}

// parseObjectID maps malformed hex ids onto ErrNotFound so callers see the
// same outcome as for an absent document.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func sanitizeSet(set bson.M) bson.M {
	set["updatedAt"] = time.Now().UTC()
	return set
}

func setString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = strings.TrimSpace(*v)
	}
}

func setTime(set bson.M, key string, v *time.Time) {
	if v != nil {
		set[key] = *v
	}
}
