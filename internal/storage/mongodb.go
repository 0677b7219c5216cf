package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MereWhiplash/neurocat/internal/types"
)

// MongoDB implements Storage using a MongoDB collection
type MongoDB struct {
	client     *mongo.Client
	db         *mongo.Database
	embeddings *mongo.Collection
}

// embeddingDoc is the MongoDB document structure
type embeddingDoc struct {
	Word      string    `bson:"word"`
	Embedding []byte    `bson:"embedding"` // float16, little-endian
	Dimension int       `bson:"dim"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoDB creates a new MongoDB storage
func NewMongoDB(ctx context.Context, uri, database string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	m := &MongoDB{
		client:     client,
		db:         db,
		embeddings: db.Collection("embeddings"),
	}

	if err := m.initIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return m, nil
}

func (m *MongoDB) initIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "word", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := m.embeddings.Indexes().CreateMany(ctx, indexes)
	return err
}

func (m *MongoDB) Close() error {
	return m.client.Disconnect(context.Background())
}

func (m *MongoDB) Insert(ctx context.Context, word string, embedding []float32) error {
	key := Key(word)
	doc := embeddingDoc{
		Word:      key,
		Embedding: EncodeHalf(embedding),
		Dimension: len(embedding),
		CreatedAt: time.Now(),
	}

	if _, err := m.embeddings.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicate(key)
		}
		return fmt.Errorf("failed to insert embedding: %w", err)
	}
	return nil
}

func (m *MongoDB) Lookup(ctx context.Context, word string) ([]float32, bool, error) {
	var doc embeddingDoc
	err := m.embeddings.FindOne(ctx, bson.M{"word": Key(word)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lookup word: %w", err)
	}

	emb, err := DecodeHalf(doc.Embedding)
	if err != nil {
		return nil, false, err
	}
	return emb, true, nil
}

func (m *MongoDB) Stats(ctx context.Context) (*types.StoreStats, error) {
	count, err := m.embeddings.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}
	stats := &types.StoreStats{Driver: "mongodb", Words: count}

	if count > 0 {
		var doc embeddingDoc
		if err := m.embeddings.FindOne(ctx, bson.D{}).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to read dimension: %w", err)
		}
		stats.Dimension = doc.Dimension
	}
	return stats, nil
}
