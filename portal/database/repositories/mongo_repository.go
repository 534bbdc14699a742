package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wagus-labs/agent-portal/portal/database/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoSnapshotCollection = "economic_snapshots"
	mongoHistoryCollection  = "token_price_history"
)

type mongoRepository struct {
	snapshots *mongo.Collection
	history   *mongo.Collection
}

// NewMongoRepository stores snapshots and the price ledger in two
// collections of db and makes sure the timestamp indexes exist.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (EconomyRepository, error) {
	r := &mongoRepository{
		snapshots: db.Collection(mongoSnapshotCollection),
		history:   db.Collection(mongoHistoryCollection),
	}

	if _, err := r.snapshots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}); err != nil {
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}
	if _, err := r.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	}); err != nil {
		return nil, fmt.Errorf("failed to create price history index: %w", err)
	}

	return r, nil
}

func (r *mongoRepository) SaveSnapshot(ctx context.Context, snapshot *models.EconomicSnapshot) error {
	snapshot.CreatedAt = time.Now()
	if _, err := r.snapshots.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert economic snapshot: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetLatestSnapshot(ctx context.Context) (*models.EconomicSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	snapshot := new(models.EconomicSnapshot)
	if err := r.snapshots.FindOne(ctx, bson.D{}, opts).Decode(snapshot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return snapshot, nil
}

func (r *mongoRepository) RecordPrice(ctx context.Context, record *models.TokenPriceHistory) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if _, err := r.history.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert price history: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetPriceHistory(ctx context.Context, since time.Time, limit int) ([]*models.TokenPriceHistory, error) {
	if limit <= 0 {
		return []*models.TokenPriceHistory{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.history.Find(ctx, bson.M{"timestamp": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	defer cursor.Close(ctx)

	history := []*models.TokenPriceHistory{}
	if err := cursor.All(ctx, &history); err != nil {
		return nil, fmt.Errorf("failed to decode price history: %w", err)
	}

	reverse(history)
	return history, nil
}
