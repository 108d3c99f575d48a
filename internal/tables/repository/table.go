package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	tableerrors "reservio/internal/tables/errors"
	"reservio/pkg/config"
	"reservio/pkg/model"
)

const (
	collectionName = "tables"
	queryTimeout   = 5 * time.Second
)

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	FindByID(ctx context.Context, id string) (*model.Table, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Table, error)
	FindByMinSeats(ctx context.Context, minSeats int) ([]*model.Table, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, update *model.TableUpdate) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type tableRepository struct {
	collection *mongo.Collection
}

func NewTableRepository(cfg *config.Config) TableRepository {
	return &tableRepository{
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(collectionName),
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if table.ID == "" {
		table.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, table)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tableerrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert table: %w", err)
	}
	return nil
}

func (r *tableRepository) FindByID(ctx context.Context, id string) (*model.Table, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, tableerrors.ErrInvalidID
	}

	var table model.Table
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, tableerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find table %s: %w", id, err)
	}
	return &table, nil
}

func (r *tableRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Table, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer cursor.Close(ctx)

	tables := make([]*model.Table, 0)
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}
	return tables, nil
}

func (r *tableRepository) FindByMinSeats(ctx context.Context, minSeats int) ([]*model.Table, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if minSeats > 0 {
		filter["seats"] = bson.M{"$gte": minSeats}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables by seats: %w", err)
	}
	defer cursor.Close(ctx)

	tables := make([]*model.Table, 0)
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}
	return tables, nil
}

func (r *tableRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return false, nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

func (r *tableRepository) Update(ctx context.Context, id string, update *model.TableUpdate) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return tableerrors.ErrInvalidID
	}

	fields := bson.M{}
	if update.Name != "" {
		fields["name"] = update.Name
	}
	if update.Seats != nil {
		fields["seats"] = *update.Seats
	}
	if len(fields) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tableerrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to update table %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return tableerrors.ErrNotFound
	}
	return nil
}

func (r *tableRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return tableerrors.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete table %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return tableerrors.ErrNotFound
	}
	return nil
}

func (r *tableRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tables: %w", err)
	}
	return count, nil
}
