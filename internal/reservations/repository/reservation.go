package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationerrors "reservio/internal/reservations/errors"
	"reservio/pkg/config"
	mongotx "reservio/pkg/db/mongo"
	"reservio/pkg/model"
)

const (
	collectionName = "reservations"
	queryTimeout   = 5 * time.Second
)

// ReservationRepository is the persistence boundary for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	FindByRequester(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.Reservation, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Reservation, error)
	FindOverlapping(ctx context.Context, tableID string, start, end time.Time) ([]*model.Reservation, error)
	FindActiveForTableBetween(ctx context.Context, tableID string, from, to time.Time) ([]*model.Reservation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByRequester(ctx context.Context, requesterID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type reservationRepository struct {
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewReservationRepository(cfg *config.Config) ReservationRepository {
	client := cfg.Client.Mongo
	return &reservationRepository{
		collection: client.Database(cfg.MongoDatabaseName).Collection(collectionName),
		txManager:  mongotx.NewTransactionManager(client),
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if reservation.ID == "" {
		reservation.ID = primitive.NewObjectID().Hex()
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reservationerrors.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, reservationerrors.ErrInvalidID
	}

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation %s: %w", id, err)
	}
	return &reservation, nil
}

func (r *reservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *reservationRepository) FindByRequester(ctx context.Context, requesterID string, limit int, offset int64) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"requester_id": requesterID}, limit, offset)
}

func (r *reservationRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := make([]*model.Reservation, 0)
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&reservation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &reservation, nil
}

// FindOverlapping returns active reservations on the table whose half-open
// interval intersects [start, end). Touching endpoints do not match.
func (r *reservationRepository) FindOverlapping(ctx context.Context, tableID string, start, end time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"table_id": tableID,
		"status":   model.StatusActive,
		"start_at": bson.M{"$lt": end},
		"end_at":   bson.M{"$gt": start},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := make([]*model.Reservation, 0)
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) FindActiveForTableBetween(ctx context.Context, tableID string, from, to time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"table_id": tableID,
		"status":   model.StatusActive,
		"start_at": bson.M{"$lt": to},
		"end_at":   bson.M{"$gt": from},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations for table %s: %w", tableID, err)
	}
	defer cursor.Close(ctx)

	reservations := make([]*model.Reservation, 0)
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations for table %s: %w", tableID, err)
	}
	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return reservationerrors.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return reservationerrors.ErrNotFound
	}
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return reservationerrors.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete reservation %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return reservationerrors.ErrNotFound
	}
	return nil
}

func (r *reservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *reservationRepository) CountByRequester(ctx context.Context, requesterID string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"requester_id": requesterID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *reservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
