package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reservationerrors "reservio/internal/reservations/errors"
	"reservio/internal/reservations/repository"
	"reservio/internal/reservations/validator"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/kafka"
	"reservio/pkg/lock"
	"reservio/pkg/model"
)

// TableCatalog answers existence checks for the tables a reservation can
// claim. Implemented by the tables service.
type TableCatalog interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// EventPublisher pushes reservation lifecycle events to the broker. A nil
// publisher disables eventing; a failed publish never fails the write.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context, requesterID string, privileged bool, limit int, offset int64) ([]*model.Reservation, int64, error)
	Cancel(ctx context.Context, id, requesterID string, privileged bool) error
	HardDelete(ctx context.Context, id string, privileged bool) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	locker    lock.Locker
	tables    TableCatalog
	validator *validator.ReservationValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	locker lock.Locker,
	tables TableCatalog,
	validator *validator.ReservationValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		locker:    locker,
		tables:    tables,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create admits a reservation only while holding the exclusive lease for its
// table and interval. Inside the lease it replays idempotent retries, checks
// the table exists, and rejects any intersecting active reservation before
// inserting. The lease is released on every exit path; its TTL covers the
// crash case.
func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	s.applyDefaults(reservation)
	if err := s.validate(reservation); err != nil {
		return nil, err
	}

	reservation.StartAt = reservation.StartAt.UTC()
	reservation.EndAt = reservation.EndAt.UTC()

	key := lock.SlotKey(reservation.TableID, reservation.StartAt, reservation.EndAt)
	token, ok, err := s.locker.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		s.cfg.Log.Error("Lease store unreachable", "key", key, "error", err)
		return nil, apperrors.Unavailable("Reservation lease store", err)
	}
	if !ok {
		return nil, apperrors.Conflict("This slot is being reserved by another request, try again shortly")
	}
	defer func() {
		// Release must run even when the request context is already done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if releaseErr := s.locker.Release(releaseCtx, key, token); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lease, TTL will reclaim it",
				"key", key, "error", releaseErr)
		}
	}()

	if reservation.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, reservation.IdempotencyKey)
		if err == nil {
			s.cfg.Log.Info("Replaying reservation for repeated idempotency key",
				"id", existing.ID, "idempotency_key", reservation.IdempotencyKey)
			return existing, nil
		}
		if !errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to check idempotency key", err)
		}
	}

	exists, err := s.tables.Exists(ctx, reservation.TableID)
	if err != nil {
		return nil, apperrors.Internal("Failed to verify table", err)
	}
	if !exists {
		return nil, apperrors.NotFoundWithID("Table", reservation.TableID)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, reservation); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			if errors.Is(err, reservationerrors.ErrDuplicateKey) {
				return apperrors.Conflict("A reservation with this idempotency key already exists")
			}
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsConflict(err) {
			s.cfg.Log.Error("Failed to create reservation", "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Reservation created",
		"id", reservation.ID,
		"table_id", reservation.TableID,
		"start_at", reservation.StartAt,
		"end_at", reservation.EndAt,
	)
	s.publishEvent(ctx, kafka.EventReservationCreated, reservation)

	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}

// List scopes the result to the requester's own reservations unless the
// caller is privileged.
func (s *reservationService) List(ctx context.Context, requesterID string, privileged bool, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if !privileged && requesterID == "" {
		return nil, 0, apperrors.InvalidInput("Requester ID is required")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if privileged {
			count, errCount = s.repo.Count(ctx)
		} else {
			count, errCount = s.repo.CountByRequester(ctx, requesterID)
		}
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		if privileged {
			reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		} else {
			reservations, errFind = s.repo.FindByRequester(ctx, requesterID, limit, offset)
		}
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// Cancel flips the reservation to cancelled, freeing its interval for new
// bookings. Only the owner or a privileged caller may cancel; cancelling an
// already-cancelled reservation is a no-op.
func (s *reservationService) Cancel(ctx context.Context, id, requesterID string, privileged bool) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !privileged && reservation.RequesterID != requesterID {
		return apperrors.Forbidden("Only the reservation owner may cancel it")
	}

	if !reservation.Active() {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		return apperrors.Internal("Failed to cancel reservation", err)
	}

	s.cfg.Log.Info("Reservation cancelled", "id", id, "table_id", reservation.TableID)
	s.publishEvent(ctx, kafka.EventReservationCancelled, reservation)

	return nil
}

// HardDelete removes the document entirely. Privileged callers only; regular
// cleanup goes through Cancel.
func (s *reservationService) HardDelete(ctx context.Context, id string, privileged bool) error {
	if !privileged {
		return apperrors.Forbidden("Deleting reservations requires a privileged caller")
	}
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid reservation ID format")
		}
		return apperrors.Internal("Failed to delete reservation", err)
	}

	s.cfg.Log.Info("Reservation deleted", "id", id)
	return nil
}

func (s *reservationService) applyDefaults(reservation *model.Reservation) {
	if reservation.Status == "" {
		reservation.Status = model.StatusActive
	}
	reservation.CustomerName = strings.TrimSpace(reservation.CustomerName)
	reservation.RequesterID = strings.TrimSpace(reservation.RequesterID)
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if reservation.RequesterID == "" {
		return apperrors.InvalidInput("Requester ID is required")
	}
	if !reservation.StartAt.IsZero() && !reservation.EndAt.IsZero() &&
		!reservation.EndAt.After(reservation.StartAt) {
		return apperrors.InvalidInterval(
			fmt.Sprintf("end_at (%s) must be after start_at (%s)",
				reservation.EndAt.Format(time.RFC3339), reservation.StartAt.Format(time.RFC3339)))
	}

	if err := s.validator.Validate(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make(map[string]any, len(validationErrs))
			for _, verr := range validationErrs {
				details[verr.Field] = verr.Message
			}
			return apperrors.Validation("Reservation validation failed", details)
		}
		return apperrors.Internal("Failed to validate reservation", err)
	}
	return nil
}

// verifyNoOverlap runs inside both the lease and the transaction. The query
// matches any active reservation with start_at < end && end_at > start, the
// half-open intersection test; touching intervals pass.
func (s *reservationService) verifyNoOverlap(ctx context.Context, reservation *model.Reservation) error {
	overlapping, err := s.repo.FindOverlapping(ctx, reservation.TableID, reservation.StartAt, reservation.EndAt)
	if err != nil {
		return apperrors.Internal("Failed to check for overlapping reservations", err)
	}
	if len(overlapping) > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"Table is already reserved between %s and %s",
			overlapping[0].StartAt.Format(time.RFC3339),
			overlapping[0].EndAt.Format(time.RFC3339),
		))
	}
	return nil
}

func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewReservationMessage(kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: reservation.ID,
		TableID:       reservation.TableID,
		StartAt:       reservation.StartAt,
		EndAt:         reservation.EndAt,
		RequesterID:   reservation.RequesterID,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to encode reservation event", "type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event", "type", eventType, "error", err)
	}
}
