package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	tableerrors "reservio/internal/tables/errors"
	"reservio/internal/tables/repository"
	"reservio/internal/tables/validator"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/model"
)

// TableService manages the floor catalog. Mutations are restricted to
// privileged callers; reads are open to everyone.
type TableService interface {
	Create(ctx context.Context, table *model.Table, privileged bool) (*model.Table, error)
	GetByID(ctx context.Context, id string) (*model.Table, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Table, int64, error)
	GetByMinSeats(ctx context.Context, minSeats int) ([]*model.Table, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, update *model.TableUpdate, privileged bool) error
	Delete(ctx context.Context, id string, privileged bool) error
}

type tableService struct {
	repo      repository.TableRepository
	validator *validator.TableValidator
	cfg       *config.Config
}

func NewTableService(repo repository.TableRepository, validator *validator.TableValidator, cfg *config.Config) TableService {
	return &tableService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tableService) Create(ctx context.Context, table *model.Table, privileged bool) (*model.Table, error) {
	if !privileged {
		return nil, apperrors.Forbidden("Managing tables requires a privileged caller")
	}

	table.Name = strings.TrimSpace(table.Name)
	if err := s.validator.Validate(table); err != nil {
		return nil, s.validationError(err)
	}

	if err := s.repo.Create(ctx, table); err != nil {
		if errors.Is(err, tableerrors.ErrDuplicateName) {
			return nil, apperrors.Conflict("A table with this name already exists")
		}
		return nil, apperrors.Internal("Failed to create table", err)
	}

	s.cfg.Log.Info("Table created", "id", table.ID, "name", table.Name, "seats", table.Seats)
	return table, nil
}

func (s *tableService) GetByID(ctx context.Context, id string) (*model.Table, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Table ID cannot be empty")
	}

	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tableerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Table", id)
		}
		if errors.Is(err, tableerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid table ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve table", err)
	}
	return table, nil
}

func (s *tableService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Table, int64, error) {
	var count int64
	var tables []*model.Table
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count tables", "error", errCount)
			errCount = apperrors.Internal("Failed to count tables", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		tables, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list tables", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve tables", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return tables, count, nil
}

func (s *tableService) GetByMinSeats(ctx context.Context, minSeats int) ([]*model.Table, error) {
	if minSeats < 0 {
		return nil, apperrors.InvalidInput("Party size cannot be negative")
	}

	tables, err := s.repo.FindByMinSeats(ctx, minSeats)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve tables", err)
	}
	return tables, nil
}

func (s *tableService) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

func (s *tableService) Update(ctx context.Context, id string, update *model.TableUpdate, privileged bool) error {
	if !privileged {
		return apperrors.Forbidden("Managing tables requires a privileged caller")
	}
	if id == "" {
		return apperrors.InvalidInput("Table ID cannot be empty")
	}

	update.Name = strings.TrimSpace(update.Name)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return s.validationError(err)
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		switch {
		case errors.Is(err, tableerrors.ErrNotFound):
			return apperrors.NotFoundWithID("Table", id)
		case errors.Is(err, tableerrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid table ID format")
		case errors.Is(err, tableerrors.ErrDuplicateName):
			return apperrors.Conflict("A table with this name already exists")
		}
		return apperrors.Internal("Failed to update table", err)
	}

	s.cfg.Log.Info("Table updated", "id", id)
	return nil
}

func (s *tableService) Delete(ctx context.Context, id string, privileged bool) error {
	if !privileged {
		return apperrors.Forbidden("Managing tables requires a privileged caller")
	}
	if id == "" {
		return apperrors.InvalidInput("Table ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, tableerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Table", id)
		}
		if errors.Is(err, tableerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid table ID format")
		}
		return apperrors.Internal("Failed to delete table", err)
	}

	s.cfg.Log.Info("Table deleted", "id", id)
	return nil
}

func (s *tableService) validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]any, len(validationErrs))
		for _, verr := range validationErrs {
			details[verr.Field] = verr.Message
		}
		return apperrors.Validation("Table validation failed", details)
	}
	return apperrors.Internal("Failed to validate table", err)
}
