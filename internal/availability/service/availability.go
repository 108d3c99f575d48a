package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/interval"
	"reservio/pkg/model"
)

// tableFanOutLimit caps concurrent per-table projections when answering for
// the whole floor.
const tableFanOutLimit = 8

// TableSource is the slice of the tables service the projector reads.
type TableSource interface {
	GetByID(ctx context.Context, id string) (*model.Table, error)
	GetByMinSeats(ctx context.Context, minSeats int) ([]*model.Table, error)
}

// ReservationSource yields the active reservations blocking a table within a
// window.
type ReservationSource interface {
	FindActiveForTableBetween(ctx context.Context, tableID string, from, to time.Time) ([]*model.Reservation, error)
}

// AvailabilityService is a read-only projection over tables and
// reservations. It never mutates state and never takes a lease; answers can
// go stale the moment they are produced.
type AvailabilityService interface {
	ListSlots(ctx context.Context, tableID string, day time.Time, durationMin int) ([]model.Slot, error)
	ListByTable(ctx context.Context, day time.Time, partySize, durationMin int) ([]model.TableAvailability, error)
}

type availabilityService struct {
	tables       TableSource
	reservations ReservationSource
	cfg          *config.Config
}

func NewAvailabilityService(tables TableSource, reservations ReservationSource, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		tables:       tables,
		reservations: reservations,
		cfg:          cfg,
	}
}

// ListSlots enumerates the free slots of one table for one venue-local day.
func (s *availabilityService) ListSlots(ctx context.Context, tableID string, day time.Time, durationMin int) ([]model.Slot, error) {
	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}

	duration, err := s.resolveDuration(durationMin)
	if err != nil {
		return nil, err
	}

	open, close, err := s.dayWindow(day)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.FindActiveForTableBetween(ctx, tableID, open, close)
	if err != nil {
		return nil, apperrors.Internal("Failed to load reservations for availability", err)
	}

	step := time.Duration(s.cfg.SlotStepMin) * time.Minute
	return projectSlots(open, close, step, duration, reservations), nil
}

// ListByTable answers for the whole floor, one entry per table that seats
// the party, tables projected concurrently.
func (s *availabilityService) ListByTable(ctx context.Context, day time.Time, partySize, durationMin int) ([]model.TableAvailability, error) {
	if partySize < 0 {
		return nil, apperrors.InvalidInput("Party size cannot be negative")
	}

	duration, err := s.resolveDuration(durationMin)
	if err != nil {
		return nil, err
	}

	open, close, err := s.dayWindow(day)
	if err != nil {
		return nil, err
	}

	tables, err := s.tables.GetByMinSeats(ctx, partySize)
	if err != nil {
		return nil, err
	}

	step := time.Duration(s.cfg.SlotStepMin) * time.Minute
	result := make([]model.TableAvailability, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tableFanOutLimit)
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			reservations, err := s.reservations.FindActiveForTableBetween(gctx, table.ID, open, close)
			if err != nil {
				return apperrors.Internal("Failed to load reservations for availability", err)
			}
			result[i] = model.TableAvailability{
				TableID: table.ID,
				Name:    table.Name,
				Seats:   table.Seats,
				Slots:   projectSlots(open, close, step, duration, reservations),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *availabilityService) resolveDuration(durationMin int) (time.Duration, error) {
	if durationMin < 0 {
		return 0, apperrors.InvalidInput("Duration cannot be negative")
	}
	if durationMin == 0 {
		durationMin = s.cfg.DefaultDurationMin
	}
	return time.Duration(durationMin) * time.Minute, nil
}

// dayWindow resolves the venue's opening window for the given calendar day
// to UTC instants. The day's year, month and date are read as venue-local.
func (s *availabilityService) dayWindow(day time.Time) (time.Time, time.Time, error) {
	openHour, openMin, err := parseWallClock(s.cfg.OpenOfDay)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Internal("Invalid opening time configuration", err)
	}
	closeHour, closeMin, err := parseWallClock(s.cfg.CloseOfDay)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Internal("Invalid closing time configuration", err)
	}

	openWall := time.Date(day.Year(), day.Month(), day.Day(), openHour, openMin, 0, 0, time.UTC)
	closeWall := time.Date(day.Year(), day.Month(), day.Day(), closeHour, closeMin, 0, 0, time.UTC)

	open, err := interval.NormalizeToUTC(openWall, s.cfg.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Internal("Failed to resolve venue timezone", err)
	}
	close, err := interval.NormalizeToUTC(closeWall, s.cfg.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Internal("Failed to resolve venue timezone", err)
	}

	if !close.After(open) {
		return time.Time{}, time.Time{}, apperrors.Internal("Opening window is empty",
			fmt.Errorf("open %s, close %s", s.cfg.OpenOfDay, s.cfg.CloseOfDay))
	}
	return open, close, nil
}

func parseWallClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// projectSlots walks the grid from open to close in step increments and
// keeps every candidate [start, start+duration) that fits before closing
// and intersects no active reservation. Candidates touching a reservation's
// boundary survive.
func projectSlots(open, close time.Time, step, duration time.Duration, reservations []*model.Reservation) []model.Slot {
	slots := make([]model.Slot, 0)
	if step <= 0 || duration <= 0 {
		return slots
	}

	for start := open; !start.Add(duration).After(close); start = start.Add(step) {
		end := start.Add(duration)

		blocked := false
		for _, r := range reservations {
			if r.Active() && interval.Overlaps(start, end, r.StartAt, r.EndAt) {
				blocked = true
				break
			}
		}
		if !blocked {
			slots = append(slots, model.Slot{Start: start, End: end})
		}
	}
	return slots
}
