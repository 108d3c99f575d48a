package service

import (
	"context"
	"testing"
	"time"

	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type mockTableSource struct {
	getByIDFunc       func(ctx context.Context, id string) (*model.Table, error)
	getByMinSeatsFunc func(ctx context.Context, minSeats int) ([]*model.Table, error)
}

func (m *mockTableSource) GetByID(ctx context.Context, id string) (*model.Table, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Table{ID: id, Name: "Window 2", Seats: 4}, nil
}

func (m *mockTableSource) GetByMinSeats(ctx context.Context, minSeats int) ([]*model.Table, error) {
	if m.getByMinSeatsFunc != nil {
		return m.getByMinSeatsFunc(ctx, minSeats)
	}
	return []*model.Table{}, nil
}

type mockReservationSource struct {
	reservations map[string][]*model.Reservation
}

func (m *mockReservationSource) FindActiveForTableBetween(ctx context.Context, tableID string, from, to time.Time) ([]*model.Reservation, error) {
	return m.reservations[tableID], nil
}

func newAvailabilityService(tables *mockTableSource, reservations *mockReservationSource) AvailabilityService {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{
		Log:                log,
		Timezone:           "UTC",
		OpenOfDay:          "12:00",
		CloseOfDay:         "22:00",
		SlotStepMin:        15,
		DefaultDurationMin: 60,
	}
	return NewAvailabilityService(tables, reservations, cfg)
}

const testTableID = "507f1f77bcf86cd799439011"

func utc(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

func hasSlot(slots []model.Slot, start time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return true
		}
	}
	return false
}

func TestListSlotsExcludesOverlapsKeepsTouching(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	reservations := &mockReservationSource{
		reservations: map[string][]*model.Reservation{
			testTableID: {
				{
					TableID: testTableID,
					StartAt: utc(day, 13, 0),
					EndAt:   utc(day, 14, 0),
					Status:  model.StatusActive,
				},
			},
		},
	}

	svc := newAvailabilityService(&mockTableSource{}, reservations)
	slots, err := svc.ListSlots(context.Background(), testTableID, day, 60)
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}

	// [12:00, 13:00) ends exactly where the booking starts, must survive.
	if !hasSlot(slots, utc(day, 12, 0)) {
		t.Error("slot touching the booking's start should be free")
	}
	// [14:00, 15:00) starts exactly where the booking ends, must survive.
	if !hasSlot(slots, utc(day, 14, 0)) {
		t.Error("slot touching the booking's end should be free")
	}

	// Every start in (12:00, 14:00) intersects [13:00, 14:00).
	for _, blocked := range []time.Time{
		utc(day, 12, 15), utc(day, 12, 30), utc(day, 12, 45),
		utc(day, 13, 0), utc(day, 13, 30), utc(day, 13, 45),
	} {
		if hasSlot(slots, blocked) {
			t.Errorf("slot starting %s overlaps the booking and must be excluded", blocked.Format("15:04"))
		}
	}

	// Last admissible start keeps the full duration before closing.
	if !hasSlot(slots, utc(day, 21, 0)) {
		t.Error("last slot [21:00, 22:00) should be free")
	}
	if hasSlot(slots, utc(day, 21, 15)) {
		t.Error("slot running past closing time must be excluded")
	}
}

func TestListSlotsFullyOpenDay(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	svc := newAvailabilityService(&mockTableSource{}, &mockReservationSource{})
	slots, err := svc.ListSlots(context.Background(), testTableID, day, 60)
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}

	// 12:00 through 21:00 inclusive on a 15-minute grid.
	if len(slots) != 37 {
		t.Errorf("expected 37 free slots on an empty day, got %d", len(slots))
	}
}

func TestListSlotsCancelledReservationDoesNotBlock(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	reservations := &mockReservationSource{
		reservations: map[string][]*model.Reservation{
			testTableID: {
				{
					TableID: testTableID,
					StartAt: utc(day, 13, 0),
					EndAt:   utc(day, 14, 0),
					Status:  model.StatusCancelled,
				},
			},
		},
	}

	svc := newAvailabilityService(&mockTableSource{}, reservations)
	slots, err := svc.ListSlots(context.Background(), testTableID, day, 60)
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}

	if !hasSlot(slots, utc(day, 13, 0)) {
		t.Error("cancelled reservations must not block slots")
	}
}

func TestListSlotsUnknownTablePropagatesError(t *testing.T) {
	tables := &mockTableSource{
		getByIDFunc: func(ctx context.Context, id string) (*model.Table, error) {
			return nil, apperrors.NotFoundWithID("Table", id)
		},
	}

	svc := newAvailabilityService(tables, &mockReservationSource{})
	_, err := svc.ListSlots(context.Background(), testTableID, time.Now(), 60)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND for unknown table, got %v", err)
	}
}

func TestListByTableFiltersByPartySize(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tables := &mockTableSource{
		getByMinSeatsFunc: func(ctx context.Context, minSeats int) ([]*model.Table, error) {
			if minSeats != 6 {
				t.Errorf("expected party size 6 forwarded, got %d", minSeats)
			}
			return []*model.Table{
				{ID: testTableID, Name: "Banquet", Seats: 8},
			}, nil
		},
	}

	svc := newAvailabilityService(tables, &mockReservationSource{})
	result, err := svc.ListByTable(context.Background(), day, 6, 60)
	if err != nil {
		t.Fatalf("ListByTable failed: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 table, got %d", len(result))
	}
	if result[0].TableID != testTableID || result[0].Seats != 8 {
		t.Errorf("unexpected table in result: %+v", result[0])
	}
	if len(result[0].Slots) == 0 {
		t.Error("expected free slots for the unbooked table")
	}
}

func TestListByTablePreservesCatalogOrder(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	catalog := []*model.Table{
		{ID: "507f1f77bcf86cd799439011", Name: "A", Seats: 2},
		{ID: "507f1f77bcf86cd799439012", Name: "B", Seats: 4},
		{ID: "507f1f77bcf86cd799439013", Name: "C", Seats: 6},
	}
	tables := &mockTableSource{
		getByMinSeatsFunc: func(ctx context.Context, minSeats int) ([]*model.Table, error) {
			return catalog, nil
		},
	}

	svc := newAvailabilityService(tables, &mockReservationSource{})
	result, err := svc.ListByTable(context.Background(), day, 0, 60)
	if err != nil {
		t.Fatalf("ListByTable failed: %v", err)
	}

	for i, entry := range result {
		if entry.TableID != catalog[i].ID {
			t.Errorf("result order differs from catalog at %d: %s vs %s", i, entry.TableID, catalog[i].ID)
		}
	}
}

func TestListSlotsRejectsNegativeDuration(t *testing.T) {
	svc := newAvailabilityService(&mockTableSource{}, &mockReservationSource{})

	_, err := svc.ListSlots(context.Background(), testTableID, time.Now(), -30)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestProjectSlotsVenueTimezoneWindow(t *testing.T) {
	// Venue in Warsaw on a summer day: 12:00 local opening is 10:00 UTC.
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{
		Log:                log,
		Timezone:           "Europe/Warsaw",
		OpenOfDay:          "12:00",
		CloseOfDay:         "22:00",
		SlotStepMin:        15,
		DefaultDurationMin: 60,
	}
	svc := NewAvailabilityService(&mockTableSource{}, &mockReservationSource{}, cfg)

	day := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	slots, err := svc.ListSlots(context.Background(), testTableID, day, 60)
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}

	want := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(want) {
		t.Errorf("expected first slot at %s, got %s", want, slots[0].Start)
	}
}
