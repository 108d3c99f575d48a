package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	httputil "reservio/pkg/http"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type mockReservationService struct {
	createFunc func(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	cancelFunc func(ctx context.Context, id, requesterID string, privileged bool) error
}

func (m *mockReservationService) Create(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	r.ID = "507f1f77bcf86cd799439099"
	return r, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, apperrors.NotFoundWithID("Reservation", id)
}

func (m *mockReservationService) List(ctx context.Context, requesterID string, privileged bool, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return []*model.Reservation{}, 0, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id, requesterID string, privileged bool) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, requesterID, privileged)
	}
	return nil
}

func (m *mockReservationService) HardDelete(ctx context.Context, id string, privileged bool) error {
	return nil
}

func newTestHandler(svc *mockReservationService) *ReservationHandler {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{
		Log:      log,
		Timezone: "Europe/Warsaw",
	}
	return NewReservationHandler(svc, cfg)
}

func postReservation(t *testing.T, h *ReservationHandler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httputil.HeaderRequesterID, "user-1")

	rec := httptest.NewRecorder()
	h.Create(rec, req, nil)
	return rec
}

func TestCreateParsesRFC3339Timestamps(t *testing.T) {
	var captured *model.Reservation
	svc := &mockReservationService{
		createFunc: func(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
			captured = r
			return r, nil
		},
	}
	h := newTestHandler(svc)

	rec := postReservation(t, h, map[string]any{
		"table_id":      "507f1f77bcf86cd799439011",
		"start_at":      "2026-09-01T18:00:00+02:00",
		"end_at":        "2026-09-01T19:00:00+02:00",
		"customer_name": "Anna Kowalska",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	want := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	if !captured.StartAt.Equal(want) {
		t.Errorf("expected start_at normalized to %s, got %s", want, captured.StartAt)
	}
	if captured.RequesterID != "user-1" {
		t.Errorf("expected requester from header, got %q", captured.RequesterID)
	}
}

func TestCreateResolvesNaiveWallTimeAgainstVenueZone(t *testing.T) {
	var captured *model.Reservation
	svc := &mockReservationService{
		createFunc: func(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
			captured = r
			return r, nil
		},
	}
	h := newTestHandler(svc)

	// Warsaw summer time is UTC+2, so 18:00 local is 16:00Z.
	rec := postReservation(t, h, map[string]any{
		"table_id":      "507f1f77bcf86cd799439011",
		"start_at":      "2026-09-01T18:00",
		"end_at":        "2026-09-01T19:00",
		"customer_name": "Anna Kowalska",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	want := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	if !captured.StartAt.Equal(want) {
		t.Errorf("expected naive 18:00 to resolve to %s, got %s", want, captured.StartAt)
	}
}

func TestCreateRejectsUnparseableTime(t *testing.T) {
	h := newTestHandler(&mockReservationService{})

	rec := postReservation(t, h, map[string]any{
		"table_id":      "507f1f77bcf86cd799439011",
		"start_at":      "tomorrow at six",
		"end_at":        "2026-09-01T19:00",
		"customer_name": "Anna Kowalska",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unparseable time, got %d", rec.Code)
	}
}

func TestCreateMapsConflictToHTTP409(t *testing.T) {
	svc := &mockReservationService{
		createFunc: func(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
			return nil, apperrors.Conflict("Table is already reserved for this time")
		},
	}
	h := newTestHandler(svc)

	rec := postReservation(t, h, map[string]any{
		"table_id":      "507f1f77bcf86cd799439011",
		"start_at":      "2026-09-01T18:00",
		"end_at":        "2026-09-01T19:00",
		"customer_name": "Anna Kowalska",
	})

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for conflict, got %d", rec.Code)
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Create(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}
