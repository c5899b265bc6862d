package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bookingRepo "bengkelbot/database/repository/booking"
	"bengkelbot/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memBookingRepo struct {
	byID   map[string]*models.Booking
	byDate map[string][]models.Booking
}

func (r *memBookingRepo) Create(ctx context.Context, booking *models.Booking) (string, error) {
	return booking.ID, nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := r.byID[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", bookingRepo.ErrBookingNotFound, id)
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	b, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", bookingRepo.ErrBookingNotFound, id)
	}
	b.Status = status
	return nil
}

func (r *memBookingRepo) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	return r.byDate[date], nil
}

func (r *memBookingRepo) ActiveOnDate(ctx context.Context, date string) ([]models.Booking, error) {
	return nil, nil
}

func (r *memBookingRepo) ActiveByCategoryOnDate(ctx context.Context, category, date string) ([]models.Booking, error) {
	return nil, nil
}

func (r *memBookingRepo) ActiveByCategoryStartingBefore(ctx context.Context, category, before string) ([]models.Booking, error) {
	return nil, nil
}

// recordingEngine captures the request the handler forwards so tests can
// assert on what the engine actually received.
type recordingEngine struct {
	lastReq *models.BookingRequest
}

func (e *recordingEngine) CheckAvailability(ctx context.Context, req models.BookingRequest) (*models.AvailabilityResult, error) {
	e.lastReq = &req
	return &models.AvailabilityResult{Available: true}, nil
}

func (e *recordingEngine) FindNextAvailable(ctx context.Context, req models.BookingRequest) (*models.NextSlot, error) {
	return nil, nil
}

func (e *recordingEngine) Commit(ctx context.Context, req models.BookingRequest) (string, error) {
	return "", nil
}

func newBookingRouter(repo *memBookingRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hb := &HandlerBundle{BookingRepo: repo, Logger: zap.NewNop()}
	r := gin.New()
	r.GET("/api/bookings", hb.ListBookingsHandler)
	r.GET("/api/bookings/:id", hb.GetBookingHandler)
	r.PATCH("/api/bookings/:id/status", hb.UpdateBookingStatusHandler)
	return r
}

func newAvailabilityRouter(engine *recordingEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hb := &HandlerBundle{Engine: engine, Logger: zap.NewNop()}
	r := gin.New()
	r.POST("/api/bookings/availability", hb.CheckAvailabilityHandler)
	return r
}

func seedRepo() *memBookingRepo {
	b := &models.Booking{
		ID:             "bk-1",
		CustomerNumber: "628111",
		Service:        "Repaint Full Body",
		Date:           "2025-06-12",
		Time:           "09:00",
		Status:         models.StatusPending,
	}
	return &memBookingRepo{
		byID:   map[string]*models.Booking{"bk-1": b},
		byDate: map[string][]models.Booking{"2025-06-12": {*b}},
	}
}

func TestListBookingsRequiresDate(t *testing.T) {
	router := newBookingRouter(seedRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBookingsByDate(t *testing.T) {
	router := newBookingRouter(seedRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings?date=2025-06-12", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Date     string           `json:"date"`
		Bookings []models.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-12", body.Date)
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, "bk-1", body.Bookings[0].ID)
}

func TestGetBookingNotFound(t *testing.T) {
	router := newBookingRouter(seedRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBookingStatus(t *testing.T) {
	repo := seedRepo()
	router := newBookingRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/bk-1/status",
		strings.NewReader(`{"status": "confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusConfirmed, repo.byID["bk-1"].Status)
}

func TestCheckAvailabilityRejectsGarbageDate(t *testing.T) {
	engine := &recordingEngine{}
	router := newAvailabilityRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/availability",
		strings.NewReader(`{"service": "Ganti Oli", "date": "kapan-kapan", "time": "10:00", "duration_minutes": 60}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, engine.lastReq, "an unparseable date must never reach the engine")
}

func TestCheckAvailabilityNormalizesDateAndTime(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC) }
	defer func() { timeNow = restore }()

	engine := &recordingEngine{}
	router := newAvailabilityRouter(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/availability",
		strings.NewReader(`{"service": "Ganti Oli", "date": "lusa", "time": "jam 9", "duration_minutes": 60}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, engine.lastReq)
	assert.Equal(t, "2025-06-12", engine.lastReq.Date)
	assert.Equal(t, "09:00", engine.lastReq.Time)
}

func TestUpdateBookingStatusRejectsUnknownStatus(t *testing.T) {
	repo := seedRepo()
	router := newBookingRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/bk-1/status",
		strings.NewReader(`{"status": "teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusPending, repo.byID["bk-1"].Status)
}
