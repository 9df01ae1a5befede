package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/models"
)

func newEventRouter(db *gorm.DB) *gin.Engine {
	r := newTestRouter(db, nil, nil)
	r.GET("/v1/events", ListEvents)
	r.GET("/v1/events/:id", GetEvent)
	r.POST("/v1/events/:id/rsvp", CreateRsvp)
	r.GET("/v1/admin/events/:id/rsvps", ListEventRsvps)
	return r
}

func TestGetEventIncludesAvailability(t *testing.T) {
	db := setupTestDB(t)
	r := newEventRouter(db)

	event := createTestEvent(t, db, 100, 1500)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("tickets_sold", 40).Error)

	req := httptest.NewRequest(http.MethodGet, "/v1/events/"+event.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TicketsAvailable int  `json:"tickets_available"`
		SalesOpen        bool `json:"sales_open"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 60, resp.TicketsAvailable)
	assert.True(t, resp.SalesOpen)
}

func TestListEventsUpcomingFilter(t *testing.T) {
	db := setupTestDB(t)
	r := newEventRouter(db)

	createTestEvent(t, db, 0, 0)

	past := createTestEvent(t, db, 0, 0)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", past.ID).
		Updates(map[string]interface{}{
			"start_time": time.Now().Add(-48 * time.Hour),
			"end_time":   time.Now().Add(-44 * time.Hour),
		}).Error)

	req := httptest.NewRequest(http.MethodGet, "/v1/events?upcoming=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []models.Event `json:"events"`
		Total  int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Events, 1)
	assert.NotEqual(t, past.ID, resp.Events[0].ID)
}

func TestCreateRsvpOncePerEmail(t *testing.T) {
	db := setupTestDB(t)
	r := newEventRouter(db)

	event := createTestEvent(t, db, 0, 0)

	body, _ := json.Marshal(map[string]interface{}{
		"name":   "Avery Niles",
		"email":  "avery@example.com",
		"guests": 3,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/events/"+event.ID.String()+"/rsvp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/events/"+event.ID.String()+"/rsvp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/events/"+event.ID.String()+"/rsvps", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rsvps       []models.Rsvp `json:"rsvps"`
		TotalGuests int           `json:"total_guests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rsvps, 1)
	assert.Equal(t, 3, resp.TotalGuests)
}

func TestCreateRsvpUnknownEvent(t *testing.T) {
	db := setupTestDB(t)
	r := newEventRouter(db)

	body, _ := json.Marshal(map[string]interface{}{
		"name":  "Avery",
		"email": "avery@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/events/"+uuid.NewString()+"/rsvp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
