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

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

func newSocialRouter(db *gorm.DB) *gin.Engine {
	r := newTestRouter(db, nil, nil)
	r.GET("/v1/admin/social-media/connections/:id/posts", ListConnectionPosts)
	r.POST("/v1/admin/social-media/connections/:id/import", ImportConnectionPosts)
	return r
}

func createTestConnection(t *testing.T, db *gorm.DB, expiresAt time.Time, active bool) models.SocialMediaConnection {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret")

	encrypted, err := helpers.EncryptToken("long-lived-token")
	require.NoError(t, err)

	connection := models.SocialMediaConnection{
		Platform:       models.PlatformInstagram,
		AccountID:      "17841400000000001",
		AccountName:    "oakcrestpto",
		AccessToken:    encrypted,
		TokenExpiresAt: expiresAt,
		IsActive:       active,
		UserID:         uuid.New(),
	}
	require.NoError(t, db.Create(&connection).Error)
	return connection
}

func TestListConnectionPostsExpiredTokenDeactivates(t *testing.T) {
	db := setupTestDB(t)
	r := newSocialRouter(db)

	connection := createTestConnection(t, db, time.Now().Add(-24*time.Hour), true)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/social-media/connections/"+connection.ID.String()+"/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")

	var updated models.SocialMediaConnection
	require.NoError(t, db.Where("id = ?", connection.ID).First(&updated).Error)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Token expired", updated.LastError)
}

func TestListConnectionPostsInactiveConnection(t *testing.T) {
	db := setupTestDB(t)
	r := newSocialRouter(db)

	connection := createTestConnection(t, db, time.Now().Add(24*time.Hour), false)

	// An inactive connection must round-trip as inactive; a column default
	// would swallow the false on insert.
	var stored models.SocialMediaConnection
	require.NoError(t, db.Where("id = ?", connection.ID).First(&stored).Error)
	require.False(t, stored.IsActive)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/social-media/connections/"+connection.ID.String()+"/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "inactive")
}

func TestListConnectionPostsUnknownConnection(t *testing.T) {
	db := setupTestDB(t)
	r := newSocialRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/social-media/connections/"+uuid.NewString()+"/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportConnectionPostsDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	r := newSocialRouter(db)

	connection := createTestConnection(t, db, time.Now().Add(24*time.Hour), true)

	album := models.PhotoAlbum{Title: "Fall Carnival 2026"}
	require.NoError(t, db.Create(&album).Error)

	// One of the two posts was imported previously.
	existingPhoto := models.Photo{
		AlbumID:     album.ID,
		ExternalURL: "https://cdn.example.com/media/1.jpg",
		Source:      models.PlatformInstagram,
	}
	require.NoError(t, db.Create(&existingPhoto).Error)
	require.NoError(t, db.Create(&models.SocialMediaImport{
		ConnectionID:   connection.ID,
		ExternalPostID: "post_1",
		PhotoID:        existingPhoto.ID,
	}).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"album_id": album.ID,
		"posts": []map[string]string{
			{"id": "post_1", "media_url": "https://cdn.example.com/media/1.jpg"},
			{"id": "post_2", "media_url": "https://cdn.example.com/media/2.jpg", "caption": "Bake sale table"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/social-media/connections/"+connection.ID.String()+"/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["imported"])
	assert.Equal(t, 1, resp["skipped"])

	var photos int64
	db.Model(&models.Photo{}).Where("album_id = ?", album.ID).Count(&photos)
	assert.Equal(t, int64(2), photos)

	var imported models.Photo
	require.NoError(t, db.Where("external_url = ?", "https://cdn.example.com/media/2.jpg").First(&imported).Error)
	assert.Equal(t, models.PlatformInstagram, imported.Source)
	assert.Equal(t, "Bake sale table", imported.Caption)
}
