package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

func adminRedirect(c *gin.Context, params url.Values) {
	adminURL := os.Getenv("ADMIN_BASE_URL")
	if adminURL == "" {
		adminURL = os.Getenv("SITE_BASE_URL") + "/admin"
	}
	c.Redirect(http.StatusFound, adminURL+"/social-media?"+params.Encode())
}

// GetSocialConnectURL returns the provider authorize URL for the admin UI.
// The signed-in user's id rides along as the OAuth state so the callback can
// attribute the connection.
func GetSocialConnectURL(c *gin.Context) {
	platform := c.Param("platform")
	client := middleware.GetSocialClient(c, platform)
	if client == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Unknown social media platform.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": client.AuthorizeURL(userID.(uuid.UUID).String()),
	})
}

// SocialCallback finishes the OAuth flow: code exchange, long-lived token
// upgrade, account identity, encrypted upsert. The browser lands back on the
// admin UI with success or error query params; there is no JSON body.
func SocialCallback(c *gin.Context) {
	platform := c.Param("platform")
	logger := middleware.GetLogger(c)

	if oauthErr := c.Query("error"); oauthErr != "" {
		adminRedirect(c, url.Values{"error": {oauthErr}})
		return
	}
	code := c.Query("code")
	if code == "" {
		adminRedirect(c, url.Values{"error": {"missing authorization code"}})
		return
	}

	client := middleware.GetSocialClient(c, platform)
	if client == nil {
		adminRedirect(c, url.Values{"error": {"unknown platform"}})
		return
	}

	userID, err := uuid.Parse(c.Query("state"))
	if err != nil {
		adminRedirect(c, url.Values{"error": {"missing connection state"}})
		return
	}

	db, exists := c.Get("db")
	if !exists {
		adminRedirect(c, url.Values{"error": {"internal error"}})
		return
	}
	gormDB := db.(*gorm.DB)

	shortToken, err := client.ExchangeCode(code)
	if err != nil {
		logger.Error("social code exchange failed", zap.String("platform", platform), zap.Error(err))
		adminRedirect(c, url.Values{"error": {"code exchange failed"}})
		return
	}

	longToken, err := client.LongLivedToken(shortToken.AccessToken)
	if err != nil {
		logger.Error("long-lived token exchange failed", zap.String("platform", platform), zap.Error(err))
		adminRedirect(c, url.Values{"error": {"token exchange failed"}})
		return
	}

	account, err := client.Account(longToken.AccessToken)
	if err != nil {
		logger.Error("social account lookup failed", zap.String("platform", platform), zap.Error(err))
		adminRedirect(c, url.Values{"error": {"account lookup failed"}})
		return
	}

	encrypted, err := helpers.EncryptToken(longToken.AccessToken)
	if err != nil {
		logger.Error("token encryption failed", zap.Error(err))
		adminRedirect(c, url.Values{"error": {"internal error"}})
		return
	}

	expiresAt := time.Now().Add(time.Duration(longToken.ExpiresIn) * time.Second)
	connection := models.SocialMediaConnection{
		Platform:       platform,
		AccountID:      account.ID,
		AccountName:    account.Name,
		AccessToken:    encrypted,
		TokenExpiresAt: expiresAt,
		IsActive:       true,
		LastError:      "",
		UserID:         userID,
	}

	var existing models.SocialMediaConnection
	err = gormDB.Where("platform = ? AND account_id = ? AND user_id = ?", platform, account.ID, userID).
		First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{
			"account_name":     account.Name,
			"access_token":     encrypted,
			"token_expires_at": expiresAt,
			"is_active":        true,
			"last_error":       "",
		}
		if err := gormDB.Model(&existing).Updates(updates).Error; err != nil {
			adminRedirect(c, url.Values{"error": {"failed to save connection"}})
			return
		}
	} else {
		if err := gormDB.Create(&connection).Error; err != nil {
			adminRedirect(c, url.Values{"error": {"failed to save connection"}})
			return
		}
	}

	adminRedirect(c, url.Values{"success": {fmt.Sprintf("%s connected as %s", platform, account.Name)}})
}

func ListSocialConnections(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var connections []models.SocialMediaConnection
	if err := gormDB.Order("created_at DESC").Find(&connections).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving connections.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": connections})
}

// ListConnectionPosts pages through the connected account's media. Expiry is
// checked before any provider call; an expired token deactivates the
// connection, and reconnecting is the only recovery path.
func ListConnectionPosts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var connection models.SocialMediaConnection
	if err := gormDB.Where("id = ?", c.Param("id")).First(&connection).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Connection not found.")
		return
	}

	if !connection.IsActive {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Connection is inactive. Please reconnect the account.")
		return
	}

	if time.Now().After(connection.TokenExpiresAt) {
		gormDB.Model(&connection).Updates(map[string]interface{}{
			"is_active":  false,
			"last_error": "Token expired",
		})
		helpers.RespondWithError(c, http.StatusUnauthorized, "Token expired")
		return
	}

	client := middleware.GetSocialClient(c, connection.Platform)
	if client == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Platform client not configured.")
		return
	}

	accessToken, err := helpers.DecryptToken(connection.AccessToken)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to decrypt access token.")
		return
	}

	posts, next, err := client.Posts(accessToken, connection.AccountID, c.Query("after"))
	if err != nil {
		gormDB.Model(&connection).Update("last_error", err.Error())
		helpers.RespondWithError(c, http.StatusBadGateway, "Failed to fetch posts from platform.")
		return
	}

	now := time.Now()
	gormDB.Model(&connection).Updates(map[string]interface{}{
		"last_synced_at": &now,
		"last_error":     "",
	})

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"next":  next,
	})
}

type ImportPostsRequest struct {
	AlbumID uuid.UUID `json:"album_id" binding:"required"`
	Posts   []struct {
		ID       string `json:"id" binding:"required"`
		MediaURL string `json:"media_url" binding:"required"`
		Caption  string `json:"caption"`
	} `json:"posts" binding:"required,min=1"`
}

// ImportConnectionPosts copies selected external media into a photo album.
// Posts already imported through this connection are skipped.
func ImportConnectionPosts(c *gin.Context) {
	var req ImportPostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var connection models.SocialMediaConnection
	if err := gormDB.Where("id = ?", c.Param("id")).First(&connection).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Connection not found.")
		return
	}

	var album models.PhotoAlbum
	if err := gormDB.Where("id = ?", req.AlbumID).First(&album).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Album not found.")
		return
	}

	imported := 0
	skipped := 0
	for _, post := range req.Posts {
		var count int64
		gormDB.Model(&models.SocialMediaImport{}).
			Where("connection_id = ? AND external_post_id = ?", connection.ID, post.ID).
			Count(&count)
		if count > 0 {
			skipped++
			continue
		}

		photo := models.Photo{
			AlbumID:     album.ID,
			Caption:     post.Caption,
			ExternalURL: post.MediaURL,
			Source:      connection.Platform,
		}
		if err := gormDB.Create(&photo).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to import photo.")
			return
		}

		record := models.SocialMediaImport{
			ConnectionID:   connection.ID,
			ExternalPostID: post.ID,
			PhotoID:        photo.ID,
		}
		if err := gormDB.Create(&record).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to record import.")
			return
		}
		imported++
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  skipped,
	})
}
