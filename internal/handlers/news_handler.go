package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

type NewsPostRequest struct {
	Title     string `json:"title" binding:"required"`
	Excerpt   string `json:"excerpt"`
	Body      string `json:"body" binding:"required"`
	Published bool   `json:"published"`
}

func CreateNewsPost(c *gin.Context) {
	var req NewsPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	post := models.NewsPost{
		Title:     req.Title,
		Slug:      slug.Make(req.Title),
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		Published: req.Published,
		AuthorID:  userID.(uuid.UUID),
	}
	if req.Published {
		now := time.Now()
		post.PublishedAt = &now
	}

	// Slug collisions get a short uuid suffix rather than an error.
	var existing models.NewsPost
	if result := gormDB.Where("slug = ?", post.Slug).First(&existing); result.Error == nil {
		post.Slug = post.Slug + "-" + uuid.New().String()[:8]
	}

	if err := gormDB.Create(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create news post.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "News post created successfully.",
		"post_id": post.ID,
		"slug":    post.Slug,
	})
}

func GetNewsPost(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var post models.NewsPost
	if err := gormDB.Where("slug = ? AND published = ?", c.Param("slug"), true).First(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "News post not found.")
		return
	}

	c.JSON(http.StatusOK, post)
}

func ListNewsPosts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	pageNum, err := helpers.StringToInt(page)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.NewsPost{}).Where("published = ?", true)

	var totalCount int64
	query.Count(&totalCount)

	var posts []models.NewsPost
	offset := (pageNum - 1) * limitNum
	if err := query.Offset(offset).Limit(limitNum).Order("published_at DESC").Find(&posts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving news posts.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": totalCount,
		"page":  pageNum,
		"limit": limitNum,
	})
}

func UpdateNewsPost(c *gin.Context) {
	var req NewsPostRequest
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

	var post models.NewsPost
	if err := gormDB.Where("id = ?", c.Param("id")).First(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "News post not found.")
		return
	}

	if !post.Published && req.Published {
		now := time.Now()
		post.PublishedAt = &now
	}
	post.Title = req.Title
	post.Excerpt = req.Excerpt
	post.Body = req.Body
	post.Published = req.Published

	if err := gormDB.Save(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update news post.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News post updated successfully.",
		"post":    post,
	})
}

func DeleteNewsPost(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ?", c.Param("id")).Delete(&models.NewsPost{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete news post.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "News post not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "News post deleted successfully."})
}
