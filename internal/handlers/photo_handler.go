package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

func CreateAlbum(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Album title is required.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	album := models.PhotoAlbum{
		Title:       title,
		Description: c.PostForm("description"),
	}

	coverFile, err := c.FormFile("cover")
	if err == nil {
		coverPath, err := helpers.UploadFile(c, coverFile, "album_covers")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		album.CoverPath = coverPath
	}

	if err := gormDB.Create(&album).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create album.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Album created successfully.",
		"album_id": album.ID,
	})
}

func GetAlbum(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var album models.PhotoAlbum
	if err := gormDB.Preload("Photos").Where("id = ?", c.Param("id")).First(&album).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Album not found.")
		return
	}

	c.JSON(http.StatusOK, album)
}

func ListAlbums(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var albums []models.PhotoAlbum
	if err := gormDB.Order("created_at DESC").Find(&albums).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving albums.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"albums": albums})
}

func DeleteAlbum(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var album models.PhotoAlbum
	if err := gormDB.Where("id = ?", c.Param("id")).First(&album).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Album not found.")
		return
	}

	if err := gormDB.Where("album_id = ?", album.ID).Delete(&models.Photo{}).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete album photos.")
		return
	}
	if err := gormDB.Delete(&album).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete album.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Album deleted successfully."})
}

// UploadPhoto adds an uploaded image to an album. Imports from social media
// come through the social connection endpoints instead.
func UploadPhoto(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var album models.PhotoAlbum
	if err := gormDB.Where("id = ?", c.Param("id")).First(&album).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Album not found.")
		return
	}

	photoFile, err := c.FormFile("photo")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Photo file is required.")
		return
	}

	photoPath, err := helpers.UploadFile(c, photoFile, "gallery")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	photo := models.Photo{
		AlbumID: album.ID,
		Caption: c.PostForm("caption"),
		Path:    photoPath,
		Source:  models.PhotoSourceUpload,
	}

	if err := gormDB.Create(&photo).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to save photo.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Photo uploaded successfully.",
		"photo_id": photo.ID,
	})
}

func DeletePhoto(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var photo models.Photo
	if err := gormDB.Where("id = ?", c.Param("photoId")).First(&photo).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Photo not found.")
		return
	}

	if photo.Path != "" {
		if err := helpers.DeleteFile(photo.Path); err != nil {
			fmt.Printf("Error deleting photo file: %v\n", err)
		}
	}

	if err := gormDB.Delete(&photo).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete photo.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted successfully."})
}
