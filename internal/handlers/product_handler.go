package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

func parseProductForm(c *gin.Context) (*models.Product, error) {
	name := c.PostForm("name")
	externalURL := c.PostForm("external_url")
	priceStr := c.PostForm("price")
	if name == "" || externalURL == "" || priceStr == "" {
		return nil, fmt.Errorf("missing required fields")
	}

	price, err := helpers.StringToInt(priceStr)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("invalid product price")
	}

	return &models.Product{
		Name:        name,
		Description: c.PostForm("description"),
		Price:       int64(price),
		ExternalURL: externalURL,
		IsActive:    c.DefaultPostForm("is_active", "true") != "false",
	}, nil
}

func CreateProduct(c *gin.Context) {
	product, err := parseProductForm(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "products")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		product.ImagePath = imagePath
	}

	if err := gormDB.Create(product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create product.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Product created successfully.",
		"product_id": product.ID,
	})
}

func ListProducts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.Product{})
	if c.Query("all") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving products.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func UpdateProduct(c *gin.Context) {
	updated, err := parseProductForm(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var product models.Product
	if err := gormDB.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Product not found.")
		return
	}

	product.Name = updated.Name
	product.Description = updated.Description
	product.Price = updated.Price
	product.ExternalURL = updated.ExternalURL
	product.IsActive = updated.IsActive

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "products")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		product.ImagePath = imagePath
	}

	if err := gormDB.Save(&product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update product.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully.",
		"product": product,
	})
}

func DeleteProduct(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ?", c.Param("id")).Delete(&models.Product{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete product.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Product not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully."})
}
