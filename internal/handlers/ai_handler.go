package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oakcrestpto/ptoportal/internal/ai"
	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
)

type GenerateContentRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=newsletter announcement event_description thank_you"`
	Topic       string `json:"topic" binding:"required"`
	Length      string `json:"length" binding:"omitempty,oneof=short medium long"`
	Style       string `json:"style" binding:"omitempty,oneof=friendly formal playful"`
}

// GenerateContent forwards a typed prompt to the AI provider and returns the
// raw text for the admin form. Every invocation is a fresh billable call.
func GenerateContent(c *gin.Context) {
	var req GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	client := middleware.GetAIClient(c)
	if client == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "AI client not configured.")
		return
	}

	system, user := ai.BuildContentPrompt(ai.ContentParams{
		ContentType: req.ContentType,
		Topic:       req.Topic,
		Length:      req.Length,
		Style:       req.Style,
	})

	text, err := client.ChatCompletion(system, user)
	if err != nil {
		middleware.GetLogger(c).Error("AI content generation failed", zap.Error(err))
		helpers.RespondWithError(c, http.StatusBadGateway, "Content generation failed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Size   string `json:"size" binding:"omitempty,oneof=1024x1024 1792x1024 1024x1792"`
}

// GenerateImage requests an image and stores it under the uploads directory,
// returning the saved path.
func GenerateImage(c *gin.Context) {
	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	client := middleware.GetAIClient(c)
	if client == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "AI client not configured.")
		return
	}

	imageBytes, err := client.GenerateImage(req.Prompt, req.Size)
	if err != nil {
		middleware.GetLogger(c).Error("AI image generation failed", zap.Error(err))
		helpers.RespondWithError(c, http.StatusBadGateway, "Image generation failed.")
		return
	}

	uploadPath := filepath.Join("./uploads", "ai_images")
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to prepare upload directory.")
		return
	}

	fullPath := filepath.Join(uploadPath, fmt.Sprintf("%s.png", uuid.New()))
	if err := os.WriteFile(fullPath, imageBytes, 0o644); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to save generated image.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": fullPath})
}
