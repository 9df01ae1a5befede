package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

type RsvpRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Guests int    `json:"guests" binding:"omitempty,min=1,max=20"`
}

// CreateRsvp records attendance intent for a free event or alongside a
// ticket purchase. One RSVP per email per event.
func CreateRsvp(c *gin.Context) {
	var req RsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if req.Guests == 0 {
		req.Guests = 1
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var existing models.Rsvp
	if result := gormDB.Where("event_id = ? AND email = ?", event.ID, req.Email).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "You have already RSVP'd for this event.")
		return
	}

	rsvp := models.Rsvp{
		EventID: event.ID,
		Name:    req.Name,
		Email:   req.Email,
		Guests:  req.Guests,
	}
	if userID, exists := c.Get("user_id"); exists {
		id := userID.(uuid.UUID)
		rsvp.UserID = &id
	}

	if err := gormDB.Create(&rsvp).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to record RSVP.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "RSVP recorded successfully.",
		"rsvp_id": rsvp.ID,
	})
}

func ListEventRsvps(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var rsvps []models.Rsvp
	if err := gormDB.Where("event_id = ?", c.Param("id")).Order("created_at ASC").Find(&rsvps).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving RSVPs.")
		return
	}

	totalGuests := 0
	for _, rsvp := range rsvps {
		totalGuests += rsvp.Guests
	}

	c.JSON(http.StatusOK, gin.H{
		"rsvps":        rsvps,
		"total_guests": totalGuests,
	})
}
