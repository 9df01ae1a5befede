package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
	"github.com/oakcrestpto/ptoportal/internal/models"
	"github.com/oakcrestpto/ptoportal/internal/payments"
)

type CheckoutRequest struct {
	EventID    uuid.UUID `json:"eventId" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
	BuyerName  string    `json:"buyerName" binding:"required"`
	BuyerEmail string    `json:"buyerEmail" binding:"required,email"`
	BuyerPhone string    `json:"buyerPhone"`
}

// CreateCheckoutSession reserves capacity for a ticket purchase and returns a
// checkout session URL. Capacity is claimed with a single conditional update
// so two buyers racing for the last ticket cannot both succeed; the claim is
// released again if session creation fails downstream.
func CreateCheckoutSession(c *gin.Context) {
	var req CheckoutRequest
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
	logger := middleware.GetLogger(c)

	gateway := middleware.GetPaymentGateway(c)
	if gateway == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment gateway not configured.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", req.EventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.TicketPrice <= 0 || event.TicketQuantity <= 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "This event does not sell tickets.")
		return
	}

	now := time.Now()
	if event.SalesStart != nil && now.Before(*event.SalesStart) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Ticket sales have not started.")
		return
	}
	if event.SalesEnd != nil && now.After(*event.SalesEnd) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Ticket sales have ended.")
		return
	}

	claim := gormDB.Model(&models.Event{}).
		Where("id = ? AND tickets_sold + ? <= ticket_quantity", event.ID, req.Quantity).
		Update("tickets_sold", gorm.Expr("tickets_sold + ?", req.Quantity))
	if claim.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error reserving tickets.")
		return
	}
	if claim.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest,
			fmt.Sprintf("Only %d tickets available", event.TicketsAvailable()))
		return
	}

	release := func() {
		if err := gormDB.Model(&models.Event{}).
			Where("id = ?", event.ID).
			Update("tickets_sold", gorm.Expr("tickets_sold - ?", req.Quantity)).Error; err != nil {
			logger.Error("failed to release claimed ticket capacity",
				zap.String("event_id", event.ID.String()), zap.Error(err))
		}
	}

	codes := make([]models.TicketCode, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		code, err := helpers.GenerateTicketCode(event.Title)
		if err != nil {
			release()
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate ticket codes.")
			return
		}
		codes = append(codes, models.TicketCode{Code: code})
	}

	ticket := models.EventTicket{
		EventID:    event.ID,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerPhone: req.BuyerPhone,
		Quantity:   req.Quantity,
		UnitPrice:  event.TicketPrice,
		TotalPrice: event.TicketPrice * int64(req.Quantity),
		Status:     models.TicketPending,
		Codes:      codes,
	}
	if err := gormDB.Create(&ticket).Error; err != nil {
		release()
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket record.")
		return
	}

	discard := func() {
		gormDB.Where("event_ticket_id = ?", ticket.ID).Delete(&models.TicketCode{})
		gormDB.Delete(&ticket)
		release()
	}

	if event.StripePriceID == "" {
		priceID, err := gateway.CreateEventPrice(event.Title, event.TicketPrice)
		if err != nil {
			discard()
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to register event with payment provider.")
			return
		}
		event.StripePriceID = priceID
		if err := gormDB.Model(&models.Event{}).Where("id = ?", event.ID).
			Update("stripe_price_id", priceID).Error; err != nil {
			logger.Error("failed to persist event price id",
				zap.String("event_id", event.ID.String()), zap.Error(err))
		}
	}

	siteURL := os.Getenv("SITE_BASE_URL")
	session, err := gateway.CreateTicketSession(payments.TicketParams{
		PriceID:    event.StripePriceID,
		Quantity:   int64(req.Quantity),
		TicketID:   ticket.ID.String(),
		EventID:    event.ID.String(),
		EventTitle: event.Title,
		BuyerEmail: req.BuyerEmail,
		SuccessURL: fmt.Sprintf("%s/events/%s?payment=success", siteURL, event.ID),
		CancelURL:  fmt.Sprintf("%s/events/%s?payment=cancelled", siteURL, event.ID),
	})
	if err != nil {
		discard()
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create checkout session.")
		return
	}

	if err := gormDB.Model(&models.EventTicket{}).Where("id = ?", ticket.ID).
		Update("checkout_session_id", session.ID).Error; err != nil {
		logger.Error("failed to persist checkout session id",
			zap.String("ticket_id", ticket.ID.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// ListEventTickets is the admin view of ticket purchases.
func ListEventTickets(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.EventTicket{})
	if eventID := c.Query("event_id"); eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.EventTicket
	if err := query.Preload("Codes").Order("created_at DESC").Find(&tickets).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}
