package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
	"github.com/oakcrestpto/ptoportal/internal/models"
	"github.com/oakcrestpto/ptoportal/internal/payments"
)

// DonationRequest is the donation form. Amount is in minor currency units;
// bounds correspond to $5 and $10,000.
type DonationRequest struct {
	Amount       int64  `json:"amount" binding:"required,min=500,max=1000000"`
	Frequency    string `json:"frequency" binding:"required,oneof=one_time monthly quarterly annual"`
	DonationType string `json:"donation_type" binding:"required"`
	DonorName    string `json:"donor_name" binding:"required"`
	DonorEmail   string `json:"donor_email" binding:"required,email"`
	DonorPhone   string `json:"donor_phone"`
	Campus       string `json:"campus"`
	StudentName  string `json:"student_name"`
	Message      string `json:"message"`
	Anonymous    bool   `json:"anonymous"`
}

// CreateDonationSession builds a checkout session for a one-time or recurring
// donation. No donation row is written here; that happens when the webhook
// confirms payment.
func CreateDonationSession(c *gin.Context) {
	var req DonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gateway := middleware.GetPaymentGateway(c)
	if gateway == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment gateway not configured.")
		return
	}

	siteURL := os.Getenv("SITE_BASE_URL")
	session, err := gateway.CreateDonationSession(payments.DonationParams{
		Amount:       req.Amount,
		Frequency:    req.Frequency,
		DonorName:    req.DonorName,
		DonorEmail:   req.DonorEmail,
		DonorPhone:   req.DonorPhone,
		DonationType: req.DonationType,
		Campus:       req.Campus,
		StudentName:  req.StudentName,
		Message:      req.Message,
		Anonymous:    req.Anonymous,
		SuccessURL:   siteURL + "/donate/thank-you?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    siteURL + "/donate",
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create checkout session.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// ListDonations is the admin view of the donation ledger.
func ListDonations(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "25")

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

	query := gormDB.Model(&models.Donation{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if donationType := c.Query("donation_type"); donationType != "" {
		query = query.Where("donation_type = ?", donationType)
	}

	var totalCount int64
	query.Count(&totalCount)

	var donations []models.Donation
	offset := (pageNum - 1) * limitNum
	if err := query.Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&donations).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving donations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"donations": donations,
		"total":     totalCount,
		"page":      pageNum,
		"limit":     limitNum,
	})
}
