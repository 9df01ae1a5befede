package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oakcrestpto/ptoportal/config"
	"github.com/oakcrestpto/ptoportal/internal/ai"
	"github.com/oakcrestpto/ptoportal/internal/handlers"
	"github.com/oakcrestpto/ptoportal/internal/mailer"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
	"github.com/oakcrestpto/ptoportal/internal/payments"
	"github.com/oakcrestpto/ptoportal/internal/social"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := gin.Default()

	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.PaymentGatewayMiddleware(payments.NewStripeGateway(cfg.Stripe.SecretKey)))
	r.Use(middleware.MailerMiddleware(mailer.NewResendClient(cfg.Resend.APIKey, cfg.Resend.FromAddress)))
	r.Use(middleware.AIClientMiddleware(ai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)))
	r.Use(middleware.SocialClientsMiddleware(map[string]social.Client{
		"instagram": social.NewInstagramClient(cfg.Instagram.ClientID, cfg.Instagram.ClientSecret, cfg.Instagram.RedirectURL),
		"facebook":  social.NewFacebookClient(cfg.Facebook.ClientID, cfg.Facebook.ClientSecret, cfg.Facebook.RedirectURL),
	}))

	setupRoutes(r)

	r.Static("/uploads", "./uploads")

	return r.Run(":" + cfg.Port)
}

func setupRoutes(r *gin.Engine) {
	// Payment and OAuth providers call these exact paths.
	r.POST("/api/webhooks/stripe", handlers.StripeWebhook)
	r.POST("/api/checkout/create-session", handlers.CreateCheckoutSession)
	r.GET("/api/social-media/:platform/callback", handlers.SocialCallback)

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		public.POST("/donations/create-session", handlers.CreateDonationSession)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
			eventPublic.POST("/:id/rsvp", handlers.CreateRsvp)
		}

		ticketPublic := public.Group("/tickets")
		{
			ticketPublic.GET("/:code", handlers.LookupTicket)
			ticketPublic.GET("/:code/qr", handlers.TicketQR)
		}

		newsPublic := public.Group("/news")
		{
			newsPublic.GET("", handlers.ListNewsPosts)
			newsPublic.GET("/:slug", handlers.GetNewsPost)
		}

		albumPublic := public.Group("/albums")
		{
			albumPublic.GET("", handlers.ListAlbums)
			albumPublic.GET("/:id", handlers.GetAlbum)
		}

		public.GET("/products", handlers.ListProducts)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)
		protected.PUT("/profile", handlers.UpdateProfile)
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminRequired())
	{
		adminEvents := admin.Group("/events")
		{
			adminEvents.POST("", handlers.CreateEvent)
			adminEvents.PUT("/:id", handlers.UpdateEvent)
			adminEvents.DELETE("/:id", handlers.DeleteEvent)
			adminEvents.GET("/:id/rsvps", handlers.ListEventRsvps)
		}

		admin.GET("/tickets", handlers.ListEventTickets)
		admin.POST("/tickets/validate", handlers.ValidateTicket)

		admin.GET("/donations", handlers.ListDonations)

		adminNews := admin.Group("/news")
		{
			adminNews.POST("", handlers.CreateNewsPost)
			adminNews.PUT("/:id", handlers.UpdateNewsPost)
			adminNews.DELETE("/:id", handlers.DeleteNewsPost)
		}

		adminAlbums := admin.Group("/albums")
		{
			adminAlbums.POST("", handlers.CreateAlbum)
			adminAlbums.DELETE("/:id", handlers.DeleteAlbum)
			adminAlbums.POST("/:id/photos", handlers.UploadPhoto)
			adminAlbums.DELETE("/:id/photos/:photoId", handlers.DeletePhoto)
		}

		adminProducts := admin.Group("/products")
		{
			adminProducts.POST("", handlers.CreateProduct)
			adminProducts.PUT("/:id", handlers.UpdateProduct)
			adminProducts.DELETE("/:id", handlers.DeleteProduct)
		}

		adminSocial := admin.Group("/social-media")
		{
			adminSocial.GET("/connect/:platform", handlers.GetSocialConnectURL)
			adminSocial.GET("/connections", handlers.ListSocialConnections)
			adminSocial.GET("/connections/:id/posts", handlers.ListConnectionPosts)
			adminSocial.POST("/connections/:id/import", handlers.ImportConnectionPosts)
		}

		adminAI := admin.Group("/ai")
		{
			adminAI.POST("/content", handlers.GenerateContent)
			adminAI.POST("/image", handlers.GenerateImage)
		}
	}
}
