package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/models"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	SiteBaseURL string `env:"SITE_BASE_URL" envDefault:"http://localhost:3000"`
	AdminURL    string `env:"ADMIN_BASE_URL" envDefault:"http://localhost:3000/admin"`

	DB        Database  `envPrefix:"DB_"`
	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Resend    Resend    `envPrefix:"RESEND_"`
	OpenAI    OpenAI    `envPrefix:"OPENAI_"`
	Instagram SocialApp `envPrefix:"INSTAGRAM_"`
	Facebook  SocialApp `envPrefix:"FACEBOOK_"`
}

type Database struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME"`
}

// Stripe webhook verification reads STRIPE_WEBHOOK_SECRET directly in the
// webhook handler, the same way token signing reads JWT_SECRET.
type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
}

type Resend struct {
	APIKey      string `env:"API_KEY"`
	FromAddress string `env:"FROM_ADDRESS" envDefault:"PTO Portal <no-reply@oakcrestpto.org>"`
}

type OpenAI struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gpt-4o-mini"`
}

type SocialApp struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// LoadConfig reads configuration from the environment. Integration keys may
// be empty here; each integration fails at first use instead of at startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	seedRoles(db)

	return db, nil
}

// Migrate runs schema migration for every model. Tests reuse it against an
// in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Event{},
		&models.Rsvp{},
		&models.EventTicket{},
		&models.TicketCode{},
		&models.Donation{},
		&models.WebhookEvent{},
		&models.SocialMediaConnection{},
		&models.SocialMediaImport{},
		&models.NewsPost{},
		&models.PhotoAlbum{},
		&models.Photo{},
		&models.Product{},
	)
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{
		{Name: "member"},
		{Name: "admin"},
	}

	for _, role := range roles {
		var existingRole models.Role
		result := db.Where("name = ?", role.Name).First(&existingRole)
		if result.Error != nil {
			db.Create(&role)
		}
	}
}
