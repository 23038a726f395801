package config

import (
	"fmt"
	"os"
	"time"

	"go-duka-pos/pkg/mpesa"
)

// Config is read once by the process entry point and handed to every
// constructor. No package reads the environment on its own.
type Config struct {
	Port        string
	DatabaseDSN string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	Mpesa mpesa.Config

	GeminiAPIKey string
	GeminiModel  string
}

// Load assembles the configuration from the environment.
func Load() Config {
	cfg := Config{
		Port:          getenv("PORT", "3000"),
		DatabaseDSN:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getenv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:        24 * time.Hour,
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		Mpesa: mpesa.Config{
			BaseURL:        getenv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
			ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
			ShortCode:      getenv("MPESA_SHORTCODE", "174379"),
			Passkey:        os.Getenv("MPESA_PASSKEY"),
			CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
		},
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-pro"),
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Africa/Nairobi",
			getenv("DB_HOST", "localhost"),
			getenv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_NAME", "duka_pos"),
			getenv("DB_PORT", "5432"),
		)
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
