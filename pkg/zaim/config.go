package zaim

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables read by NewConfig
const (
	EnvID       = "ZAIM_ID"
	EnvPassword = "ZAIM_PASSWORD"
	EnvLoginURL = "ZAIM_LOGIN_URL"
	EnvMoneyURL = "ZAIM_MONEY_URL"
)

// Default page locations on the live site
const (
	DefaultLoginURL = "https://zaim.net/user_session/new"
	DefaultMoneyURL = "https://content.zaim.net/home/money"
)

// Credentials identify the account the export runs against.
type Credentials struct {
	ID       string
	Password string
}

// Validate fails with ErrCodeConfig unless both values are present.
func (c Credentials) Validate() error {
	if c.ID == "" || c.Password == "" {
		return NewError(ErrCodeConfig, "", fmt.Sprintf("environment variables %s and %s must be set", EnvID, EnvPassword), nil)
	}
	return nil
}

// Site holds the pages the exporter navigates to.
type Site struct {
	LoginURL string
	MoneyURL string
}

// DefaultSite returns the live site locations.
func DefaultSite() Site {
	return Site{
		LoginURL: DefaultLoginURL,
		MoneyURL: DefaultMoneyURL,
	}
}

// Config holds the out-of-band settings of an export: credentials and site.
// Environment variables:
//   - ZAIM_ID: account identifier (required)
//   - ZAIM_PASSWORD: account password (required)
//   - ZAIM_LOGIN_URL: login page (default: https://zaim.net/user_session/new)
//   - ZAIM_MONEY_URL: data page (default: https://content.zaim.net/home/money)
type Config struct {
	Credentials Credentials
	Site        Site
	Logger      *logrus.Logger
}

// NewConfig builds a Config from the environment. The .env file is loaded if
// present, but its absence is not an error.
func NewConfig(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, NewError(ErrCodeConfig, "", "error loading .env file", err)
		}
		logger.Debug(".env file not found, continuing with environment variables")
	}

	config := &Config{
		Credentials: Credentials{
			ID:       os.Getenv(EnvID),
			Password: os.Getenv(EnvPassword),
		},
		Site: Site{
			LoginURL: getEnvOrDefault(EnvLoginURL, DefaultLoginURL),
			MoneyURL: getEnvOrDefault(EnvMoneyURL, DefaultMoneyURL),
		},
		Logger: logger,
	}

	config.Logger.WithFields(logrus.Fields{
		"id_exists":       config.Credentials.ID != "",
		"password_exists": config.Credentials.Password != "",
		"login_url":       config.Site.LoginURL,
		"money_url":       config.Site.MoneyURL,
	}).Debug("Zaim config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that credentials are set and that both pages are known.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return NewError(ErrCodeConfig, "", "logger is required", nil)
	}
	if err := c.Credentials.Validate(); err != nil {
		c.Logger.WithFields(logrus.Fields{
			"id_exists":       c.Credentials.ID != "",
			"password_exists": c.Credentials.Password != "",
		}).Error("Credential validation failed")
		return err
	}
	if c.Site.LoginURL == "" || c.Site.MoneyURL == "" {
		return NewError(ErrCodeConfig, "", "login and money page URLs are required", nil)
	}
	return nil
}

// getEnvOrDefault returns the environment value for key, or defaultValue if unset or empty.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
