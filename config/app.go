package config

import (
	"os"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool
	// DefaultLocation is the warehouse code order imports post stock
	// movements against when the request names none.
	DefaultLocation string
	// AllowNegativeStock disables clamping of cached inventory at zero.
	AllowNegativeStock bool
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		defaultLocation := os.Getenv("DEFAULT_LOCATION")
		if defaultLocation == "" {
			defaultLocation = "OWN1"
		}
		AppConfig = &Config{
			AppName:            os.Getenv("APP_NAME"),
			Port:               os.Getenv("PORT"),
			Env:                os.Getenv("APP_ENV"),
			Debug:              os.Getenv("DEBUG") == "true",
			DefaultLocation:    defaultLocation,
			AllowNegativeStock: os.Getenv("ALLOW_NEGATIVE_STOCK") == "true",
		}
	})
}
