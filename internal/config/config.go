package config

import (
	"os"
	"strconv"
)

// Config carries every setting the sync services consume. It is built once
// in main and passed into services explicitly; nothing in the engine reads
// the environment on its own.
type Config struct {
	DatabaseURL string
	AppHost     string

	// DefaultLocationID is the stock location allocations draw from.
	// Zero means unconfigured: allocation is skipped with a warning.
	DefaultLocationID int

	// CustomerName is the customer record orders are created against.
	CustomerName string

	// Currency recorded on every order line.
	Currency string

	// ShortfallWarning controls what happens when lots run out before the
	// requested quantity is fully allocated: off drops the remainder
	// silently, on surfaces it as a warning on the plan.
	ShortfallWarning bool

	RetailerAPIKey      string
	RetailerBaseURL     string
	RetailerWarehouseID string
}

func Load() Config {
	locationID, _ := strconv.Atoi(os.Getenv("DEFAULT_STOCK_LOCATION"))

	return Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		AppHost:             os.Getenv("APP_HOST"),
		DefaultLocationID:   locationID,
		CustomerName:        getEnv("RETAILER_CUSTOMER_NAME", "TakeALot"),
		Currency:            getEnv("DEFAULT_CURRENCY", "ZAR"),
		ShortfallWarning:    os.Getenv("ALLOCATION_SHORTFALL_WARNING") == "true",
		RetailerAPIKey:      os.Getenv("RETAILER_API_KEY"),
		RetailerBaseURL:     getEnv("RETAILER_API_BASE_URL", "https://seller-api.takealot.com/v2/"),
		RetailerWarehouseID: os.Getenv("RETAILER_WAREHOUSE_ID"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
