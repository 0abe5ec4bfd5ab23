package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port   string
	AppEnv string

	DBDriver          string
	DBURL             string
	DBName            string
	MongoTransactions bool

	StripeKey           string
	StripeWebhookSecret string
	PaymentCurrency     string
	SiteDomain          string
	CheckoutSuccessPath string
	CheckoutCancelPath  string

	CORSOrigin     string
	JWTSecret      string
	TrustedProxies []string

	FirebaseProjectID      string
	GoogleClientID         string
	GoogleClientSecret     string
	GoogleRedirectURL      string
	GoogleFrontendRedirect string

	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadEnv() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	return &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		DBURL:             mustEnv("DB_URL"),
		DBName:            getEnv("DB_NAME", "zap_shift_DB"),
		MongoTransactions: getBool("MONGO_TRANSACTIONS", false),

		StripeKey:           mustEnv("STRIPE_KEY"),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PaymentCurrency:     strings.ToLower(getEnv("PAYMENT_CURRENCY", "bdt")),
		SiteDomain:          strings.TrimSuffix(mustEnv("SITE_DOMAIN"), "/"),
		CheckoutSuccessPath: getEnv("CHECKOUT_SUCCESS_PATH", "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelPath:  getEnv("CHECKOUT_CANCEL_PATH", "/dashboard/payment-cancelled"),

		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		JWTSecret:      mustEnv("JWT_SECRET"),
		TrustedProxies: getList("TRUSTED_PROXIES"),

		FirebaseProjectID:      getEnv("FIREBASE_PROJECT_ID", ""),
		GoogleClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:      getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleFrontendRedirect: getEnv("GOOGLE_FRONTEND_REDIRECT", ""),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

// SuccessURL and CancelURL are the provider redirect templates for hosted checkout.
func (c *Config) SuccessURL() string { return c.SiteDomain + c.CheckoutSuccessPath }
func (c *Config) CancelURL() string  { return c.SiteDomain + c.CheckoutCancelPath }

func (c *Config) GoogleSignInEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getList splits a comma separated variable. Unset yields nil.
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}
