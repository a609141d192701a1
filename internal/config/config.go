package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database   Database   `envPrefix:"DATABASE_"`
	Redis      Redis      `envPrefix:"REDIS_"`
	Auth       Auth       `envPrefix:"AUTH_"`
	Locale     Locale     `envPrefix:"LOCALE_"`
	Payments   Payments   `envPrefix:"PAYMENTS_"`
	Paypal     Paypal     `envPrefix:"PAYPAL_"`
	Stripe     Stripe     `envPrefix:"STRIPE_"`
	BrainTree  Braintree  `envPrefix:"BRAINTREE_"`
	Crypto     Crypto     `envPrefix:"CRYPTO_"`
	Telemetry  Telemetry  `envPrefix:"OTEL_"`
	Reconciler Reconciler `envPrefix:"RECONCILER_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // mysql, sqlite
	URL    string `env:"URL" envDefault:"file:saas.db?_foreign_keys=on"`
	Seed   bool   `env:"SEED" envDefault:"true"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Auth points at the hosted identity provider.
type Auth struct {
	Issuer       string        `env:"ISSUER"`
	Audience     string        `env:"AUDIENCE" envDefault:"authenticated"`
	JWKSURL      string        `env:"JWKS_URL"`
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	AuthURL      string        `env:"AUTH_URL"`
	TokenURL     string        `env:"TOKEN_URL"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	NonceTTL     time.Duration `env:"NONCE_TTL" envDefault:"5m"`
}

type Locale struct {
	Supported []string `env:"SUPPORTED" envSeparator:"," envDefault:"en,zh,ja,es"`
	Default   string   `env:"DEFAULT" envDefault:"en"`
}

type Payments struct {
	PlanProvider   string        `env:"PLAN_PROVIDER" envDefault:"paypal"`
	CreditProvider string        `env:"CREDIT_PROVIDER" envDefault:"paypal"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

// Crypto configures the hosted crypto invoice gateway.
type Crypto struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api.nowpayments.io"`
	APIKey       string `env:"API_KEY"`
	IPNSecret    string `env:"IPN_SECRET"`
	PayCurrency  string `env:"PAY_CURRENCY" envDefault:"usdttrc20"`
	CallbackPath string `env:"CALLBACK_PATH" envDefault:"/api/v1/webhooks/crypto"`
}

type Telemetry struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Endpoint string `env:"ENDPOINT"`
	Service  string `env:"SERVICE_NAME" envDefault:"saas-billing"`
}

type Reconciler struct {
	Schedule string        `env:"SCHEDULE" envDefault:"0 */5 * * * *"`
	StaleAge time.Duration `env:"STALE_AGE" envDefault:"10m"`
	Batch    int           `env:"BATCH" envDefault:"100"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (h HTTPServer) Addr() string {
	return h.Host + ":" + h.Port
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

// SecureCookies reports whether session and state cookies carry the Secure
// flag. Production always does.
func (c *Config) SecureCookies() bool {
	return c.Auth.CookieSecure || c.Environment.IsProduction()
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
