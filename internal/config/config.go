package config

import (
	"fmt"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Config holds all storefront service configuration, loaded from the
// environment.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8010"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"168h"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// AuthBaseURL points at the auth backend; the storefront relays
	// credentials and never stores them.
	AuthBaseURL string `env:"AUTH_BASE_URL" envDefault:"http://localhost:8001/api/v1"`
	// ProductsBaseURL points at the product service. Empty means serve the
	// embedded catalog.
	ProductsBaseURL string `env:"PRODUCTS_BASE_URL" envDefault:""`

	// JWTSecret verifies bearer tokens issued by the auth backend. Empty
	// disables token parsing; sessions then come from the session header
	// only.
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	Currency   string `env:"CURRENCY" envDefault:"COP"`
	PageSize   int    `env:"CATALOG_PAGE_SIZE" envDefault:"8"`
	SortLocale string `env:"CATALOG_SORT_LOCALE" envDefault:"es"`

	TaxRateBps            int64    `env:"TAX_RATE_BPS" envDefault:"1900"`
	StandardShippingFee   int64    `env:"STANDARD_SHIPPING_FEE" envDefault:"5000"`
	ExpressShippingFee    int64    `env:"EXPRESS_SHIPPING_FEE" envDefault:"15000"`
	FreeShippingThreshold int64    `env:"FREE_SHIPPING_THRESHOLD" envDefault:"150000"`
	CouponCodes           []string `env:"COUPON_CODES" envDefault:"WELCOME15:1500" envSeparator:","`

	CheckoutProcessingDelay time.Duration `env:"CHECKOUT_PROCESSING_DELAY" envDefault:"2s"`

	RateLimitRPS   int      `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"100"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSample    string `env:"TRACE_SAMPLE" envDefault:"parentbased_always_on"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: http port %d out of range", c.HTTPPort)
	}
	if c.TaxRateBps < 0 || c.TaxRateBps > 10000 {
		return fmt.Errorf("config: tax rate %d bps out of range", c.TaxRateBps)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("config: page size must be positive")
	}
	if c.StandardShippingFee < 0 || c.ExpressShippingFee < 0 || c.FreeShippingThreshold < 0 {
		return fmt.Errorf("config: shipping fees must be non-negative")
	}
	if _, err := c.Coupons(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ShippingPolicy assembles the configured shipping fee table.
func (c *Config) ShippingPolicy() domain.ShippingPolicy {
	return domain.ShippingPolicy{
		StandardFee:   c.StandardShippingFee,
		ExpressFee:    c.ExpressShippingFee,
		FreeThreshold: c.FreeShippingThreshold,
	}
}

// Coupons parses the configured CODE:bps pairs into a lookup keyed by
// upper-cased code.
func (c *Config) Coupons() (map[string]domain.Coupon, error) {
	coupons := make(map[string]domain.Coupon, len(c.CouponCodes))
	for _, raw := range c.CouponCodes {
		if raw == "" {
			continue
		}
		coupon, err := domain.ParseCoupon(raw)
		if err != nil {
			return nil, err
		}
		coupons[coupon.Code] = coupon
	}
	return coupons, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
