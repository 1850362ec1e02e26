package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Supported actions.
const (
	ActionQuote  = "quote"
	ActionRedeem = "redeem"
)

// Config holds the complete application configuration, loadable from
// environment variables (PRICING_ prefix), flags, or YAML config files.
type Config struct {
	DatabaseURL string `usage:"PostgreSQL connection URL (PRICING_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Action      string `default:"quote" usage:"What to do with the order: quote or redeem" flag:"action"`
	OrderID     string `usage:"Order to price" flag:"order-id"`
	Timezone    string `default:"UTC" usage:"Location used to decide the current date" flag:"timezone"`
	Migrate     bool   `default:"false" usage:"Apply the embedded schema before running" flag:"migrate"`
}

// Location returns the Timezone location, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig loads configuration from environment variables, YAML config
// files and the given command-line arguments.
func LoadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PRICING",
		Files:     []string{"pricing.yaml", "/etc/pricing/pricing.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set PRICING_DATABASE_URL or DATABASE_URL")
	}
	if c.OrderID == "" {
		return errors.New("order id is required: set --order-id")
	}
	switch c.Action {
	case ActionQuote, ActionRedeem:
	default:
		return errors.Errorf("unknown action %q", c.Action)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrapf(err, "load timezone %q", c.Timezone)
	}
	return nil
}

// applyPlatformDefaults maps the standard DATABASE_URL variable to the
// application's PRICING_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
