package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PRICING_DATABASE_URL", "postgres://localhost/pricing")

	cfg, err := LoadConfig([]string{"--order-id=o1", "--timezone=Europe/Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/pricing", cfg.DatabaseURL)
	assert.Equal(t, ActionQuote, cfg.Action)
	assert.Equal(t, "o1", cfg.OrderID)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	assert.False(t, cfg.Migrate)
}

func TestLoadConfig_PlatformDatabaseURL(t *testing.T) {
	t.Setenv("PRICING_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://platform/db")

	cfg, err := LoadConfig([]string{"--order-id=o1", "--action=redeem"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, ActionRedeem, cfg.Action)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PRICING_DATABASE_URL", "postgres://localhost/pricing")

	for _, tt := range []struct {
		name string
		args []string
		want string
	}{
		{name: "missing order", args: []string{"--action=quote"}, want: "order id is required"},
		{name: "unknown action", args: []string{"--order-id=o1", "--action=refund"}, want: "unknown action"},
		{name: "bad timezone", args: []string{"--order-id=o1", "--timezone=Mars/Olympus"}, want: "load timezone"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	t.Setenv("PRICING_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig([]string{"--order-id=o1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}
