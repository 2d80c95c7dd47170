package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PHARMA_APP_NAME":                            os.Getenv("PHARMA_APP_NAME"),
		"PHARMA_APP_ENV":                             os.Getenv("PHARMA_APP_ENV"),
		"PHARMA_APP_PORT":                            os.Getenv("PHARMA_APP_PORT"),
		"PHARMA_LOG_LEVEL":                           os.Getenv("PHARMA_LOG_LEVEL"),
		"PHARMA_LOG_FORMAT":                          os.Getenv("PHARMA_LOG_FORMAT"),
		"PHARMA_INVENTORY_TRANSFER_SHORTFALL_POLICY": os.Getenv("PHARMA_INVENTORY_TRANSFER_SHORTFALL_POLICY"),
		"PHARMA_INVENTORY_EXPIRING_SOON_DAYS":        os.Getenv("PHARMA_INVENTORY_EXPIRING_SOON_DAYS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pharmadist-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "PARTIAL", cfg.Inventory.TransferShortfallPolicy)
		assert.Equal(t, 90, cfg.Inventory.ExpiringSoonDays)
	})

	t.Run("loads values from environment variables with PHARMA prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PHARMA_APP_NAME", "test-app")
		os.Setenv("PHARMA_APP_PORT", "9000")
		os.Setenv("PHARMA_LOG_LEVEL", "debug")
		os.Setenv("PHARMA_INVENTORY_TRANSFER_SHORTFALL_POLICY", "STRICT")
		os.Setenv("PHARMA_INVENTORY_EXPIRING_SOON_DAYS", "30")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "STRICT", cfg.Inventory.TransferShortfallPolicy)
		assert.Equal(t, 30, cfg.Inventory.ExpiringSoonDays)
	})

	t.Run("rejects unknown transfer shortfall policy", func(t *testing.T) {
		clearEnv()
		os.Setenv("PHARMA_INVENTORY_TRANSFER_SHORTFALL_POLICY", "BEST_EFFORT")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects console logging in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("PHARMA_APP_ENV", "production")
		os.Setenv("PHARMA_LOG_FORMAT", "console")

		_, err := Load()
		assert.Error(t, err)
	})
}
