package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Store.Type)
	assert.Equal(t, ",", cfg.Shop.DecimalSeparator)
	assert.Equal(t, []string{"Pães", "Sobremesas", "Temperos", "Chás", "Outros"}, cfg.Shop.Categories)
	assert.Equal(t, "/var/storefront/data/storefront.db", cfg.StorePath())
}

func TestLoadConfigYamlAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "storefront.yml")
	yml := `
system:
  workdir: /tmp/shop
web:
  port: 9000
store:
  type: memory
shop:
  name: Test Bakery
  categories: [Bolos, Pães]
`
	require.NoError(t, os.WriteFile(file, []byte(yml), 0o644))
	t.Setenv("STOREFRONT_WEB_PORT", "9100")
	t.Setenv("STOREFRONT_SHOP_DECIMAL_SEPARATOR", ".")

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shop", cfg.System.Workdir)
	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "Test Bakery", cfg.Shop.Name)
	assert.Equal(t, ".", cfg.Shop.DecimalSeparator)
	assert.Equal(t, []string{"Bolos", "Pães"}, cfg.Shop.Categories)
	// untouched sections keep their defaults
	assert.Equal(t, "R$", cfg.Shop.CurrencySymbol)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, 1816, cfg.Web.Port)
}

func TestValidate(t *testing.T) {
	cfg := cloneDefault()
	cfg.Store.Type = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = cloneDefault()
	cfg.Store.Type = "redis"
	assert.Error(t, cfg.Validate())
	cfg.Store.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())

	cfg = cloneDefault()
	cfg.Shop.DecimalSeparator = ";"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigDoesNotMutateDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_SHOP_CATEGORIES", "A,B")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, cfg.Shop.Categories)
	assert.Len(t, DefaultAppConfig.Shop.Categories, 5)
}
