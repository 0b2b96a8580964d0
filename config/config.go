package config

import (
	"os"
	"path"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location" env:"STOREFRONT_SYSTEM_LOCATION"`
	Workdir  string `yaml:"workdir" env:"STOREFRONT_SYSTEM_WORKDIR"`
	Debug    bool   `yaml:"debug" env:"STOREFRONT_SYSTEM_DEBUG"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host string `yaml:"host" env:"STOREFRONT_WEB_HOST"`
	Port int    `yaml:"port" env:"STOREFRONT_WEB_PORT"`
}

// StoreConfig blob store configuration
type StoreConfig struct {
	Type      string `yaml:"type" env:"STOREFRONT_STORE_TYPE"` // bolt, memory, redis, postgres
	Path      string `yaml:"path" env:"STOREFRONT_STORE_PATH"` // bolt file, relative to workdir
	Addr      string `yaml:"addr" env:"STOREFRONT_STORE_ADDR"` // redis address or URL
	Dsn       string `yaml:"dsn" env:"STOREFRONT_STORE_DSN"`   // postgres DSN
	KeyPrefix string `yaml:"key_prefix" env:"STOREFRONT_STORE_KEY_PREFIX"`
}

// ShopConfig storefront presentation and order settings
type ShopConfig struct {
	Name             string   `yaml:"name" env:"STOREFRONT_SHOP_NAME"`
	WhatsAppNumber   string   `yaml:"whatsapp_number" env:"STOREFRONT_SHOP_WHATSAPP_NUMBER"`
	CurrencySymbol   string   `yaml:"currency_symbol" env:"STOREFRONT_SHOP_CURRENCY_SYMBOL"`
	DecimalSeparator string   `yaml:"decimal_separator" env:"STOREFRONT_SHOP_DECIMAL_SEPARATOR"`
	Categories       []string `yaml:"categories" env:"STOREFRONT_SHOP_CATEGORIES" envSeparator:","`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" env:"STOREFRONT_LOGGER_MODE"`
	FileEnable bool   `yaml:"file_enable" env:"STOREFRONT_LOGGER_FILE_ENABLE"`
	Filename   string `yaml:"filename" env:"STOREFRONT_LOGGER_FILENAME"`
}

// ImageEditConfig generative image edit service configuration
type ImageEditConfig struct {
	APIKey string `yaml:"api_key" env:"STOREFRONT_IMAGE_EDIT_API_KEY"`
	Model  string `yaml:"model" env:"STOREFRONT_IMAGE_EDIT_MODEL"`
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Store     StoreConfig     `yaml:"store"`
	Shop      ShopConfig      `yaml:"shop"`
	Logger    LogConfig       `yaml:"logger"`
	ImageEdit ImageEditConfig `yaml:"image_edit"`
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// StorePath returns the bolt file location, resolving relative paths
// against the data dir.
func (c *AppConfig) StorePath() string {
	if path.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return path.Join(c.GetDataDir(), c.Store.Path)
}

func (c *AppConfig) Validate() error {
	switch c.Store.Type {
	case "bolt", "memory", "redis", "postgres":
	default:
		return errors.Errorf("unsupported store type %q", c.Store.Type)
	}
	if c.Store.Type == "redis" && c.Store.Addr == "" {
		return errors.New("store.addr is required for redis")
	}
	if c.Store.Type == "postgres" && c.Store.Dsn == "" {
		return errors.New("store.dsn is required for postgres")
	}
	if c.Shop.DecimalSeparator != "," && c.Shop.DecimalSeparator != "." {
		return errors.Errorf("decimal separator must be ',' or '.', got %q", c.Shop.DecimalSeparator)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return errors.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "PaoDaRoca",
		Location: "America/Sao_Paulo",
		Workdir:  "/var/storefront",
		Debug:    false,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1816,
	},
	Store: StoreConfig{
		Type:      "bolt",
		Path:      "storefront.db",
		KeyPrefix: "storefront.",
	},
	Shop: ShopConfig{
		Name:             "Pão da Roça",
		WhatsAppNumber:   "5511989764533",
		CurrencySymbol:   "R$",
		DecimalSeparator: ",",
		Categories:       []string{"Pães", "Sobremesas", "Temperos", "Chás", "Outros"},
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/storefront/storefront.log",
	},
	ImageEdit: ImageEditConfig{
		Model: "gemini-2.5-flash-image",
	},
}

// LoadConfig reads the yaml file (when given and present), falls back to
// the defaults and applies STOREFRONT_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := cloneDefault()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	cfg.Shop.WhatsAppNumber = strings.TrimSpace(cfg.Shop.WhatsAppNumber)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cloneDefault() *AppConfig {
	cfg := *DefaultAppConfig
	cfg.Shop.Categories = append([]string(nil), DefaultAppConfig.Shop.Categories...)
	return &cfg
}
