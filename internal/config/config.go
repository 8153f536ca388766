package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LAONLINK_SITE_BASE_URL.
const EnvPrefix = "LAONLINK"

// Config holds all configuration for the application
type Config struct {
	Site       SiteConfig       `mapstructure:"site"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Session    SessionConfig    `mapstructure:"session"`
	Images     ImagesConfig     `mapstructure:"images"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

// SiteConfig controls static page and sitemap generation
type SiteConfig struct {
	BaseURL      string            `mapstructure:"base_url"`
	BrandName    string            `mapstructure:"brand_name"`
	InquiryEmail string            `mapstructure:"inquiry_email"`
	TemplatePath string            `mapstructure:"template_path"`
	OutputDir    string            `mapstructure:"output_dir"`
	ImageBaseURL string            `mapstructure:"image_base_url"`
	NoImageURL   string            `mapstructure:"no_image_url"`
	SitemapStyle string            `mapstructure:"sitemap_style"`
	Workers      int               `mapstructure:"workers"`
	Categories   []LandingCategory `mapstructure:"categories"`
}

// LandingCategory is a main category that gets its own static landing page
type LandingCategory struct {
	Slug     string `mapstructure:"slug"`
	Name     string `mapstructure:"name"`
	FullName string `mapstructure:"full_name"`
}

// CatalogConfig selects where products are loaded from
type CatalogConfig struct {
	Source                  string `mapstructure:"source"`
	Path                    string `mapstructure:"path"`
	URL                     string `mapstructure:"url"`
	Timeout                 int    `mapstructure:"timeout"`
	MaxRetries              int    `mapstructure:"max_retries"`
	RepairSpecifications    bool   `mapstructure:"repair_specifications"`
	TranslateSpecifications bool   `mapstructure:"translate_specifications"`
}

// NavigationConfig holds browsing defaults
type NavigationConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// SessionConfig selects the backend for recently viewed items and the cart
type SessionConfig struct {
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ImagesConfig holds image mirroring settings
type ImagesConfig struct {
	SourceURL            string `mapstructure:"source_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxWorkers           int    `mapstructure:"max_workers"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// ServerConfig holds preview server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Enabled connects to postgres even when the catalog is read from
	// elsewhere, e.g. to import it.
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config path. When empty, config.yaml is looked
	// up in the working directory and may be absent.
	ConfigFile string
	// Flags that were set on the command line override file and environment
	// values.
	Flags *pflag.FlagSet
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"output":          "site.output_dir",
	"template":        "site.template_path",
	"base-url":        "site.base_url",
	"sitemap":         "site.sitemap_style",
	"source":          "catalog.source",
	"catalog":         "catalog.path",
	"catalog-url":     "catalog.url",
	"repair-specs":    "catalog.repair_specifications",
	"translate-specs": "catalog.translate_specifications",
	"page-size":       "navigation.page_size",
	"session":         "session.backend",
	"port":            "server.port",
	"log-level":       "log.level",
}

// Load loads configuration from YAML file with environment variable overrides
func Load(opts Options) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	v := viper.New()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config.yaml found, using defaults")
	}

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			if f := opts.Flags.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(config.Site.Categories) == 0 {
		config.Site.Categories = DefaultLandingCategories()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the file source")
		}
	case "http":
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.url is required for the http source")
		}
	case "postgres":
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}

	switch c.Site.SitemapStyle {
	case "paths", "query":
	default:
		return fmt.Errorf("unknown site.sitemap_style %q", c.Site.SitemapStyle)
	}

	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session.backend %q", c.Session.Backend)
	}

	if c.Navigation.PageSize < 1 {
		return fmt.Errorf("navigation.page_size must be at least 1")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}

	return nil
}

// CatalogTimeout returns the catalog fetch timeout.
func (c CatalogConfig) CatalogTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// RequestTimeout returns the per-image download timeout.
func (c ImagesConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// DefaultLandingCategories are the main categories with static landing pages.
func DefaultLandingCategories() []LandingCategory {
	return []LandingCategory{
		{Slug: "plc", Name: "PLC", FullName: "Programmable Logic Controllers"},
		{Slug: "servo-motor-driver", Name: "Servo motor/servo driver", FullName: "Servo Motors and Drivers"},
		{Slug: "stepping-motor-driver", Name: "Stepping motor/driver/BLDC", FullName: "Stepping Motors and BLDC Drivers"},
		{Slug: "hmi", Name: "HMI", FullName: "Human Machine Interface"},
		{Slug: "inverter", Name: "INVERTER", FullName: "Frequency Inverters"},
		{Slug: "sensor", Name: "SENSOR", FullName: "Industrial Sensors"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://laon2link.com")
	v.SetDefault("site.brand_name", "LaonLinkAB")
	v.SetDefault("site.inquiry_email", "peter.ju@laonlink.com")
	v.SetDefault("site.template_path", "index.html")
	v.SetDefault("site.output_dir", ".")
	v.SetDefault("site.image_base_url", "https://laon2link.com/images/products")
	v.SetDefault("site.no_image_url", "https://laon2link.com/images/no-image.png")
	v.SetDefault("site.sitemap_style", "paths")
	v.SetDefault("site.workers", 8)

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.path", "js/products-data.js")
	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.timeout", 30)
	v.SetDefault("catalog.max_retries", 3)
	v.SetDefault("catalog.repair_specifications", false)
	v.SetDefault("catalog.translate_specifications", false)

	v.SetDefault("navigation.page_size", 12)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.key_prefix", "laonlink:session:")

	v.SetDefault("images.source_url", "")
	v.SetDefault("images.timeout", 60)
	v.SetDefault("images.max_retries", 3)
	v.SetDefault("images.max_workers", 4)
	v.SetDefault("images.max_requests_per_second", 5)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "laonlink")
	v.SetDefault("database.user", "laonlink_user")
	v.SetDefault("database.password", "laonlink_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("log.level", "info")
}
