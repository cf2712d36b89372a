package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	envURLBase    = "SITEGEN_URL_BASE"
	envRedisURL   = "SITEGEN_REDIS_URL"
	envProduction = "SITEGEN_PRODUCTION"
)

// MetaConfig points at the three source documents of the download
// catalog and carries the base URL resolved download links are built on.
type MetaConfig struct {
	DownloadsFile     string `yaml:"downloads_file"`
	GoldDownloadsFile string `yaml:"gold_downloads_file"`
	PlatformsFile     string `yaml:"platforms_file"`
	URLBase           string `yaml:"url_base"`
}

// SiteConfig describes the input/output layout of the site generator.
// Content directories are relative to InDir.
type SiteConfig struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"` // Site base URL, used by feeds and navigation
	InDir       string `yaml:"in_dir"`
	OutDir      string `yaml:"out_dir"`
	PagesDir    string `yaml:"pages_dir"`
	BlogDir     string `yaml:"blog_dir"`
	NewsDir     string `yaml:"news_dir"`
	StaticDir   string `yaml:"static_dir"`
	TemplateDir string `yaml:"template_dir"`
}

type Config struct {
	Listen     string     `yaml:"listen"`
	RedisURL   string     `yaml:"redis_url"`
	LogLevel   string     `yaml:"log_level"`
	Production bool       `yaml:"production"`
	Meta       MetaConfig `yaml:"meta"`
	Site       SiteConfig `yaml:"site"`
}

func (c *Config) SetDefaults() {
	c.Listen = ":3000"
	c.LogLevel = LogLevelInfo
	c.Meta.DownloadsFile = "src/downloads.json"
	c.Meta.GoldDownloadsFile = "src/downloads_gold.json"
	c.Meta.PlatformsFile = "src/platform.json"
	c.Site.InDir = "."
	c.Site.OutDir = "build"
	c.Site.PagesDir = "src/pages"
	c.Site.BlogDir = "blog"
	c.Site.NewsDir = "news"
	c.Site.StaticDir = "static"
	c.Site.TemplateDir = "template"
}

// Load reads the YAML config and applies environment overrides. godotenv
// is loaded by main before this runs, so a local .env works too.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if v := os.Getenv(envURLBase); v != "" {
		cfg.Meta.URLBase = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv(envProduction); v != "" {
		prod, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", envProduction, err)
		}
		cfg.Production = prod
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}
