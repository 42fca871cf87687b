// Package config loads runtime configuration from YAML with environment
// overrides. A missing config file is not an error: deployments that only
// set environment variables (the usual .env setup) work without one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 3000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "lingoletics"
	defaultDBCharset  = "utf8mb4"
	defaultWebURL     = "http://localhost:3000"
)

// AppConfig holds runtime startup configuration.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"` // MySQL DSN; overrides Database when set
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"` // optional; enables rate limiting
	WebURL         string         `yaml:"web_url"`   // public site base, confirm links and redirects
	JWTSecret      string         `yaml:"jwt_secret"`
	AdminPassHash  string         `yaml:"admin_password_hash"` // bcrypt
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Mail           MailConfig     `yaml:"mail"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

type MailConfig struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	FromName  string `yaml:"from_name"`
	ReplyTo   string `yaml:"reply_to"`
	ResendKey string `yaml:"resend_key"`
}

// Load reads the YAML file at path (if present), applies environment
// overrides, and fills defaults.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("APP_URL"); v != "" {
		c.WebURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		c.AdminPassHash = trimQuotes(v)
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Mail.ResendKey = v
		c.Mail.Enable = true
	}
	if v := os.Getenv("RESEND_FROM_EMAIL"); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv("RESEND_FROM_NAME"); v != "" {
		c.Mail.FromName = v
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.WebURL == "" {
		c.WebURL = defaultWebURL
	}
	c.WebURL = strings.TrimRight(strings.TrimSpace(c.WebURL), "/")
	if c.Mail.FromName == "" {
		c.Mail.FromName = "Lingoletics"
	}
	if c.DSN == "" {
		c.DSN = c.Database.dsn()
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "development")
}

func (d DatabaseConfig) dsn() string {
	host := d.Host
	if host == "" {
		host = defaultDBHost
	}
	port := d.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := d.User
	if user == "" {
		user = defaultDBUser
	}
	pass := d.Password
	if pass == "" {
		pass = defaultDBPassword
	}
	name := d.Name
	if name == "" {
		name = defaultDBName
	}
	charset := d.Charset
	if charset == "" {
		charset = defaultDBCharset
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, pass, host, port, name, charset)
}

// trimQuotes strips surrounding quotes that .env files sometimes carry
// around bcrypt hashes.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
