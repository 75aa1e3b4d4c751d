package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, etc.)
// - identity/db values are NOT required at load: protected endpoints answer
//   with a server configuration error at request time when they are missing
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	Identity IdentityConfig
	Admin    AdminConfig
	Cookie   CookieConfig
	Gate     GateConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:""`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:""`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// IdentityConfig points at the hosted identity provider.
type IdentityConfig struct {
	BackendURL string        `envconfig:"IDENTITY_BACKEND_URL" default:""`
	AnonKey    string        `envconfig:"IDENTITY_ANON_KEY" default:""`
	ServiceKey string        `envconfig:"IDENTITY_SERVICE_KEY" default:""`
	Timeout    time.Duration `envconfig:"IDENTITY_TIMEOUT" default:"10s"`
}

type AdminConfig struct {
	// Comma-separated allow-list of admin emails, normalized at startup.
	Emails []string `envconfig:"PLATFORM_ADMINS" default:""`
	Policy string   `envconfig:"ADMIN_POLICY" default:"allow_list_and_membership"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

type GateConfig struct {
	// Prefix-matched paths served without authentication.
	PublicPaths []string `envconfig:"GATE_PUBLIC_PATHS" default:"/login,/api,/health,/favicon.ico,/static,/swagger"`
	// Base URL for the loopback admin-check call. Defaults to the local
	// listener when empty.
	StatusURL string        `envconfig:"GATE_STATUS_URL" default:""`
	Timeout   time.Duration `envconfig:"GATE_TIMEOUT" default:"5s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *DBConfig) Configured() bool {
	return c.User != "" && c.DBName != ""
}

// NormalizedAdminEmails returns the allow-list trimmed, lowercased and with
// blanks dropped.
func (c *AdminConfig) NormalizedAdminEmails() []string {
	out := make([]string, 0, len(c.Emails))
	for _, e := range c.Emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Identity: IdentityConfig{
			BackendURL: "http://localhost:54321",
			AnonKey:    "test-anon-key",
			ServiceKey: "test-service-key",
			Timeout:    10 * time.Second,
		},
		Admin: AdminConfig{
			Emails: []string{"root@example.com"},
			Policy: "allow_list_and_membership",
		},
		Cookie: CookieConfig{
			SameSite: "Lax",
		},
		Gate: GateConfig{
			PublicPaths: []string{"/login", "/api", "/health", "/favicon.ico", "/static", "/swagger"},
			Timeout:     5 * time.Second,
		},
	}
}
